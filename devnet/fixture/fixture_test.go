package fixture

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fixtures")
	want := &Fixture{
		Address:   "uregtest1zkuzfv5m3yhv2j4fmvq5rjurkxenxyq8r7h4daun2zkznr",
		Kind:      "unified",
		Receivers: []string{"orchard", "sapling", "p2pkh"},
	}
	require.NoError(t, Write(dir, want))

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWrite_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "fixtures")
	require.NoError(t, Write(dir, &Fixture{Address: "uregtest1abc", Kind: "unified"}))

	raw, err := ioutil.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"faucet_address": "uregtest1abc"`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoad_EmptyAddressRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(Path(dir), []byte(`{"type": "unified"}`), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no address")
}
