package backend

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeckit/zeckit/devnet/params"
	"github.com/zeckit/zeckit/devnet/runner"
)

type fakeRunner struct {
	output string
	err    error
	calls  [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

func newDetector(output string) *Detector {
	return NewDetector(runner.NewDocker(&fakeRunner{output: output}), params.Default())
}

func TestDetect_Zaino(t *testing.T) {
	d := newDetector("zeckit-zebra\ndevnet-zaino\nzeckit-faucet\n")
	kind, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Zaino, kind)
}

func TestDetect_Lightwalletd(t *testing.T) {
	d := newDetector("zeckit-zebra\nzeckit-lightwalletd\n")
	kind, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Lightwalletd, kind)
}

func TestDetect_ZainoWinsWhenBothPresent(t *testing.T) {
	d := newDetector("zeckit-lightwalletd\ndevnet-zaino\n")
	kind, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Zaino, kind)
}

func TestDetect_NoneRunning(t *testing.T) {
	d := newDetector("zeckit-zebra\nzeckit-faucet\n")
	_, err := d.Detect(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBackend))
}

func TestDetect_DockerUnavailable(t *testing.T) {
	fr := &fakeRunner{err: errors.New("docker daemon not running")}
	d := NewDetector(runner.NewDocker(fr), params.Default())
	_, err := d.Detect(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoBackend))
}

func TestDetect_NeverCached(t *testing.T) {
	fr := &fakeRunner{output: "devnet-zaino\n"}
	d := NewDetector(runner.NewDocker(fr), params.Default())

	_, err := d.Detect(context.Background())
	require.NoError(t, err)
	fr.output = "zeckit-lightwalletd\n"
	kind, err := d.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Lightwalletd, kind, "a swapped backend must be re-detected")
	assert.Len(t, fr.calls, 2)
}

func TestServerURI(t *testing.T) {
	d := newDetector("")
	assert.Equal(t, "http://zaino:9067", d.ServerURI(Zaino))
	assert.Equal(t, "http://lightwalletd:9067", d.ServerURI(Lightwalletd))
	assert.Equal(t, "http://lightwalletd:9067", d.ServerURI(None))
}

func TestKindFromFlag(t *testing.T) {
	tests := []struct {
		value   string
		want    Kind
		wantErr bool
	}{
		{value: "zaino", want: Zaino},
		{value: "lwd", want: Lightwalletd},
		{value: "none", want: None},
		{value: "lightwalletd", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		kind, err := KindFromFlag(tt.value)
		if tt.wantErr {
			assert.Error(t, err, tt.value)
			continue
		}
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, kind, tt.value)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "zaino", Zaino.String())
	assert.Equal(t, "lightwalletd", Lightwalletd.String())
	assert.Equal(t, "none", None.String())
}
