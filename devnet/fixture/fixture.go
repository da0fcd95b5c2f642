// Package fixture persists discovered wallet addresses so later verification
// runs are deterministic without re-discovering state. The fixture file is
// overwritten whole on each address-discovery event.
package fixture

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/zeckit/zeckit/io/file"
)

// FileName is the fixture file written under the fixtures directory.
const FileName = "unified-addresses.json"

// Fixture records one discovered address along with its encoding kind and
// the receiver types it supports.
type Fixture struct {
	Address   string   `json:"faucet_address"`
	Kind      string   `json:"type"`
	Receivers []string `json:"receivers"`
}

// Path returns the fixture file path under dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Write persists the fixture under dir, creating the directory if needed.
func Write(dir string, f *Fixture) error {
	if err := file.MkdirAll(dir); err != nil {
		return errors.Wrapf(err, "could not create fixtures dir %s", dir)
	}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "could not marshal fixture")
	}
	if err := file.WriteFileAtomic(Path(dir), append(raw, '\n')); err != nil {
		return errors.Wrap(err, "could not write fixture")
	}
	return nil
}

// Load reads the fixture persisted under dir.
func Load(dir string) (*Fixture, error) {
	raw, err := ioutil.ReadFile(Path(dir))
	if err != nil {
		return nil, errors.Wrapf(err, "could not read fixture %s", Path(dir))
	}
	f := &Fixture{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, errors.Wrap(err, "could not unmarshal fixture")
	}
	if f.Address == "" {
		return nil, errors.Errorf("fixture %s has no address", Path(dir))
	}
	return f, nil
}
