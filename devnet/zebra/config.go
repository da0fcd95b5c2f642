package zebra

import (
	"io/ioutil"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/zeckit/zeckit/io/file"
)

const miningSection = "[mining]"

// minerAddressRe matches the full quoted miner_address assignment so the
// value can be replaced in place without touching the rest of the file.
var minerAddressRe = regexp.MustCompile(`miner_address\s*=\s*"[^"]*"`)

// SetMinerAddress rewrites the miner_address field of the node configuration
// at path so block rewards pay to address. An existing field is replaced in
// place; otherwise the field is inserted right after the [mining] section
// header. The rewrite is atomic and idempotent: re-running with the same
// address leaves the file byte-identical.
func SetMinerAddress(path, address string) error {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read node config %s", path)
	}
	config := string(raw)

	assignment := `miner_address = "` + address + `"`
	var patched string
	switch {
	case minerAddressRe.MatchString(config):
		patched = minerAddressRe.ReplaceAllString(config, assignment)
	case strings.Contains(config, miningSection):
		patched = strings.Replace(config, miningSection, miningSection+"\n"+assignment, 1)
	default:
		return errors.Errorf("node config %s has no %s section", path, miningSection)
	}

	if patched == config {
		return nil
	}
	log.WithField("address", address).Info("Updating miner address in node config")
	if err := file.WriteFileAtomic(path, []byte(patched)); err != nil {
		return errors.Wrapf(err, "could not write node config %s", path)
	}
	return nil
}
