package wallet

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when the expected marker is absent from all of the
// console output, which usually means the underlying command failed rather
// than that a field is merely unset.
var ErrNotFound = errors.New("marker not found in console output")

// AddressKind selects which address encoding to extract.
type AddressKind int

const (
	// Transparent is a publicly visible t-address.
	Transparent AddressKind = iota
	// Unified is a ZIP-316 unified address bundling several receiver types.
	Unified
)

// String implements fmt.Stringer.
func (k AddressKind) String() string {
	if k == Unified {
		return "unified"
	}
	return "transparent"
}

// addressSpec describes how one address kind appears in console output: a
// field marker the line must carry, the encoding prefix the address starts
// with, and the minimum plausible encoded length.
type addressSpec struct {
	marker string
	prefix string
	minLen int
}

var addressSpecs = map[AddressKind]addressSpec{
	Transparent: {marker: "encoded_address", prefix: "tm", minLen: 30},
	Unified:     {marker: "address", prefix: "uregtest", minLen: 40},
}

// ExtractAddress scans output line by line for an address of the given kind.
// A candidate is the substring from the first prefix match up to the next
// quote or space; under-length or wrongly prefixed candidates are rejected
// and scanning continues on the remaining lines.
func ExtractAddress(output string, kind AddressKind) (string, error) {
	spec := addressSpecs[kind]
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, spec.marker) {
			continue
		}
		start := strings.Index(line, spec.prefix)
		if start < 0 {
			continue
		}
		candidate := line[start:]
		if end := strings.IndexAny(candidate, `" `); end >= 0 {
			candidate = candidate[:end]
		}
		if len(candidate) < spec.minLen || !strings.HasPrefix(candidate, spec.prefix) {
			continue
		}
		return candidate, nil
	}
	return "", errors.Wrapf(ErrNotFound, "%s address", kind)
}

// Balance is the wallet's funds in display units after fixed-point
// conversion from the integer zatoshi representation.
type Balance struct {
	Transparent float64
	Shielded    float64
}

// Total returns the sum of both pools.
func (b Balance) Total() float64 {
	return b.Transparent + b.Shielded
}

const zatsPerCoin = 100_000_000

// Balance field names in preference order. The console has printed several
// spellings across versions; the first one present wins.
var (
	transparentFields = []string{"confirmed_transparent_balance", "transparent_balance"}
	shieldedFields    = []string{"verified_orchard_balance", "orchard_balance", "sapling_balance", "shielded_balance"}
)

// ExtractBalance recovers the balance pair from console output. Extraction
// is total: a missing field defaults to zero (absence means "not yet
// observed", not a fault) and a non-parseable numeric literal is skipped the
// same way, so re-parsing any input always yields the same pair.
func ExtractBalance(output string) Balance {
	return Balance{
		Transparent: balanceField(output, transparentFields),
		Shielded:    balanceField(output, shieldedFields),
	}
}

func balanceField(output string, fields []string) float64 {
	lines := strings.Split(output, "\n")
	for _, field := range fields {
		for _, line := range lines {
			if !strings.Contains(line, field) {
				continue
			}
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}
			raw := strings.TrimSpace(parts[1])
			raw = strings.Trim(raw, `",`)
			// The console groups long zatoshi amounts with underscores.
			raw = strings.ReplaceAll(raw, "_", "")
			raw = strings.ReplaceAll(raw, ",", "")
			zats, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			return float64(zats) / zatsPerCoin
		}
	}
	return 0
}

// ExtractTxID scans output for the transaction-id marker and returns the
// substring between the first pair of quotes that follows it.
func ExtractTxID(output string) (string, error) {
	const marker = "txid"
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, marker)
		if idx < 0 {
			continue
		}
		rest := line[idx+len(marker):]
		// Skip the marker's own closing quote when it was a quoted key, so
		// the first quote pair found is the one delimiting the value.
		rest = strings.TrimLeft(rest, `"`)
		first := strings.Index(rest, `"`)
		if first < 0 {
			continue
		}
		rest = rest[first+1:]
		second := strings.Index(rest, `"`)
		if second <= 0 {
			continue
		}
		return rest[:second], nil
	}
	return "", errors.Wrap(ErrNotFound, "transaction id")
}
