package nav

import (
	"fmt"
	"strings"
)

// ObjectID is a canonical object identifier of the form <SECTOR>_<slug>,
// sector uppercase (e.g. "A0_helios_solar_array"). Upstream producers are
// inconsistent about sector case, so every lookup normalizes first.
type ObjectID string

// InvalidIDError reports an identifier that has no underscore-delimited
// sector prefix or is empty.
type InvalidIDError struct {
	Raw string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid object id %q", e.Raw)
}

// InvalidPositionError reports a malformed or non-finite coordinate set.
type InvalidPositionError struct {
	Reason string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position: %s", e.Reason)
}

// NormalizeID canonicalizes an object identifier by uppercasing its sector
// prefix. The remainder of the id is left untouched. Idempotent.
func NormalizeID(raw string) (ObjectID, error) {
	idx := strings.Index(raw, "_")
	if raw == "" || idx <= 0 || idx == len(raw)-1 {
		return "", &InvalidIDError{Raw: raw}
	}
	sector := strings.ToUpper(raw[:idx])
	return ObjectID(sector + raw[idx:]), nil
}

// IDsEqual compares two raw identifiers after normalization. Malformed
// ids never compare equal to anything, including themselves.
func IDsEqual(a, b string) bool {
	na, err := NormalizeID(a)
	if err != nil {
		return false
	}
	nb, err := NormalizeID(b)
	if err != nil {
		return false
	}
	return na == nb
}

// SectorOf returns the uppercase sector prefix of a raw id, or "" if the
// id is malformed.
func SectorOf(raw string) string {
	id, err := NormalizeID(raw)
	if err != nil {
		return ""
	}
	s := string(id)
	return s[:strings.Index(s, "_")]
}
