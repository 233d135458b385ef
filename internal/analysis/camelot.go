package analysis

import (
	"fmt"
	"regexp"
	"strconv"
)

// CamelotKey is a parsed Camelot wheel position: number 1-12, mode A (minor)
// or B (major).
type CamelotKey struct {
	Number int
	Minor  bool
}

var camelotKeyRegex = regexp.MustCompile(`^(\d+)([AB])$`)

// ParseCamelotKey parses a key string such as "8A" into structured form.
func ParseCamelotKey(key string) (CamelotKey, error) {
	matches := camelotKeyRegex.FindStringSubmatch(key)
	if len(matches) != 3 {
		return CamelotKey{}, fmt.Errorf("invalid Camelot key: %q", key)
	}

	number, err := strconv.Atoi(matches[1])
	if err != nil || number < 1 || number > 12 {
		return CamelotKey{}, fmt.Errorf("invalid Camelot key number: %q", key)
	}

	return CamelotKey{Number: number, Minor: matches[2] == "A"}, nil
}

func (k CamelotKey) String() string {
	mode := "B"
	if k.Minor {
		mode = "A"
	}
	return fmt.Sprintf("%d%s", k.Number, mode)
}

// CamelotDistance scores harmonic mixing compatibility between two keys:
// 0 identical, 1 relative major/minor (same number), otherwise the circular
// wheel distance for same-mode pairs, and 6 for any other cross-mode pair.
// Invalid keys score the maximum.
func CamelotDistance(key1, key2 string) int {
	k1, err1 := ParseCamelotKey(key1)
	k2, err2 := ParseCamelotKey(key2)
	if err1 != nil || err2 != nil {
		return 6
	}

	if k1 == k2 {
		return 0
	}

	// Relative major/minor shares the wheel number
	if k1.Number == k2.Number {
		return 1
	}

	if k1.Minor != k2.Minor {
		return 6
	}

	diff := k1.Number - k2.Number
	if diff < 0 {
		diff = -diff
	}
	if wrapped := 12 - diff; wrapped < diff {
		return wrapped
	}
	return diff
}

// CompatibleKeys returns the keys considered safe to mix with the given key:
// the key itself, its relative major/minor, and its wheel neighbours in the
// same mode. Invalid keys return nil.
func CompatibleKeys(key string) []string {
	k, err := ParseCamelotKey(key)
	if err != nil {
		return nil
	}

	prev := k.Number - 1
	if prev < 1 {
		prev = 12
	}
	next := k.Number + 1
	if next > 12 {
		next = 1
	}

	relative := CamelotKey{Number: k.Number, Minor: !k.Minor}
	return []string{
		k.String(),
		relative.String(),
		CamelotKey{Number: prev, Minor: k.Minor}.String(),
		CamelotKey{Number: next, Minor: k.Minor}.String(),
	}
}

// IsCompatible reports whether two keys mix cleanly (distance at most 1).
func IsCompatible(key1, key2 string) bool {
	return CamelotDistance(key1, key2) <= 1
}
