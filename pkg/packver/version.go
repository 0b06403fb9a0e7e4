// SPDX-License-Identifier: MPL-2.0

package packver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
var ErrInvalidVersion = errors.New("invalid version")

// semverPattern is the semver 2.0.0 grammar: no "v" prefix, no leading zeros
// on numeric identifiers, optional pre-release and build metadata.
var semverPattern = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`,
)

type (
	// Version is a pack version. It is built either from a semver string or
	// from a [major, minor, patch] triplet; both collapse into the same
	// representation, so [1,2,3] and "1.2.3" are equal.
	// The zero value is 0.0.0.
	Version struct {
		major uint64
		minor uint64
		patch uint64
		pre   string
		build string
	}

	// InvalidVersionError is returned when a version string or array does not
	// follow one of the two accepted encodings.
	InvalidVersionError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid version %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid version %q", e.Value)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is for programmatic detection.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Parse parses a semantic version string such as "1.2.3" or "2.0.0-beta.1+build.5".
func Parse(text string) (Version, error) {
	m := semverPattern.FindStringSubmatch(text)
	if m == nil {
		return Version{}, &InvalidVersionError{Value: text, Reason: "does not follow semantic versioning"}
	}

	var nums [3]uint64
	for i := range nums {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return Version{}, &InvalidVersionError{Value: text, Reason: "numeric component out of range"}
		}
		nums[i] = n
	}

	return Version{major: nums[0], minor: nums[1], patch: nums[2], pre: m[4], build: m[5]}, nil
}

// MustParse is like Parse but panics on invalid input. Intended for constants and tests.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// FromTriplet builds a version from the array encoding. It always succeeds.
func FromTriplet(major, minor, patch uint64) Version {
	return Version{major: major, minor: minor, patch: patch}
}

// Major returns the major component.
func (v Version) Major() uint64 { return v.major }

// Minor returns the minor component.
func (v Version) Minor() uint64 { return v.minor }

// Patch returns the patch component.
func (v Version) Patch() uint64 { return v.patch }

// Prerelease returns the pre-release identifiers without the leading "-".
func (v Version) Prerelease() string { return v.pre }

// Build returns the build metadata without the leading "+".
func (v Version) Build() string { return v.build }

// IsTriplet reports whether the version carries no pre-release or build
// metadata and can therefore be written in the array encoding.
func (v Version) IsTriplet() bool { return v.pre == "" && v.build == "" }

// String returns the canonical string form. It round-trips through Parse.
func (v Version) String() string {
	var sb strings.Builder
	sb.WriteString(v.core())
	if v.pre != "" {
		sb.WriteByte('-')
		sb.WriteString(v.pre)
	}
	if v.build != "" {
		sb.WriteByte('+')
		sb.WriteString(v.build)
	}
	return sb.String()
}

func (v Version) core() string {
	return strconv.FormatUint(v.major, 10) + "." +
		strconv.FormatUint(v.minor, 10) + "." +
		strconv.FormatUint(v.patch, 10)
}

// Compare returns -1, 0 or 1 depending on whether v sorts before, equal to,
// or after other. Precedence follows semver; build metadata, which semver
// ignores, breaks the remaining ties so that 0 means identical versions.
func (v Version) Compare(other Version) int {
	if c := semver.Compare(v.precedenceKey(), other.precedenceKey()); c != 0 {
		return c
	}
	return compareBuild(v.build, other.build)
}

// Equal reports whether v and other denote the same version.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool { return v.Compare(other) < 0 }

// Compare is the free-function form of Version.Compare.
func Compare(a, b Version) int { return a.Compare(b) }

// precedenceKey renders the version in the "v"-prefixed form that
// golang.org/x/mod/semver understands, without build metadata.
func (v Version) precedenceKey() string {
	if v.pre == "" {
		return "v" + v.core()
	}
	return "v" + v.core() + "-" + v.pre
}

func compareBuild(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if c := compareIdentifier(as[i], bs[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// compareIdentifier orders numeric identifiers numerically and before
// alphanumeric ones; alphanumeric identifiers compare as ASCII.
func compareIdentifier(a, b string) int {
	an, bn := isNumeric(a), isNumeric(b)
	switch {
	case an && bn:
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			if len(ta) < len(tb) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
		// Same value with different zero padding ("01" vs "1").
		return strings.Compare(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MarshalJSON writes the array encoding when the version has no pre-release
// or build metadata, and the string encoding otherwise.
func (v Version) MarshalJSON() ([]byte, error) {
	if v.IsTriplet() {
		return json.Marshal([3]uint64{v.major, v.minor, v.patch})
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON accepts either a semver string or a 3-element array of
// non-negative integers.
func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &InvalidVersionError{Value: "", Reason: "empty value"}
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &InvalidVersionError{Value: string(data), Reason: err.Error()}
		}
		parsed, err := Parse(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return &InvalidVersionError{Value: string(data), Reason: err.Error()}
		}
		if len(parts) != 3 {
			return &InvalidVersionError{Value: string(data), Reason: fmt.Sprintf("array must have 3 elements, got %d", len(parts))}
		}
		var nums [3]uint64
		for i, p := range parts {
			if err := json.Unmarshal(p, &nums[i]); err != nil {
				return &InvalidVersionError{Value: string(data), Reason: "array elements must be non-negative integers"}
			}
		}
		*v = FromTriplet(nums[0], nums[1], nums[2])
		return nil
	default:
		return &InvalidVersionError{Value: string(data), Reason: "expected a string or a 3-element array"}
	}
}
