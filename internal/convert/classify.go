// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/jp2jpg/pkg/types"
)

const (
	extJP2 = ".jp2"
	extJPG = ".jpg"
)

// IsConvertible reports whether name has the .jp2 extension. The match is
// case-sensitive, so "A.JP2" is passed through untouched.
func IsConvertible(name string) bool {
	return filepath.Ext(name) == extJP2
}

// Partition splits names into convertible and pass-through sets, keeping
// the input order within each.
func Partition(names []string) (convertible, passThrough []string) {
	for _, n := range names {
		if IsConvertible(n) {
			convertible = append(convertible, n)
		} else {
			passThrough = append(passThrough, n)
		}
	}
	return convertible, passThrough
}

// TargetName maps a .jp2 entry to its .jpg output name.
func TargetName(name string) string {
	return strings.TrimSuffix(name, extJP2) + extJPG
}

// ClassifyStatus maps a converter exit status to a log severity. It returns
// false for status 0, which is not logged. Otherwise the leading decimal
// digit decides: 3 is warn, 4 is error, 5 is fatal, anything else is error.
func ClassifyStatus(status int) (types.Severity, bool) {
	if status == 0 {
		return types.SeverityNone, false
	}
	switch leadingDigit(status) {
	case 3:
		return types.SeverityWarn, true
	case 4:
		return types.SeverityError, true
	case 5:
		return types.SeverityFatal, true
	default:
		return types.SeverityError, true
	}
}

// leadingDigit returns the most significant decimal digit of |n|.
func leadingDigit(n int) int {
	u := uint(n)
	if n < 0 {
		u = -u
	}
	for u >= 10 {
		u /= 10
	}
	return int(u)
}
