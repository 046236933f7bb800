// file: model/amount.go

package model

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// IsValidAmount reports whether v converts to a finite number strictly
// greater than zero. It never panics on non-numeric input.
func IsValidAmount(v any) bool {
	_, ok := ParseAmount(v)
	return ok
}

// ParseAmount converts v to a float64 and applies the IsValidAmount rules.
// Numeric kinds, numeric strings and json.Number are accepted.
func ParseAmount(v any) (float64, bool) {
	switch n := v.(type) {
	case nil, bool:
		// cast reads true as 1.
		return 0, false
	case string:
		v = strings.TrimSpace(n)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0, false
	}
	return f, true
}
