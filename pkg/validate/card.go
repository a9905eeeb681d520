package validate

import (
	"strings"

	"github.com/ShiraazMoollatjie/goluhn"
)

// NormalizeCardNumber drops the spaces and dashes people type between digit groups.
func NormalizeCardNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}

// IsCardNumber reports whether s is a 12 to 19 digit number passing the Luhn check.
func IsCardNumber(s string) bool {
	s = NormalizeCardNumber(s)
	if len(s) < 12 || len(s) > 19 {
		return false
	}
	return goluhn.Validate(s) == nil
}
