package validate

import "strings"

// Required reports whether the value has non-whitespace content.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// InRange reports whether value lies inside [min, max].
func InRange(value, min, max int) bool {
	return value >= min && value <= max
}
