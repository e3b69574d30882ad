package apiutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLimitField parses an optional positive limit. Empty input returns
// def; values above max are clamped.
func ParseLimitField(raw string, field string, def, max int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	if max > 0 && value > max {
		return max, nil
	}
	return value, nil
}
