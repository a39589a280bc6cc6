package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	// TokenMultiple marks a day with several readings for the field.
	TokenMultiple = "Varias"
	// TokenNegligible is "inapreciable", precipitation too small to measure.
	TokenNegligible = "Ip"
)

// naTokens are the textual forms a missing value takes once a record has
// been through a CSV file.
var naTokens = []string{"NA", "NaN", "<nil>"}

// CleanNumeric converts a raw AEMET field into a float. It returns nil for
// missing values, sentinel tokens and anything that does not parse; "Ip"
// yields exactly 0.
func CleanNumeric(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if isNA(s) || s == TokenMultiple {
		return nil
	}
	if s == TokenNegligible {
		v := 0.0
		return &v
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(v) {
		return nil
	}
	return &v
}

func isNA(s string) bool {
	if s == "" {
		return true
	}
	for _, tok := range naTokens {
		if s == tok {
			return true
		}
	}
	return false
}
