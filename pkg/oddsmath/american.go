package oddsmath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseAmerican parses an American odds string
// "+150" → 150, "-110" → -110, "150" → 150, "EVEN" → 100
func ParseAmerican(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if strings.EqualFold(value, "even") || strings.EqualFold(value, "ev") {
		return 100, nil
	}

	american, err := strconv.Atoi(strings.TrimPrefix(value, "+"))
	if err != nil {
		return 0, fmt.Errorf("invalid American odds %q: %w", raw, err)
	}

	if american > -100 && american < 100 {
		return 0, fmt.Errorf("invalid American odds %q: magnitude must be at least 100", raw)
	}

	return american, nil
}

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}

	return (100.0 / float64(-american)) + 1.0, nil
}

// AmericanToImpliedProbability converts American odds to the implied
// probability of the outcome
// +100 → 0.50, -110 → 0.5238, +300 → 0.25
func AmericanToImpliedProbability(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		return 100.0 / (float64(american) + 100.0), nil
	}

	abs := math.Abs(float64(american))
	return abs / (abs + 100.0), nil
}

// ImpliedProbability parses an American odds string and returns its
// implied probability
func ImpliedProbability(raw string) (float64, error) {
	american, err := ParseAmerican(raw)
	if err != nil {
		return 0, err
	}
	return AmericanToImpliedProbability(american)
}

// roundTo rounds v to the given number of decimal places
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
