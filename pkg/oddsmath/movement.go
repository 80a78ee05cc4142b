package oddsmath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Direction describes which way a line moved relative to its opening
type Direction string

const (
	Toward Direction = "toward"
	Away   Direction = "away"
)

// SignificantMovementPct is the movement percentage a line must exceed to
// be flagged significant
const SignificantMovementPct = 10.0

var (
	lineStripper = regexp.MustCompile(`[^0-9+\-.]`)
	lineNumber   = regexp.MustCompile(`^[+\-]?(\d+\.?\d*|\.\d+)`)
)

// ExtractLineValue pulls the numeric core out of a line string. Everything
// except digits, sign and decimal point is dropped and the leading number
// is parsed: "o215.5" → 215.5, "-3.5 (-110)" → -3.5, "+145" → 145
func ExtractLineValue(line string) (float64, error) {
	cleaned := lineStripper.ReplaceAllString(strings.TrimSpace(line), "")

	match := lineNumber.FindString(cleaned)
	if match == "" {
		return 0, fmt.Errorf("no numeric value in line %q", line)
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing line %q: %w", line, err)
	}

	return value, nil
}

// LineMovement computes the magnitude and direction of a move from
// opening to current.
//
//	pct = |current − opening| / |opening| · 100, rounded to 2 decimals
//	direction = toward when current ≤ opening, away otherwise
//
// The direction rule is applied the same way for every bet type. A zero
// opening value yields a 0% movement.
func LineMovement(opening, current string) (float64, Direction, error) {
	openingValue, err := ExtractLineValue(opening)
	if err != nil {
		return 0, "", fmt.Errorf("opening line: %w", err)
	}

	currentValue, err := ExtractLineValue(current)
	if err != nil {
		return 0, "", fmt.Errorf("current line: %w", err)
	}

	direction := Away
	if currentValue <= openingValue {
		direction = Toward
	}

	if openingValue == 0 {
		return 0, direction, nil
	}

	pct := math.Abs(currentValue-openingValue) / math.Abs(openingValue) * 100.0

	return roundTo(pct, 2), direction, nil
}

// IsSignificantMovement reports whether pct is strictly above the threshold
func IsSignificantMovement(pct float64) bool {
	return pct > SignificantMovementPct
}
