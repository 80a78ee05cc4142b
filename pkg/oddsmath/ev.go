package oddsmath

import "fmt"

// ExpectedValue returns the expected value of a pick as a percentage of
// stake, rounded to one decimal place.
//
//	p  = confidence / 100
//	d  = decimal equivalent of the American odds
//	EV = (p·(d−1) − (1−p)) · 100
//
// Confidence 75 at -110 → 43.2
func ExpectedValue(confidence int, americanOdds string) (float64, error) {
	if confidence < 0 || confidence > 100 {
		return 0, fmt.Errorf("confidence %d out of range [0,100]", confidence)
	}

	american, err := ParseAmerican(americanOdds)
	if err != nil {
		return 0, err
	}

	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}

	p := float64(confidence) / 100.0
	ev := (p*(decimal-1.0) - (1.0 - p)) * 100.0

	return roundTo(ev, 1), nil
}
