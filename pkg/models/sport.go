package models

import (
	"fmt"
	"strings"
)

// Sport identifies one of the supported leagues
type Sport string

const (
	SportNBA Sport = "basketball_nba"
	SportNFL Sport = "americanfootball_nfl"
	SportNHL Sport = "icehockey_nhl"
	SportUFC Sport = "mma_mixed_martial_arts"
)

var sportDisplayNames = map[Sport]string{
	SportNBA: "NBA",
	SportNFL: "NFL",
	SportNHL: "NHL",
	SportUFC: "UFC",
}

// AllSports returns every supported sport in a stable order
func AllSports() []Sport {
	return []Sport{SportNBA, SportNFL, SportNHL, SportUFC}
}

// ParseSport accepts either the sport key ("basketball_nba") or the
// display name ("nba", case-insensitive)
func ParseSport(raw string) (Sport, error) {
	value := strings.TrimSpace(raw)
	if Sport(value).Valid() {
		return Sport(value), nil
	}

	for sport, name := range sportDisplayNames {
		if strings.EqualFold(name, value) {
			return sport, nil
		}
	}

	return "", fmt.Errorf("unsupported sport: %q", raw)
}

// Valid reports whether s is a supported sport key
func (s Sport) Valid() bool {
	_, ok := sportDisplayNames[s]
	return ok
}

// DisplayName returns the short league name ("NBA")
func (s Sport) DisplayName() string {
	if name, ok := sportDisplayNames[s]; ok {
		return name
	}
	return string(s)
}
