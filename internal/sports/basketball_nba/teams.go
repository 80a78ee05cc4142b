package basketball_nba

import "strings"

// teamNames maps the canonical abbreviation to the full team name. Matchups
// are expanded so that manual injury linking can match on either the city
// or the nickname.
var teamNames = map[string]string{
	"ATL": "Atlanta Hawks",
	"BOS": "Boston Celtics",
	"BKN": "Brooklyn Nets",
	"CHA": "Charlotte Hornets",
	"CHI": "Chicago Bulls",
	"CLE": "Cleveland Cavaliers",
	"DAL": "Dallas Mavericks",
	"DEN": "Denver Nuggets",
	"DET": "Detroit Pistons",
	"GSW": "Golden State Warriors",
	"HOU": "Houston Rockets",
	"IND": "Indiana Pacers",
	"LAC": "Los Angeles Clippers",
	"LAL": "Los Angeles Lakers",
	"MEM": "Memphis Grizzlies",
	"MIA": "Miami Heat",
	"MIL": "Milwaukee Bucks",
	"MIN": "Minnesota Timberwolves",
	"NOP": "New Orleans Pelicans",
	"NYK": "New York Knicks",
	"OKC": "Oklahoma City Thunder",
	"ORL": "Orlando Magic",
	"PHI": "Philadelphia 76ers",
	"PHX": "Phoenix Suns",
	"POR": "Portland Trail Blazers",
	"SAC": "Sacramento Kings",
	"SAS": "San Antonio Spurs",
	"TOR": "Toronto Raptors",
	"UTA": "Utah Jazz",
	"WAS": "Washington Wizards",
}

// Short forms some feeds use in place of the canonical code
var abbreviationAliases = map[string]string{
	"BRK":  "BKN",
	"CHO":  "CHA",
	"GS":   "GSW",
	"NO":   "NOP",
	"NOR":  "NOP",
	"NY":   "NYK",
	"PHO":  "PHX",
	"SA":   "SAS",
	"UTAH": "UTA",
	"WSH":  "WAS",
}

// GetTeamName returns the full name for an abbreviation (any case, aliases
// included), or abbr unchanged when it is not a known code
func GetTeamName(abbr string) string {
	code := strings.ToUpper(abbr)
	if canonical, ok := abbreviationAliases[code]; ok {
		code = canonical
	}
	if name, ok := teamNames[code]; ok {
		return name
	}
	return abbr
}
