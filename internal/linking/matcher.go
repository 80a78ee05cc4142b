package linking

import (
	"strings"

	"github.com/restocktime/WizJock-sub001/pkg/models"
)

// ShouldAutoLink reports whether a manually entered injury is serious
// enough to be linked to picks automatically
func ShouldAutoLink(injury *models.InjuryUpdate) bool {
	return injury.Status.Sidelined()
}

// MatchPicks returns the IDs of picks whose matchup mentions the injured
// player's name or team, case-insensitively. This is the content-matched
// linkage used for manual injuries; generated reports link every injury
// to every pick instead.
func MatchPicks(injury *models.InjuryUpdate, picks []models.Pick) []string {
	needles := make([]string, 0, 2)
	for _, s := range []string{injury.PlayerName, injury.Team} {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			needles = append(needles, s)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	var matched []string
	for _, pick := range picks {
		matchup := strings.ToLower(pick.Matchup)
		for _, needle := range needles {
			if strings.Contains(matchup, needle) {
				matched = append(matched, pick.ID)
				break
			}
		}
	}
	return matched
}
