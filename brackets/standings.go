package brackets

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
)

// DeriveStandings builds the leaderboard from completed matches.
//
// Elimination formats rank by final placement (unplaced last), then wins.
// Round robin ranks by wins, then win rate. Remaining ties fall back to user
// id so the order is stable between calls.
func DeriveStandings(format models.TournamentFormat, participants []*models.Participant, matches []*models.Match) []models.StandingEntry {
	entries := make([]models.StandingEntry, 0, len(participants))
	index := make(map[uuid.UUID]int, len(participants))

	for _, p := range participants {
		index[p.ID] = len(entries)
		entries = append(entries, models.StandingEntry{
			ParticipantID:  p.ID,
			UserID:         p.UserID,
			FinalPlacement: p.FinalPlacement,
		})
	}

	for _, m := range matches {
		if !m.Completed() || m.WinnerID == nil {
			continue
		}
		for _, player := range []*uuid.UUID{m.Player1ID, m.Player2ID} {
			if player == nil {
				continue
			}
			i, ok := index[*player]
			if !ok {
				continue
			}
			if *player == *m.WinnerID {
				entries[i].Wins++
			} else {
				entries[i].Losses++
			}
		}
	}

	for i := range entries {
		if played := entries[i].Played(); played > 0 {
			entries[i].WinRate = float64(entries[i].Wins) / float64(played)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if format.Elimination() {
			switch {
			case a.FinalPlacement != nil && b.FinalPlacement == nil:
				return true
			case a.FinalPlacement == nil && b.FinalPlacement != nil:
				return false
			case a.FinalPlacement != nil && *a.FinalPlacement != *b.FinalPlacement:
				return *a.FinalPlacement < *b.FinalPlacement
			}
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
		} else {
			if a.Wins != b.Wins {
				return a.Wins > b.Wins
			}
			if a.WinRate != b.WinRate {
				return a.WinRate > b.WinRate
			}
		}
		return a.UserID.String() < b.UserID.String()
	})

	return entries
}
