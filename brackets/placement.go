package brackets

import (
	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
)

// AssignPlacements computes final placements for a finished tournament.
//
// In elimination brackets the champion is 1st and a participant knocked out
// in round r shares place count(r)+1 with everyone else eliminated in that
// round: the losing finalist is 2nd, semifinal losers 3rd, and so on.
// Round robin placements follow the standings order.
func AssignPlacements(format models.TournamentFormat, participants []*models.Participant, matches []*models.Match) map[uuid.UUID]int {
	placements := make(map[uuid.UUID]int, len(participants))

	if !format.Elimination() {
		for i, entry := range DeriveStandings(format, participants, matches) {
			placements[entry.ParticipantID] = i + 1
		}
		return placements
	}

	roundSize := make(map[int]int)
	maxRound := 0
	for _, m := range matches {
		roundSize[m.RoundNumber]++
		if m.RoundNumber > maxRound {
			maxRound = m.RoundNumber
		}
	}

	for _, m := range matches {
		if loser := m.Loser(); loser != nil {
			placements[*loser] = roundSize[m.RoundNumber] + 1
		}
		if m.RoundNumber == maxRound && m.Completed() && m.WinnerID != nil {
			placements[*m.WinnerID] = 1
		}
	}
	return placements
}

// EliminationRounds maps each knocked-out participant to the round they lost.
func EliminationRounds(matches []*models.Match) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, m := range matches {
		if loser := m.Loser(); loser != nil {
			out[*loser] = m.RoundNumber
		}
	}
	return out
}
