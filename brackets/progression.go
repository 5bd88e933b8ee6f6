package brackets

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sakshamaitools/clash-point-forge/models"
)

// MatchUpdate is the new state of one match after a progression pass.
type MatchUpdate struct {
	MatchID     uuid.UUID
	Round       int
	MatchNumber int
	Player1ID   *uuid.UUID
	Player2ID   *uuid.UUID
	WinnerID    *uuid.UUID
	Status      models.MatchStatus
	CompletedAt *time.Time
}

// ProgressionPlan lists the writes a progression pass needs.
type ProgressionPlan struct {
	Updates []MatchUpdate
	// AdvancedRounds holds the rounds that received at least one participant.
	AdvancedRounds     []int
	TournamentComplete bool
}

func (p ProgressionPlan) Empty() bool {
	return len(p.Updates) == 0
}

// PlanProgression computes the slot fills implied by the current match state.
//
// Rounds are walked in ascending order. Once every match in round r is
// completed, the winners of matches 2k-1 and 2k fill player1 and player2 of
// match k in round r+1. When round r has an odd number of matches the last
// match of round r+1 has no second feeder; it is resolved as a bye for its
// player1. The walk stops at the first round that is not complete, and slots
// already holding the right participant produce no update, so running the
// planner on its own result yields an empty plan.
//
// The input matches are not modified.
func PlanProgression(format models.TournamentFormat, matches []*models.Match, now time.Time) ProgressionPlan {
	var plan ProgressionPlan
	if len(matches) == 0 {
		return plan
	}

	rounds := groupRounds(matches)
	maxRound := rounds.maxRound()

	if format.Elimination() {
		for r := 1; r < maxRound; r++ {
			current := rounds.byRound[r]
			if len(current) == 0 || !allCompleted(current) {
				break
			}
			advanced := false
			for _, next := range rounds.byRound[r+1] {
				if next.Completed() {
					continue
				}
				upd, changed := fillFromFeeders(next, rounds.lookup[r], now)
				if !changed {
					continue
				}
				plan.Updates = append(plan.Updates, upd)
				advanced = true
			}
			if advanced {
				plan.AdvancedRounds = append(plan.AdvancedRounds, r+1)
			}
		}
	}

	plan.TournamentComplete = allCompleted(rounds.byRound[maxRound])
	return plan
}

// fillFromFeeders mutates next (a working copy) and reports whether it changed.
func fillFromFeeders(next *models.Match, feeders map[int]*models.Match, now time.Time) (MatchUpdate, bool) {
	k := next.MatchNumber
	src1, ok1 := feeders[2*k-1]
	src2, ok2 := feeders[2*k]

	changed := false
	if ok1 && !samePlayer(next.Player1ID, src1.WinnerID) {
		next.Player1ID = copyID(src1.WinnerID)
		changed = true
	}
	if ok2 && !samePlayer(next.Player2ID, src2.WinnerID) {
		next.Player2ID = copyID(src2.WinnerID)
		changed = true
	}
	if ok1 && !ok2 && next.Player1ID != nil {
		completedAt := now
		next.Player2ID = nil
		next.WinnerID = copyID(next.Player1ID)
		next.Status = models.MatchCompleted
		next.CompletedAt = &completedAt
		changed = true
	}

	return MatchUpdate{
		MatchID:     next.ID,
		Round:       next.RoundNumber,
		MatchNumber: next.MatchNumber,
		Player1ID:   next.Player1ID,
		Player2ID:   next.Player2ID,
		WinnerID:    next.WinnerID,
		Status:      next.Status,
		CompletedAt: next.CompletedAt,
	}, changed
}

type roundIndex struct {
	byRound map[int][]*models.Match
	lookup  map[int]map[int]*models.Match
}

// groupRounds copies matches so the planner can cascade through its own
// updates within one pass.
func groupRounds(matches []*models.Match) roundIndex {
	idx := roundIndex{
		byRound: make(map[int][]*models.Match),
		lookup:  make(map[int]map[int]*models.Match),
	}
	for _, m := range matches {
		if m == nil {
			continue
		}
		c := *m
		idx.byRound[c.RoundNumber] = append(idx.byRound[c.RoundNumber], &c)
		if idx.lookup[c.RoundNumber] == nil {
			idx.lookup[c.RoundNumber] = make(map[int]*models.Match)
		}
		idx.lookup[c.RoundNumber][c.MatchNumber] = &c
	}
	for _, ms := range idx.byRound {
		sort.Slice(ms, func(i, j int) bool { return ms[i].MatchNumber < ms[j].MatchNumber })
	}
	return idx
}

func (idx roundIndex) maxRound() int {
	maxRound := 0
	for r := range idx.byRound {
		if r > maxRound {
			maxRound = r
		}
	}
	return maxRound
}

func allCompleted(matches []*models.Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if !m.Completed() {
			return false
		}
	}
	return true
}

func samePlayer(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
