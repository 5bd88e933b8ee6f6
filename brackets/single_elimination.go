package brackets

import (
	"context"
	"fmt"
)

type SingleEliminationGenerator struct {
	shuffle Shuffler
}

func NewSingleEliminationGenerator(shuffle Shuffler) BracketGenerator {
	return &SingleEliminationGenerator{shuffle: shuffle}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket pairs the seeded roster into round 1 and lays out empty
// matches for every later round. Round r has ceil(count(r-1)/2) matches, so
// the bracket ends after ceil(log2 N) rounds with a single final.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := len(params.Participants)
	if n < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, n)
	}

	ordered := SeedOrder(params.Participants, g.shuffle)

	firstRound := (n + 1) / 2
	matches := make([]*BracketMatch, 0, 2*firstRound)

	for i := 0; i < firstRound; i++ {
		p1 := ordered[2*i].ID
		bm := &BracketMatch{
			Round:          1,
			OrderInRound:   i + 1,
			Participant1ID: &p1,
		}
		if 2*i+1 < n {
			p2 := ordered[2*i+1].ID
			bm.Participant2ID = &p2
		} else {
			// нечётное число участников: последний проходит дальше без соперника
			bm.IsBye = true
		}
		matches = append(matches, bm)
	}

	count := firstRound
	for round := 2; count > 1; round++ {
		count = (count + 1) / 2
		for order := 1; order <= count; order++ {
			matches = append(matches, &BracketMatch{Round: round, OrderInRound: order})
		}
	}

	return matches, nil
}

// RoundSizes returns the number of matches in each round for n participants.
func RoundSizes(n int) []int {
	if n < 2 {
		return nil
	}
	sizes := []int{(n + 1) / 2}
	for last := sizes[0]; last > 1; {
		last = (last + 1) / 2
		sizes = append(sizes, last)
	}
	return sizes
}
