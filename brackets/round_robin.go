package brackets

import (
	"context"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates one match for every unordered pair of participants,
// in roster order. All matches belong to round 1.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	participants := params.Participants
	n := len(participants)
	if n < 2 {
		return nil, fmt.Errorf("%w: found %d", ErrNotEnoughParticipants, n)
	}

	matches := make([]*BracketMatch, 0, n*(n-1)/2)
	matchOrder := 0

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			p1ID := participants[i].ID
			p2ID := participants[j].ID

			matchOrder++
			matches = append(matches, &BracketMatch{
				Round:          1,
				OrderInRound:   matchOrder,
				Participant1ID: &p1ID,
				Participant2ID: &p2ID,
			})
		}
	}

	return matches, nil
}
