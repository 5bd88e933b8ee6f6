package brackets

import (
	"bytes"
	"math/rand/v2"
	"sort"

	"github.com/sakshamaitools/clash-point-forge/models"
)

// Shuffler permutes participants in place.
type Shuffler func(participants []*models.Participant)

// RandomShuffler is a uniform Fisher-Yates permutation.
func RandomShuffler() Shuffler {
	return func(participants []*models.Participant) {
		rand.Shuffle(len(participants), func(i, j int) {
			participants[i], participants[j] = participants[j], participants[i]
		})
	}
}

// NoShuffle keeps the roster order.
func NoShuffle(_ []*models.Participant) {}

// SeedOrder returns the order participants are paired in. A fully seeded
// roster is sorted by seed; otherwise the shuffler decides. The input slice
// is never modified.
func SeedOrder(participants []*models.Participant, shuffle Shuffler) []*models.Participant {
	ordered := make([]*models.Participant, len(participants))
	copy(ordered, participants)

	if fullySeeded(ordered) {
		sort.SliceStable(ordered, func(i, j int) bool {
			a, b := ordered[i], ordered[j]
			if *a.SeedNumber != *b.SeedNumber {
				return *a.SeedNumber < *b.SeedNumber
			}
			if !a.RegistrationTime.Equal(b.RegistrationTime) {
				return a.RegistrationTime.Before(b.RegistrationTime)
			}
			return bytes.Compare(a.ID[:], b.ID[:]) < 0
		})
		return ordered
	}

	if shuffle == nil {
		shuffle = RandomShuffler()
	}
	shuffle(ordered)
	return ordered
}

func fullySeeded(participants []*models.Participant) bool {
	if len(participants) == 0 {
		return false
	}
	for _, p := range participants {
		if p.SeedNumber == nil {
			return false
		}
	}
	return true
}
