package lead

import (
	"math/rand/v2"
	"sync"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/campaign"
)

// Assigner picks an operator for a new lead from a campaign roster. It is
// safe for concurrent use.
type Assigner struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAssigner(rnd *rand.Rand) *Assigner {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Assigner{rnd: rnd}
}

// Pick returns the hex id of the chosen caller, or nil for an empty roster.
// Weights are relative; negative weights count as zero, and a roster whose
// weights sum to zero is sampled uniformly.
func (a *Assigner) Pick(roster []campaign.CallerWeight) *string {
	if len(roster) == 0 {
		return nil
	}

	total := 0.0
	for _, c := range roster {
		if c.Percentage > 0 {
			total += c.Percentage
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if total <= 0 {
		id := roster[a.rnd.IntN(len(roster))].CallerID.Hex()
		return &id
	}

	r := a.rnd.Float64() * total
	for _, c := range roster {
		if c.Percentage <= 0 {
			continue
		}
		r -= c.Percentage
		if r <= 0 {
			id := c.CallerID.Hex()
			return &id
		}
	}
	// Float rounding can leave r marginally above zero
	for i := len(roster) - 1; i >= 0; i-- {
		if roster[i].Percentage > 0 {
			id := roster[i].CallerID.Hex()
			return &id
		}
	}
	return nil
}
