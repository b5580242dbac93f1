package main

import (
	"fmt"
	"log"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/godial/agent"
	"github.com/samuelfneumann/godial/dialogue"
	"github.com/samuelfneumann/godial/domain"
	"github.com/samuelfneumann/godial/reinforce"
)

// restaurantOntology is a small restaurant search ontology used for
// the demonstration below.
type restaurantOntology struct{}

func (restaurantOntology) InformableSlots() []string {
	return []string{"area", "food", "pricerange"}
}

func (restaurantOntology) RequestableSlots() []string {
	return []string{"area", "food", "pricerange", "addr", "phone",
		"postcode"}
}

func (restaurantOntology) SystemRequestableSlots() []string {
	return []string{"area", "food", "pricerange"}
}

// randomWarmup acts uniformly at random over the system side of the
// domain during the exploration warmup phase.
type randomWarmup struct {
	dom *domain.Domain
	rng *rand.Rand
}

func (r *randomWarmup) NextAction(_ *dialogue.State) []dialogue.Act {
	return domain.RandomSystemAct(r.dom, r.rng)
}

// syntheticDialogue fabricates a plausible short dialogue with a
// terminal reward, standing in for a user simulator.
func syntheticDialogue(dom *domain.Domain, rng *rand.Rand,
	numTurns int) agent.Dialogue {
	d := make(agent.Dialogue, numTurns)
	for i := range d {
		state := &dialogue.State{
			TurnNumber:     i,
			DBMatchesRatio: rng.Float64(),
			UserActs:       domain.RandomUserAct(dom, rng),
			LastSysActs:    domain.RandomSystemAct(dom, rng),
		}
		if i > 0 {
			state.SlotsFilled = map[string]string{"food": "italian"}
		}

		reward := -1.0
		if i == numTurns-1 {
			state.IsTerminal = true
			if rng.Float64() < 0.5 {
				reward = 20.0
			}
		}
		d[i] = agent.Turn{
			State:  state,
			Action: domain.RandomSystemAct(dom, rng),
			Reward: reward,
		}
	}
	return d
}

func main() {
	var seed uint64 = 192382
	rng := rand.New(rand.NewSource(seed))

	dom := domain.New(restaurantOntology{})
	config := reinforce.DefaultConfig()
	config.Seed = seed

	policy, err := reinforce.New(dom, &randomWarmup{dom, rng}, config)
	if err != nil {
		log.Fatal(err)
	}
	policy.SetTraining(true)

	const (
		numIterations = 5
		numDialogues  = 4
		numTurns      = 6
	)
	for i := 0; i < numIterations; i++ {
		batch := make([]agent.Dialogue, numDialogues)
		for j := range batch {
			batch[j] = syntheticDialogue(dom, rng, numTurns)
		}
		if err := policy.Train(batch); err != nil {
			log.Fatal(err)
		}

		losses := policy.Losses()
		fmt.Printf("iteration %d\tloss %.4f\tepsilon %.4f\n", i,
			losses[len(losses)-1], policy.Epsilon())
	}

	if err := policy.Save("policy.gob"); err != nil {
		log.Fatal(err)
	}

	policy.SetTraining(false)
	state := &dialogue.State{
		SlotsFilled: map[string]string{"food": "italian"},
		UserActs: []dialogue.Act{
			dialogue.NewAct("request",
				dialogue.ActItem{Slot: "area", Op: dialogue.EQ}),
		},
	}
	acts, err := policy.NextAction(state)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("greedy action:", dialogue.ActsToString(acts, true))
}
