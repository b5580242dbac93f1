package domain

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/godial/dialogue"
)

// RandomSystemAct generates a random parametrized system act: an
// inform over one requestable slot or a request over one
// system-requestable slot. Useful as a fallback exploration source
// when no warmup policy is available.
func RandomSystemAct(d *Domain, rng *rand.Rand) []dialogue.Act {
	return randomAct(d, rng, true)
}

// RandomUserAct generates a random parametrized user act. The slot
// roles are mirrored: users inform system-requestable slots and
// request requestable slots.
func RandomUserAct(d *Domain, rng *rand.Rand) []dialogue.Act {
	return randomAct(d, rng, false)
}

func randomAct(d *Domain, rng *rand.Rand, system bool) []dialogue.Act {
	informSlots := d.requestableSlots
	requestSlots := d.systemRequestableSlots
	if !system {
		informSlots = d.systemRequestableSlots
		requestSlots = d.requestableSlots
	}

	intent := d.actsParams[rng.Intn(len(d.actsParams))]

	var pool []string
	switch intent {
	case "inform":
		pool = informSlots
	case "request":
		pool = requestSlots
	default:
		return []dialogue.Act{dialogue.NewAct(intent)}
	}
	if len(pool) == 0 {
		return []dialogue.Act{dialogue.NewAct(intent)}
	}

	slot := pool[rng.Intn(len(pool))]
	item := dialogue.ActItem{Slot: slot, Op: dialogue.EQ}
	return []dialogue.Act{dialogue.NewAct(intent, item)}
}
