package reinforce

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/godial/agent"
	"github.com/samuelfneumann/godial/dialogue"
	"github.com/samuelfneumann/godial/domain"
	"github.com/samuelfneumann/godial/encoding"
	"github.com/samuelfneumann/godial/network"
	"github.com/samuelfneumann/godial/solver"
)

// Policy implements agent.Policy
var _ agent.Policy = (*Policy)(nil)

// Policy is a dialogue policy trained with episodic REINFORCE. During
// training, action selection delegates to an external warmup policy
// with probability ε and samples from the policy network otherwise; at
// evaluation time the network is always used. Each Train call performs
// a single gradient step over a batch of complete dialogues and decays
// ε.
type Policy struct {
	config Config
	dom    *domain.Domain

	encoder *encoding.StateEncoder
	codec   *encoding.ActionCodec

	behaviour *network.ConvPolicy // batch size 1, for action selection
	vm        G.VM

	warmup agent.WarmupPolicy
	rng    *rand.Rand

	epsilon  float64
	training bool
	losses   []float64
}

// New creates a new REINFORCE dialogue policy for the given domain.
// The warmup policy is the exploration source used under the ε branch
// during training.
func New(dom *domain.Domain, warmup agent.WarmupPolicy,
	c Config) (*Policy, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if warmup == nil {
		return nil, fmt.Errorf("new: no warmup policy given")
	}

	encoder := encoding.NewStateEncoder(dom, c.MaxSeqLen)
	codec := encoding.NewActionCodec(dom)

	init := G.GlorotN(1.0)
	if c.InitWFn != nil {
		init = c.InitWFn.InitWFn()
	}

	behaviour, err := network.NewConvPolicy(encoder.VocabSize(),
		encoder.MaxLen(), 1, codec.NumIntents(), codec.NumSlots(),
		c.EmbedDim, c.HiddenDim, network.ReLU(), G.NewGraph(), init)
	if err != nil {
		return nil, fmt.Errorf("new: could not create policy network: %v",
			err)
	}

	return &Policy{
		config:    c,
		dom:       dom,
		encoder:   encoder,
		codec:     codec,
		behaviour: behaviour,
		vm:        G.NewTapeMachine(behaviour.Graph()),
		warmup:    warmup,
		rng:       rand.New(rand.NewSource(c.Seed)),
		epsilon:   c.Epsilon,
		training:  true,
	}, nil
}

// SetTraining toggles training mode. In training mode NextAction
// explores through the warmup policy with probability ε.
func (p *Policy) SetTraining(on bool) {
	p.training = on
}

// Epsilon returns the current exploration rate.
func (p *Policy) Epsilon() float64 {
	return p.epsilon
}

// Losses returns the loss of every Train call so far.
func (p *Policy) Losses() []float64 {
	return p.losses
}

// NextAction selects the system acts to take in the given state.
func (p *Policy) NextAction(state *dialogue.State) ([]dialogue.Act, error) {
	if p.training && p.rng.Float64() < p.epsilon {
		return p.warmup.NextAction(state), nil
	}

	intent, slots, _, err := p.step(p.encoder.Encode(state))
	if err != nil {
		return nil, fmt.Errorf("nextaction: %v", err)
	}
	return p.codec.Decode(intent, slots), nil
}

// step samples a joint action from the behaviour network in the given
// encoded state and returns the summed log-probability of the action:
// the intent log-probability plus the log-probability of every slot
// inclusion draw. The sum assumes conditional independence between the
// intent choice and the slot choices.
func (p *Policy) step(tokens []int) (int, []float64, float64, error) {
	if err := p.behaviour.SetTokens([][]int{tokens}); err != nil {
		return 0, nil, 0, err
	}
	if err := p.vm.RunAll(); err != nil {
		return 0, nil, 0, fmt.Errorf("step: could not run policy network: %v",
			err)
	}
	outputs := p.behaviour.Output()
	intentProbs := outputs[0].Data().([]float64)
	slotProbs := outputs[1].Data().([]float64)
	p.vm.Reset()

	intent := sampleCategorical(p.rng, intentProbs)
	logProb := math.Log(intentProbs[intent])

	slots := make([]float64, len(slotProbs))
	for i, prob := range slotProbs {
		bern := distuv.Bernoulli{P: prob, Src: p.rng}
		slots[i] = bern.Rand()
		logProb += bern.LogProb(slots[i])
	}
	return intent, slots, logProb, nil
}

// sampleCategorical draws an index from an unnormalized-safe
// categorical distribution by inverse CDF.
func sampleCategorical(rng *rand.Rand, probs []float64) int {
	u := rng.Float64()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if u < cum {
			return i
		}
	}
	return len(probs) - 1
}

// Train performs a single REINFORCE gradient step over a batch of
// complete dialogues: per-turn loss is -log π(a|s) · R with R the
// per-dialogue discounted return, averaged over every turn of every
// dialogue. After the step, ε decays multiplicatively down to the
// configured floor.
//
// Encoding a turn whose recorded action violates the single-act
// contract panics; see encoding.ActionCodec.EncodeActs.
func (p *Policy) Train(batch []agent.Dialogue) error {
	turns := 0
	for _, d := range batch {
		turns += len(d)
	}
	if turns == 0 {
		return fmt.Errorf("train: empty batch")
	}

	// Encode all states and actions, and compute per-dialogue
	// discounted returns
	tokens := make([][]int, 0, turns)
	intentHot := make([]float64, 0, turns*p.codec.NumIntents())
	slotHot := make([]float64, 0, turns*p.codec.NumSlots())
	returns := make([]float64, 0, turns)
	for _, d := range batch {
		rewards := make([]float64, len(d))
		for i, turn := range d {
			rewards[i] = turn.Reward

			tokens = append(tokens, p.encoder.Encode(turn.State))

			intent, slots, err := p.codec.EncodeActs(turn.Action)
			if err != nil {
				return fmt.Errorf("train: could not encode action: %v", err)
			}
			row := make([]float64, p.codec.NumIntents())
			row[intent] = 1.0
			intentHot = append(intentHot, row...)
			slotHot = append(slotHot, slots...)
		}
		returns = append(returns, discountedReturns(rewards,
			p.config.Gamma)...)
	}

	// Build the training graph at this batch size
	clone, err := p.behaviour.CloneWithBatch(turns)
	if err != nil {
		return fmt.Errorf("train: could not clone policy network: %v", err)
	}
	train := clone.(*network.ConvPolicy)
	g := train.Graph()

	intentTargets := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(turns, p.codec.NumIntents()),
		G.WithName("intentTargets"),
		G.WithInit(G.Zeroes()),
	)
	slotTargets := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(turns, p.codec.NumSlots()),
		G.WithName("slotTargets"),
		G.WithInit(G.Zeroes()),
	)
	returnsNode := G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(turns),
		G.WithName("returns"),
		G.WithInit(G.Zeroes()),
	)

	loss := reinforceLoss(train, intentTargets, slotTargets, returnsNode)
	var lossVal G.Value
	G.Read(loss, &lossVal)
	if _, err := G.Grad(loss, train.Learnables()...); err != nil {
		return fmt.Errorf("train: could not construct gradient: %v", err)
	}

	vm := G.NewTapeMachine(g, G.BindDualValues(train.Learnables()...))
	defer vm.Close()

	if err := train.SetTokens(tokens); err != nil {
		return fmt.Errorf("train: could not set state batch: %v", err)
	}
	err = G.Let(intentTargets, tensor.New(
		tensor.WithBacking(intentHot),
		tensor.WithShape(turns, p.codec.NumIntents()),
	))
	if err != nil {
		return fmt.Errorf("train: could not set intent targets: %v", err)
	}
	err = G.Let(slotTargets, tensor.New(
		tensor.WithBacking(slotHot),
		tensor.WithShape(turns, p.codec.NumSlots()),
	))
	if err != nil {
		return fmt.Errorf("train: could not set slot targets: %v", err)
	}
	err = G.Let(returnsNode, tensor.New(
		tensor.WithBacking(returns),
		tensor.WithShape(turns),
	))
	if err != nil {
		return fmt.Errorf("train: could not set returns: %v", err)
	}

	if err := vm.RunAll(); err != nil {
		return fmt.Errorf("train: could not run training graph: %v", err)
	}

	sol, err := solver.NewDefaultAdam(p.config.LearningRate, turns)
	if err != nil {
		return fmt.Errorf("train: could not create solver: %v", err)
	}
	if err := sol.Step(train.Model()); err != nil {
		return fmt.Errorf("train: could not update weights: %v", err)
	}
	vm.Reset()

	if err := p.behaviour.Set(train); err != nil {
		return fmt.Errorf("train: could not update behaviour policy: %v",
			err)
	}
	p.losses = append(p.losses, lossVal.Data().(float64))

	p.decayEpsilon()
	return nil
}

// reinforceLoss adds the REINFORCE objective to the training network's
// graph: the mean over turns of -log π(a|s) · R, where the joint
// log-probability decomposes into the log-probability of the taken
// intent under the softmax head plus the Bernoulli log-likelihood of
// every slot's inclusion bit under the sigmoid head.
func reinforceLoss(train *network.ConvPolicy, intentTargets, slotTargets,
	returns *G.Node) *G.Node {
	intentProbs := train.Prediction()[0]
	slotProbs := train.Prediction()[1]
	one := G.NewConstant(1.0, G.WithName("one"))

	picked := G.Must(G.Sum(G.Must(G.HadamardProd(intentTargets,
		intentProbs)), 1))
	intentLogProb := G.Must(G.Log(picked))

	on := G.Must(G.HadamardProd(slotTargets, G.Must(G.Log(slotProbs))))
	off := G.Must(G.HadamardProd(
		G.Must(G.Sub(one, slotTargets)),
		G.Must(G.Log(G.Must(G.Sub(one, slotProbs)))),
	))
	slotLogProb := G.Must(G.Sum(G.Must(G.Add(on, off)), 1))

	logProb := G.Must(G.Add(intentLogProb, slotLogProb))
	loss := G.Must(G.Mean(G.Must(G.HadamardProd(logProb, returns))))
	return G.Must(G.Neg(loss))
}

// decayEpsilon decays the exploration rate multiplicatively, floored
// at the configured minimum.
func (p *Policy) decayEpsilon() {
	if p.epsilon > p.config.EpsilonMin {
		p.epsilon = math.Max(p.config.EpsilonMin,
			p.epsilon*p.config.EpsilonDecay)
	}
}

// discountedReturns computes the discounted return at every turn of a
// single dialogue by backward accumulation: R_t = r_t + γ·R_{t+1},
// with R re-zeroed at the dialogue boundary.
func discountedReturns(rewards []float64, gamma float64) []float64 {
	returns := make([]float64, len(rewards))
	R := 0.0
	for i := len(rewards) - 1; i >= 0; i-- {
		R = rewards[i] + gamma*R
		returns[i] = R
	}
	return returns
}

// Save persists the behaviour network's parameters to path. Optimizer
// state, the vocabulary, and the ε schedule are not saved.
func (p *Policy) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: %v", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(p.behaviour); err != nil {
		return fmt.Errorf("save: could not encode network: %v", err)
	}
	return nil
}

// Load restores network parameters saved by Save into the behaviour
// network. Loading from a missing path is a no-op that leaves the
// current network unchanged; callers that require a load to have
// happened must check existence themselves.
func (p *Policy) Load(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load: %v", err)
	}
	defer f.Close()

	loaded := new(network.ConvPolicy)
	if err := gob.NewDecoder(f).Decode(loaded); err != nil {
		return fmt.Errorf("load: could not decode network: %v", err)
	}
	if err := p.behaviour.Set(loaded); err != nil {
		return fmt.Errorf("load: could not set network weights: %v", err)
	}
	return nil
}
