package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// convKernel is the kernel width of every convolution in the policy
// network.
const convKernel = 3

// convStrides defines the convolution stack: four layers with two
// stride-2 downsampling stages in the middle.
var convStrides = []int{1, 2, 2, 1}

// ConvPolicy is the dialogue policy network. Encoded states enter as
// one-hot token rows, pass through an embedding, a stack of 1-D
// convolutions, and global max pooling over the sequence dimension,
// and leave through two independent heads: a softmax-normalized
// distribution over intents and independently-sigmoided per-slot
// inclusion probabilities. Intents are mutually exclusive; slots are
// not.
type ConvPolicy struct {
	g         *G.ExprGraph
	input     *G.Node // (batch*seqLen, vocabSize) one-hot rows
	embedding *G.Node // (vocabSize, embedDim)

	convs      []*convLayer
	act        *Activation // hidden activation of the conv stack
	intentHead *fcLayer
	slotHead   *fcLayer

	vocabSize  int
	seqLen     int
	batchSize  int
	embedDim   int
	hiddenDim  int
	numIntents int
	numSlots   int

	intentProbs *G.Node
	slotProbs   *G.Node
	intentVal   G.Value
	slotVal     G.Value

	learnables G.Nodes
	model      []G.ValueGrad
}

// NewConvPolicy creates a new ConvPolicy on g and adds its forward
// pass to the graph. The parameter seqLen is the fixed input sequence
// length; shorter token sequences are padded with all-zero one-hot
// rows, which contribute zero embedding vectors. The act parameter is
// the hidden activation applied after every convolution; the output
// heads are always identity before their softmax and sigmoid.
func NewConvPolicy(vocabSize, seqLen, batch, numIntents, numSlots,
	embedDim, hiddenDim int, act *Activation, g *G.ExprGraph,
	init G.InitWFn) (*ConvPolicy, error) {
	if vocabSize < 1 || numIntents < 1 || numSlots < 1 {
		return nil, fmt.Errorf("newconvpolicy: vocabulary, intent, and "+
			"slot sizes must be positive \n\thave(%v, %v, %v)", vocabSize,
			numIntents, numSlots)
	}
	if act == nil {
		return nil, fmt.Errorf("newconvpolicy: no hidden activation given")
	}
	if outLen := poolInLen(seqLen); outLen < 1 {
		return nil, fmt.Errorf("newconvpolicy: sequence length %v too "+
			"short for the convolution stack", seqLen)
	}

	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch*seqLen, vocabSize),
		G.WithName("stateTokens"),
		G.WithInit(G.Zeroes()),
	)
	embedding := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(vocabSize, embedDim),
		G.WithName("embedding"),
		G.WithInit(init),
	)

	channels := []int{embedDim, hiddenDim, hiddenDim, hiddenDim, hiddenDim}
	convs := make([]*convLayer, len(convStrides))
	for i, stride := range convStrides {
		convs[i] = newConvLayer(g, channels[i], channels[i+1], convKernel,
			stride, act, init, fmt.Sprintf("conv%d", i))
	}

	intentHead := newFCLayer(g, hiddenDim, numIntents, Identity(), init,
		"intentHead")
	slotHead := newFCLayer(g, hiddenDim, numSlots, Identity(), init,
		"slotHead")

	p := &ConvPolicy{
		g:          g,
		input:      input,
		embedding:  embedding,
		convs:      convs,
		act:        act,
		intentHead: intentHead,
		slotHead:   slotHead,
		vocabSize:  vocabSize,
		seqLen:     seqLen,
		batchSize:  batch,
		embedDim:   embedDim,
		hiddenDim:  hiddenDim,
		numIntents: numIntents,
		numSlots:   numSlots,
	}
	if err := p.fwd(); err != nil {
		return nil, fmt.Errorf("newconvpolicy: could not compute forward "+
			"pass: %v", err)
	}
	return p, nil
}

// poolInLen returns the sequence length entering the global max pool
// for an input of length seqLen.
func poolInLen(seqLen int) int {
	l := seqLen
	for _, stride := range convStrides {
		l = ConvOutLen(l, convKernel, stride)
	}
	return l
}

// fwd adds the forward pass of the ConvPolicy to the graph.
func (p *ConvPolicy) fwd() error {
	x := G.Must(G.Mul(p.input, p.embedding))
	x = G.Must(G.Reshape(x, tensor.Shape{p.batchSize, p.seqLen, p.embedDim}))
	x = G.Must(G.Transpose(x, 0, 2, 1))
	x = G.Must(G.Reshape(x, tensor.Shape{p.batchSize, p.embedDim, 1,
		p.seqLen}))

	var err error
	for i, conv := range p.convs {
		if x, err = conv.fwd(x); err != nil {
			return fmt.Errorf("fwd: could not compute forward pass of "+
				"convolution %v: %v", i, err)
		}
	}

	// Global max pool over the remaining sequence dimension
	x = G.Must(G.Reshape(x, tensor.Shape{p.batchSize, p.hiddenDim,
		poolInLen(p.seqLen)}))
	pooled := G.Must(G.Max(x, 2))

	intentLogits, err := p.intentHead.fwd(pooled)
	if err != nil {
		return fmt.Errorf("fwd: could not compute intent head: %v", err)
	}
	p.intentProbs = G.Must(G.SoftMax(intentLogits, 1))

	slotLogits, err := p.slotHead.fwd(pooled)
	if err != nil {
		return fmt.Errorf("fwd: could not compute slot head: %v", err)
	}
	p.slotProbs = G.Must(G.Sigmoid(slotLogits))

	G.Read(p.intentProbs, &p.intentVal)
	G.Read(p.slotProbs, &p.slotVal)
	return nil
}

// Graph returns the computational graph of the ConvPolicy.
func (p *ConvPolicy) Graph() *G.ExprGraph {
	return p.g
}

// BatchSize returns the number of state sequences in an input batch.
func (p *ConvPolicy) BatchSize() int {
	return p.batchSize
}

// Features returns the number of input features per sample: the
// one-hot width of a full padded token sequence.
func (p *ConvPolicy) Features() int {
	return p.seqLen * p.vocabSize
}

// SeqLen returns the fixed input sequence length.
func (p *ConvPolicy) SeqLen() int {
	return p.seqLen
}

// NumIntents returns the size of the intent distribution head.
func (p *ConvPolicy) NumIntents() int {
	return p.numIntents
}

// NumSlots returns the size of the slot probability head.
func (p *ConvPolicy) NumSlots() int {
	return p.numSlots
}

// SetInput sets the value of the input node from flattened one-hot
// rows in row major order.
func (p *ConvPolicy) SetInput(input []float64) error {
	if len(input) != p.batchSize*p.seqLen*p.vocabSize {
		return fmt.Errorf("setinput: invalid number of inputs \n\twant(%v)"+
			"\n\thave(%v)", p.batchSize*p.seqLen*p.vocabSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(p.input.Shape()...),
	)
	return G.Let(p.input, inputTensor)
}

// SetTokens sets the input node from one token-id sequence per batch
// sample. Sequences are truncated at the fixed length; shorter
// sequences leave their trailing one-hot rows zero.
func (p *ConvPolicy) SetTokens(tokens [][]int) error {
	if len(tokens) != p.batchSize {
		return fmt.Errorf("settokens: invalid batch \n\twant(%v)"+
			"\n\thave(%v)", p.batchSize, len(tokens))
	}

	input := make([]float64, p.batchSize*p.seqLen*p.vocabSize)
	for b, seq := range tokens {
		for t, id := range seq {
			if t >= p.seqLen {
				break
			}
			if id < 0 || id >= p.vocabSize {
				return fmt.Errorf("settokens: token id %v outside "+
					"vocabulary of size %v", id, p.vocabSize)
			}
			input[(b*p.seqLen+t)*p.vocabSize+id] = 1.0
		}
	}
	return p.SetInput(input)
}

// Set sets the weights of a ConvPolicy to be equal to the weights of
// another ConvPolicy of identical architecture.
func (p *ConvPolicy) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := p.Learnables()
	if len(sourceNodes) != len(nodes) {
		return fmt.Errorf("set: source has %v learnables but destination "+
			"has %v", len(sourceNodes), len(nodes))
	}
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// CloneWithBatch clones the ConvPolicy onto a new graph with a new
// input batch size.
func (p *ConvPolicy) CloneWithBatch(batch int) (NeuralNet, error) {
	clone, err := NewConvPolicy(p.vocabSize, p.seqLen, batch, p.numIntents,
		p.numSlots, p.embedDim, p.hiddenDim, p.act, G.NewGraph(), G.Zeroes())
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: %v", err)
	}
	if err := clone.Set(p); err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not copy weights: %v",
			err)
	}
	return clone, nil
}

// Learnables returns the learnable nodes of the ConvPolicy.
func (p *ConvPolicy) Learnables() G.Nodes {
	// Lazy instantiation
	if p.learnables == nil {
		learnables := G.Nodes{p.embedding}
		for _, conv := range p.convs {
			learnables = append(learnables, conv.Weights(), conv.Bias())
		}
		learnables = append(learnables, p.intentHead.Weights(),
			p.intentHead.Bias(), p.slotHead.Weights(), p.slotHead.Bias())
		p.learnables = learnables
	}
	return p.learnables
}

// Model returns the learnable nodes with their gradients.
func (p *ConvPolicy) Model() []G.ValueGrad {
	// Lazy instantiation
	if p.model == nil {
		for _, node := range p.Learnables() {
			p.model = append(p.model, node)
		}
	}
	return p.model
}

// Output returns the last computed intent and slot probabilities.
func (p *ConvPolicy) Output() []G.Value {
	return []G.Value{p.intentVal, p.slotVal}
}

// Prediction returns the intent and slot probability nodes.
func (p *ConvPolicy) Prediction() []*G.Node {
	return []*G.Node{p.intentProbs, p.slotProbs}
}

// GobEncode implements the gob.GobEncoder interface. Only the
// architecture hyperparameters, the hidden activation, and the
// learnable weights are encoded.
func (p *ConvPolicy) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	dims := []int{p.vocabSize, p.seqLen, p.batchSize, p.numIntents,
		p.numSlots, p.embedDim, p.hiddenDim}
	if err := enc.Encode(dims); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode dimensions: %v",
			err)
	}
	if err := enc.Encode(p.act); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode activation: %v",
			err)
	}

	for i, learnable := range p.Learnables() {
		weights, ok := learnable.Value().(*tensor.Dense)
		if !ok {
			return nil, fmt.Errorf("gobencode: learnable %v is not a "+
				"dense tensor", i)
		}
		if err := enc.Encode(weights); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode learnable "+
				"%v: %v", i, err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (p *ConvPolicy) GobDecode(in []byte) error {
	buf := bytes.NewReader(in)
	dec := gob.NewDecoder(buf)

	var dims []int
	if err := dec.Decode(&dims); err != nil {
		return fmt.Errorf("gobdecode: could not decode dimensions: %v", err)
	}
	if len(dims) != 7 {
		return fmt.Errorf("gobdecode: expected 7 dimensions, got %v",
			len(dims))
	}

	act := new(Activation)
	if err := dec.Decode(act); err != nil {
		return fmt.Errorf("gobdecode: could not decode activation: %v", err)
	}

	newPolicy, err := NewConvPolicy(dims[0], dims[1], dims[2], dims[3],
		dims[4], dims[5], dims[6], act, G.NewGraph(), G.Zeroes())
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct policy: %v", err)
	}

	for i, learnable := range newPolicy.Learnables() {
		weights := new(tensor.Dense)
		if err := dec.Decode(weights); err != nil {
			return fmt.Errorf("gobdecode: could not decode learnable %v: %v",
				i, err)
		}
		if err := G.Let(learnable, weights); err != nil {
			return fmt.Errorf("gobdecode: could not set learnable %v: %v",
				i, err)
		}
	}

	*p = *newPolicy
	return nil
}
