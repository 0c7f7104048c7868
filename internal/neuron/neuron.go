package neuron

import (
	"fmt"
	"math"
	"strings"
)

// RandomChanceScale is the denominator of the per-step random activation
// chance: a chance of 10000 fires every step.
const RandomChanceScale = 10000

// Curve is a curvature/steepness pair describing the shape of one
// plasticity or decay process.
type Curve struct {
	Curvature float64 `json:"curvature" yaml:"curvature"`
	Steepness float64 `json:"steepness" yaml:"steepness"`
}

// CurveKind selects one of a neuron's curves.
type CurveKind int

const (
	ActivationBackfall CurveKind = iota
	ShortHabituation
	ShortSensitization
	ShortDehabituation
	ShortDesensitization
	LongHabituation
	LongSensitization
	LongDehabituation
	LongDesensitization
	PresynapticPotentialGrowth
	PresynapticBackfall
	LongLearningWeightReduction
	LongLearningWeightBackfall

	numCurveKinds
)

var curveKindNames = [numCurveKinds]string{
	ActivationBackfall:          "activation_backfall",
	ShortHabituation:            "short_habituation",
	ShortSensitization:          "short_sensitization",
	ShortDehabituation:          "short_dehabituation",
	ShortDesensitization:        "short_desensitization",
	LongHabituation:             "long_habituation",
	LongSensitization:           "long_sensitization",
	LongDehabituation:           "long_dehabituation",
	LongDesensitization:         "long_desensitization",
	PresynapticPotentialGrowth:  "presynaptic_potential",
	PresynapticBackfall:         "presynaptic_backfall",
	LongLearningWeightReduction: "long_learning_weight_reduction",
	LongLearningWeightBackfall:  "long_learning_weight_backfall",
}

func (k CurveKind) String() string {
	if k >= 0 && k < numCurveKinds {
		return curveKindNames[k]
	}
	return fmt.Sprintf("CurveKind(%d)", int(k))
}

// CurveKinds returns every curve kind in declaration order.
func CurveKinds() []CurveKind {
	kinds := make([]CurveKind, numCurveKinds)
	for i := range kinds {
		kinds[i] = CurveKind(i)
	}
	return kinds
}

// ParseCurveKind maps a snake_case curve name to its CurveKind.
func ParseCurveKind(s string) (CurveKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range curveKindNames {
		if s == name {
			return CurveKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown curve %q", ErrInvalidParameter, s)
}

// RandomActivation configures spontaneous firing. It is storage only; the
// step driver decides when to roll the dice.
type RandomActivation struct {
	Enabled bool    `json:"enabled"`
	Chance  int     `json:"chance"` // per step, out of RandomChanceScale
	Value   float64 `json:"value"`
}

// Neuron is a node with activation state, a firing threshold and a set of
// plasticity parameters. It owns its outgoing connections.
type Neuron struct {
	id NeuronID

	Threshold         float64
	Activation        float64
	TempActivation    float64
	LastActivatedStep int64
	LastFiredStep     int64
	WasActivated      bool

	random RandomActivation

	curves                 [numCurveKinds]Curve
	habituationThreshold   float64
	sensitizationThreshold float64
	influencedTransmitter  TransmitterType
	influenceDirection     Influence

	// connections holds owned edges by slot; removed slots are nil.
	connections []*Connection
	// previous lists neurons with a direct edge into this one.
	previous []NeuronID
}

func newNeuron(id NeuronID, threshold float64) *Neuron {
	return &Neuron{
		id:                    id,
		Threshold:             threshold,
		WasActivated:          true,
		influencedTransmitter: NoTransmitter,
		influenceDirection:    PositiveInfluence,
	}
}

// ID returns the neuron's process-unique id.
func (n *Neuron) ID() NeuronID { return n.id }

// IsActive reports whether the neuron's activation has reached its threshold.
func (n *Neuron) IsActive() bool {
	return n.Activation >= n.Threshold
}

// Step returns the network step the neuron was last activated.
func (n *Neuron) Step() int64 { return n.LastActivatedStep }

// SetStep records the network step the neuron was last activated.
func (n *Neuron) SetStep(step int64) { n.LastActivatedStep = step }

// Curve returns the curvature/steepness pair of the given kind.
func (n *Neuron) Curve(kind CurveKind) Curve {
	if kind < 0 || kind >= numCurveKinds {
		return Curve{}
	}
	return n.curves[kind]
}

// SetCurve stores the curvature/steepness pair of the given kind.
func (n *Neuron) SetCurve(kind CurveKind, c Curve) error {
	if kind < 0 || kind >= numCurveKinds {
		return fmt.Errorf("%w: %s", ErrInvalidParameter, kind)
	}
	if !finite(c.Curvature) || !finite(c.Steepness) {
		return fmt.Errorf("%w: %s curve must be finite, got %+v", ErrInvalidParameter, kind, c)
	}
	n.curves[kind] = c
	return nil
}

// HabituationThreshold is the activation level up to which the neuron habituates.
func (n *Neuron) HabituationThreshold() float64 { return n.habituationThreshold }

// SetHabituationThreshold stores the habituation gate.
func (n *Neuron) SetHabituationThreshold(v float64) error {
	if !finite(v) {
		return fmt.Errorf("%w: habituation threshold %v", ErrInvalidParameter, v)
	}
	n.habituationThreshold = v
	return nil
}

// SensitizationThreshold is the activation level from which the neuron sensitizes.
func (n *Neuron) SensitizationThreshold() float64 { return n.sensitizationThreshold }

// SetSensitizationThreshold stores the sensitization gate.
func (n *Neuron) SetSensitizationThreshold(v float64) error {
	if !finite(v) {
		return fmt.Errorf("%w: sensitization threshold %v", ErrInvalidParameter, v)
	}
	n.sensitizationThreshold = v
	return nil
}

// InfluencedTransmitter is the transmitter this neuron modulates when active.
func (n *Neuron) InfluencedTransmitter() TransmitterType { return n.influencedTransmitter }

// SetInfluencedTransmitter stores the modulated transmitter.
func (n *Neuron) SetInfluencedTransmitter(t TransmitterType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: transmitter %s", ErrInvalidParameter, t)
	}
	n.influencedTransmitter = t
	return nil
}

// TransmitterInfluenceDirection is the polarity of the transmitter influence.
func (n *Neuron) TransmitterInfluenceDirection() Influence { return n.influenceDirection }

// SetTransmitterInfluenceDirection stores the polarity of the transmitter influence.
func (n *Neuron) SetTransmitterInfluenceDirection(i Influence) error {
	if !i.Valid() {
		return fmt.Errorf("%w: influence %s", ErrInvalidParameter, i)
	}
	n.influenceDirection = i
	return nil
}

// RandomActivation returns the spontaneous firing configuration.
func (n *Neuron) RandomActivation() RandomActivation { return n.random }

// SetRandomActivation enables spontaneous firing with the given chance per
// step (0..RandomChanceScale) and activation magnitude.
func (n *Neuron) SetRandomActivation(chance int, value float64) error {
	if chance < 0 || chance > RandomChanceScale {
		return fmt.Errorf("%w: random chance %d outside [0, %d]", ErrInvalidParameter, chance, RandomChanceScale)
	}
	if !finite(value) {
		return fmt.Errorf("%w: random activation value %v", ErrInvalidParameter, value)
	}
	n.random = RandomActivation{Enabled: true, Chance: chance, Value: value}
	return nil
}

// DisableRandomActivation turns spontaneous firing off.
func (n *Neuron) DisableRandomActivation() {
	n.random = RandomActivation{}
}

// OutDegree returns the number of live outgoing connections.
func (n *Neuron) OutDegree() int {
	count := 0
	for _, c := range n.connections {
		if c != nil {
			count++
		}
	}
	return count
}

// Connections returns the live outgoing connections in creation order.
// The slice is a copy; the connections themselves are shared.
func (n *Neuron) Connections() []*Connection {
	out := make([]*Connection, 0, len(n.connections))
	for _, c := range n.connections {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Previous returns a copy of the back-reference list.
func (n *Neuron) Previous() []NeuronID {
	return append([]NeuronID(nil), n.previous...)
}

func (n *Neuron) String() string {
	return fmt.Sprintf("N-%d", n.id)
}

// connectionTo returns the first live connection targeting neuron id.
func (n *Neuron) connectionTo(id NeuronID) (*Connection, int) {
	for i, c := range n.connections {
		if c == nil {
			continue
		}
		if target, ok := c.target.Neuron(); ok && target == id {
			return c, i
		}
	}
	return nil, -1
}

// removePrevious drops the first back-reference to id, preserving order.
func (n *Neuron) removePrevious(id NeuronID) bool {
	for i, prev := range n.previous {
		if prev == id {
			n.previous = append(n.previous[:i], n.previous[i+1:]...)
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
