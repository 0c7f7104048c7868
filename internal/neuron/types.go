package neuron

import (
	"fmt"
	"strings"
)

// ActivationType defines whether a connection excites or inhibits its target.
type ActivationType int

const (
	Nondirectional ActivationType = 0
	Excitatory     ActivationType = 1
	Inhibitory     ActivationType = -1
)

var activationTypeNames = map[ActivationType]string{
	Excitatory:     "excitatory",
	Inhibitory:     "inhibitory",
	Nondirectional: "nondirectional",
}

func (a ActivationType) String() string {
	if name, ok := activationTypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ActivationType(%d)", int(a))
}

// Valid reports whether a is one of the known activation types.
func (a ActivationType) Valid() bool {
	_, ok := activationTypeNames[a]
	return ok
}

// ParseActivationType maps a name to an ActivationType (case-insensitive).
func ParseActivationType(s string) (ActivationType, error) {
	for value, name := range activationTypeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown activation type %q", ErrInvalidParameter, s)
}

func (a ActivationType) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, a)
	}
	return []byte(a.String()), nil
}

func (a *ActivationType) UnmarshalText(text []byte) error {
	v, err := ParseActivationType(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// FunctionKind selects the transform applied when a signal crosses a connection.
type FunctionKind int

const (
	FunctionSigmoid FunctionKind = 1
	FunctionLinear  FunctionKind = 2
	FunctionReLU    FunctionKind = 3
)

var functionKindNames = map[FunctionKind]string{
	FunctionSigmoid: "sigmoid",
	FunctionLinear:  "linear",
	FunctionReLU:    "relu",
}

func (f FunctionKind) String() string {
	if name, ok := functionKindNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FunctionKind(%d)", int(f))
}

// Valid reports whether f has a registered transform.
func (f FunctionKind) Valid() bool {
	_, ok := functionKindNames[f]
	return ok
}

// ParseFunctionKind maps a name to a FunctionKind. "rectified-linear" is
// accepted as an alias of "relu".
func ParseFunctionKind(s string) (FunctionKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "rectified-linear" {
		return FunctionReLU, nil
	}
	for value, name := range functionKindNames {
		if s == name {
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown activation function %q", ErrInvalidParameter, s)
}

func (f FunctionKind) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransform, f)
	}
	return []byte(f.String()), nil
}

func (f *FunctionKind) UnmarshalText(text []byte) error {
	v, err := ParseFunctionKind(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// LearningType defines which plasticity processes a connection takes part in.
type LearningType int

const (
	LearningNone          LearningType = 1
	LearningHabituation   LearningType = 2
	LearningSensitization LearningType = 3
	LearningHabisens      LearningType = 4
)

var learningTypeNames = map[LearningType]string{
	LearningNone:          "none",
	LearningHabituation:   "habituation",
	LearningSensitization: "sensitization",
	LearningHabisens:      "habisens",
}

func (l LearningType) String() string {
	if name, ok := learningTypeNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LearningType(%d)", int(l))
}

// Valid reports whether l is a known learning type.
func (l LearningType) Valid() bool {
	_, ok := learningTypeNames[l]
	return ok
}

// Habituates reports whether connections of this type habituate.
func (l LearningType) Habituates() bool {
	return l == LearningHabituation || l == LearningHabisens
}

// Sensitizes reports whether connections of this type sensitize.
func (l LearningType) Sensitizes() bool {
	return l == LearningSensitization || l == LearningHabisens
}

// ParseLearningType maps a name to a LearningType. "both" is accepted as an
// alias of "habisens".
func ParseLearningType(s string) (LearningType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "both" {
		return LearningHabisens, nil
	}
	for value, name := range learningTypeNames {
		if s == name {
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown learning type %q", ErrInvalidParameter, s)
}

func (l LearningType) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, l)
	}
	return []byte(l.String()), nil
}

func (l *LearningType) UnmarshalText(text []byte) error {
	v, err := ParseLearningType(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// TransmitterType tags the neurotransmitter a connection uses.
type TransmitterType int

const (
	NoTransmitter  TransmitterType = -1
	StdTransmitter TransmitterType = 0
)

var transmitterTypeNames = map[TransmitterType]string{
	NoTransmitter:  "none",
	StdTransmitter: "standard",
}

func (t TransmitterType) String() string {
	if name, ok := transmitterTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TransmitterType(%d)", int(t))
}

// Valid reports whether t is a known transmitter type.
func (t TransmitterType) Valid() bool {
	_, ok := transmitterTypeNames[t]
	return ok
}

// ParseTransmitterType maps a name to a TransmitterType.
func ParseTransmitterType(s string) (TransmitterType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for value, name := range transmitterTypeNames {
		if s == name {
			return value, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown transmitter type %q", ErrInvalidParameter, s)
}

func (t TransmitterType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, t)
	}
	return []byte(t.String()), nil
}

func (t *TransmitterType) UnmarshalText(text []byte) error {
	v, err := ParseTransmitterType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Influence is the polarity a neuron applies to its influenced transmitter.
type Influence int

const (
	PositiveInfluence Influence = 1
	NegativeInfluence Influence = -1
)

func (i Influence) String() string {
	switch i {
	case PositiveInfluence:
		return "positive"
	case NegativeInfluence:
		return "negative"
	default:
		return fmt.Sprintf("Influence(%d)", int(i))
	}
}

// Valid reports whether i is positive or negative.
func (i Influence) Valid() bool {
	return i == PositiveInfluence || i == NegativeInfluence
}

// ParseInfluence maps "positive"/"negative" to an Influence.
func ParseInfluence(s string) (Influence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "+":
		return PositiveInfluence, nil
	case "negative", "-":
		return NegativeInfluence, nil
	default:
		return 0, fmt.Errorf("%w: unknown influence %q", ErrInvalidParameter, s)
	}
}

func (i Influence) MarshalText() ([]byte, error) {
	if !i.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameter, i)
	}
	return []byte(i.String()), nil
}

func (i *Influence) UnmarshalText(text []byte) error {
	v, err := ParseInfluence(string(text))
	if err != nil {
		return err
	}
	*i = v
	return nil
}

// WeightTier selects one of a connection's weights.
type WeightTier int

const (
	WeightBase  WeightTier = 0
	WeightLong  WeightTier = 1
	WeightShort WeightTier = 2
)

func (w WeightTier) String() string {
	switch w {
	case WeightBase:
		return "base"
	case WeightLong:
		return "long"
	case WeightShort:
		return "short"
	default:
		return fmt.Sprintf("WeightTier(%d)", int(w))
	}
}

// ParseWeightTier maps "base", "long" or "short" to a WeightTier.
func ParseWeightTier(s string) (WeightTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "base":
		return WeightBase, nil
	case "long":
		return WeightLong, nil
	case "short", "":
		return WeightShort, nil
	default:
		return 0, fmt.Errorf("%w: unknown weight tier %q", ErrInvalidParameter, s)
	}
}
