package neuron

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultPresynapticPotential is the presynaptic potential of a new connection.
const DefaultPresynapticPotential = 1.0

// ConnectionRef names a connection by its owning neuron and slot index.
// Slots are never reused, so two refs are equal iff they name the same
// connection.
type ConnectionRef struct {
	Neuron NeuronID `json:"neuron"`
	Slot   int      `json:"slot"`
}

func (r ConnectionRef) String() string {
	return fmt.Sprintf("C-%d#%d", r.Neuron, r.Slot)
}

// ParseConnectionRef accepts the String form "C-3#0" or a bare "3#0".
func ParseConnectionRef(s string) (ConnectionRef, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "C-")
	owner, slot, ok := strings.Cut(raw, "#")
	if !ok {
		return ConnectionRef{}, fmt.Errorf("%w: connection ref %q (want C-<neuron>#<slot>)", ErrInvalidParameter, s)
	}
	id, err := ParseNeuronID(owner)
	if err != nil {
		return ConnectionRef{}, fmt.Errorf("%w: connection ref %q", ErrInvalidParameter, s)
	}
	n, err := strconv.Atoi(slot)
	if err != nil || n < 0 {
		return ConnectionRef{}, fmt.Errorf("%w: connection ref %q", ErrInvalidParameter, s)
	}
	return ConnectionRef{Neuron: id, Slot: n}, nil
}

// TargetKind tells which side of a Target is set.
type TargetKind int

const (
	TargetInvalid TargetKind = iota
	TargetNeuron
	TargetConnection
)

func (k TargetKind) String() string {
	switch k {
	case TargetNeuron:
		return "neuron"
	case TargetConnection:
		return "connection"
	default:
		return "invalid"
	}
}

// Target is what a connection points at: either a neuron (a feed-forward
// synapse) or another connection (a presynaptic edge). The zero value is
// invalid.
type Target struct {
	kind       TargetKind
	neuron     NeuronID
	connection ConnectionRef
}

// NeuronTarget returns a Target pointing at neuron id.
func NeuronTarget(id NeuronID) Target {
	return Target{kind: TargetNeuron, neuron: id}
}

// ConnectionTarget returns a Target pointing at the connection ref.
func ConnectionTarget(ref ConnectionRef) Target {
	return Target{kind: TargetConnection, connection: ref}
}

// Kind returns which kind of target t is.
func (t Target) Kind() TargetKind { return t.kind }

// Neuron returns the target neuron id; ok is false for connection targets.
func (t Target) Neuron() (id NeuronID, ok bool) {
	return t.neuron, t.kind == TargetNeuron
}

// Connection returns the target connection ref; ok is false for neuron targets.
func (t Target) Connection() (ref ConnectionRef, ok bool) {
	return t.connection, t.kind == TargetConnection
}

func (t Target) String() string {
	switch t.kind {
	case TargetNeuron:
		return fmt.Sprintf("N-%d", t.neuron)
	case TargetConnection:
		return t.connection.String()
	default:
		return "<invalid target>"
	}
}

type targetJSON struct {
	Kind       string         `json:"kind"`
	Neuron     *NeuronID      `json:"neuron,omitempty"`
	Connection *ConnectionRef `json:"connection,omitempty"`
}

// MarshalJSON encodes the tagged variant with an explicit kind field.
func (t Target) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TargetNeuron:
		id := t.neuron
		return json.Marshal(targetJSON{Kind: "neuron", Neuron: &id})
	case TargetConnection:
		ref := t.connection
		return json.Marshal(targetJSON{Kind: "connection", Connection: &ref})
	default:
		return nil, fmt.Errorf("cannot encode invalid target")
	}
}

// UnmarshalJSON decodes a target written by MarshalJSON.
func (t *Target) UnmarshalJSON(data []byte) error {
	var raw targetJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "neuron":
		if raw.Neuron == nil {
			return fmt.Errorf("neuron target without neuron id")
		}
		*t = NeuronTarget(*raw.Neuron)
	case "connection":
		if raw.Connection == nil {
			return fmt.Errorf("connection target without connection ref")
		}
		*t = ConnectionTarget(*raw.Connection)
	default:
		return fmt.Errorf("unknown target kind %q", raw.Kind)
	}
	return nil
}

// Connection is a directed, typed, weighted edge owned by exactly one neuron.
// It is created and destroyed only through Network edge operations; the
// step driver may freely update the weight, potential and step fields.
type Connection struct {
	ref    ConnectionRef
	target Target

	ActivationType ActivationType
	Function       FunctionKind
	Learning       LearningType
	Transmitter    TransmitterType

	// BaseWeight is the anchor short and long weights relax toward.
	BaseWeight float64
	// ShortWeight is the live weight used to scale signals.
	ShortWeight float64
	LongWeight  float64
	// LongLearningWeight modulates long-term change. Starts at 1.
	LongLearningWeight float64

	PresynapticPotential         float64
	LastActivatedStep            int64
	LastPresynapticActivatedStep int64
}

// Ref returns the connection's own address.
func (c *Connection) Ref() ConnectionRef { return c.ref }

// Owner returns the id of the neuron that owns c (its prev_neuron).
func (c *Connection) Owner() NeuronID { return c.ref.Neuron }

// Target returns what c points at.
func (c *Connection) Target() Target { return c.target }

// Weight returns the value of the selected weight tier.
func (c *Connection) Weight(tier WeightTier) (float64, error) {
	switch tier {
	case WeightBase:
		return c.BaseWeight, nil
	case WeightLong:
		return c.LongWeight, nil
	case WeightShort:
		return c.ShortWeight, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidParameter, tier)
	}
}

func (c *Connection) String() string {
	return fmt.Sprintf("N-%d -> %s (%s, %s, w=%.3f)", c.ref.Neuron, c.target, c.ActivationType, c.Function, c.ShortWeight)
}

// ConnectionOption customizes a connection at creation time.
type ConnectionOption func(*connectionSettings)

type connectionSettings struct {
	activationType ActivationType
	function       FunctionKind
	learning       LearningType
	transmitter    TransmitterType
}

func defaultConnectionSettings() connectionSettings {
	return connectionSettings{
		activationType: Excitatory,
		function:       FunctionReLU,
		learning:       LearningNone,
		transmitter:    StdTransmitter,
	}
}

// WithActivationType sets excitatory, inhibitory or nondirectional.
func WithActivationType(a ActivationType) ConnectionOption {
	return func(s *connectionSettings) { s.activationType = a }
}

// WithFunction sets the activation function.
func WithFunction(f FunctionKind) ConnectionOption {
	return func(s *connectionSettings) { s.function = f }
}

// WithLearning sets the learning type.
func WithLearning(l LearningType) ConnectionOption {
	return func(s *connectionSettings) { s.learning = l }
}

// WithTransmitter sets the transmitter type.
func WithTransmitter(t TransmitterType) ConnectionOption {
	return func(s *connectionSettings) { s.transmitter = t }
}

func (s connectionSettings) validate() error {
	if !s.activationType.Valid() {
		return fmt.Errorf("%w: activation type %s", ErrInvalidParameter, s.activationType)
	}
	if !s.function.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownTransform, s.function)
	}
	if !s.learning.Valid() {
		return fmt.Errorf("%w: learning type %s", ErrInvalidParameter, s.learning)
	}
	if !s.transmitter.Valid() {
		return fmt.Errorf("%w: transmitter type %s", ErrInvalidParameter, s.transmitter)
	}
	return nil
}

func newConnection(ref ConnectionRef, target Target, weight float64, s connectionSettings) *Connection {
	return &Connection{
		ref:                  ref,
		target:               target,
		ActivationType:       s.activationType,
		Function:             s.function,
		Learning:             s.learning,
		Transmitter:          s.transmitter,
		BaseWeight:           weight,
		ShortWeight:          weight,
		LongWeight:           weight,
		LongLearningWeight:   1.0,
		PresynapticPotential: DefaultPresynapticPotential,
	}
}
