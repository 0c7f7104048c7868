package neuron

import "errors"

var (
	// ErrDuplicateEdge is returned when an edge already exists according to
	// the relevant connectivity check. The graph is left untouched.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrEdgeNotFound is returned by removals and weight queries against an
	// edge that does not exist.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrUnknownTransform is returned by the dispatcher for an unrecognized
	// activation-function kind. The transmitted signal is 0.
	ErrUnknownTransform = errors.New("unknown activation function")

	// ErrNeuronNotFound is returned when a neuron id is not registered.
	ErrNeuronNotFound = errors.New("neuron not found")

	// ErrInvalidParameter is returned by setters and parsers on bad input.
	ErrInvalidParameter = errors.New("invalid parameter")
)
