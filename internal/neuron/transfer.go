package neuron

import (
	"fmt"
	"math"
)

// TransferFunc maps a connection's input signal to its output signal.
type TransferFunc func(x float64) float64

var transferFuncs = map[FunctionKind]TransferFunc{
	FunctionSigmoid: Sigmoid,
	FunctionLinear:  Linear,
	FunctionReLU:    ReLU,
}

// Sigmoid returns 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Linear returns x unchanged.
func Linear(x float64) float64 {
	return x
}

// ReLU returns max(0, x).
func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Apply runs the transform of the given kind. An unknown kind yields 0 and
// ErrUnknownTransform.
func Apply(kind FunctionKind, input float64) (float64, error) {
	fn, ok := transferFuncs[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTransform, kind)
	}
	return fn(input), nil
}

// Transmit applies c's activation function to input. For an unknown
// function a warning naming the owning neuron is logged and the signal is
// 0, so a single malformed edge does not stop a simulation step.
func (net *Network) Transmit(c *Connection, input float64) (float64, error) {
	if c == nil {
		return 0, fmt.Errorf("%w: nil connection", ErrEdgeNotFound)
	}
	out, err := Apply(c.Function, input)
	if err != nil {
		net.mu.RLock()
		net.warn("invalid activation function for connection", "neuron", c.Owner(), "function", int(c.Function))
		net.mu.RUnlock()
		return 0, fmt.Errorf("connection of N-%d: %w", c.Owner(), err)
	}
	return out, nil
}
