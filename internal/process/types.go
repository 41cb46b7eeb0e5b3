package process

import "math"

// State holds the derived channels of one step, in the order given by
// Model.Channels.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Model interface {
	Name() string
	// Channels names the entries of State.
	Channels() []string
	// Primary names the principal observed channel.
	Primary() string
	// Controlled names the channel Observe reads.
	Controlled() string
	// Flows names the flow channels, charted together.
	Flows() []string
	Setpoint() float64
	// Observe extracts the controlled variable from a state.
	Observe(x State) float64
	Initial() State
	Step(u float64, prev State) State
}
