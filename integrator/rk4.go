package integrator

import "errors"

// ErrStateSize is returned when the ODE function does not return as many items as the state.
var ErrStateSize = errors.New("derivative and state sizes differ")

// RK4 defines a fixed step RK4 integrator.
type RK4 struct {
	X0         float64    // The initial x0.
	StepSize   float64    // The step size.
	Integrator Integrable // What is to be integrated.
}

// NewRK4 returns a new RK4 integrator instance.
func NewRK4(x0 float64, stepSize float64, inte Integrable) (r *RK4) {
	if stepSize <= 0 {
		panic("config StepSize must be positive")
	}
	if inte == nil {
		panic("config Integrator may not be nil")
	}
	r = &RK4{X0: x0, StepSize: stepSize, Integrator: inte}
	return
}

// Solve solves the configured RK4 until the integrable requests to stop.
// Returns the number of iterations performed and the last X_i, or an error.
func (r *RK4) Solve() (uint64, float64, error) {
	iterNum := uint64(0)
	xi := r.X0
	for !r.Integrator.Stop(iterNum) {
		newState, err := r.Step(xi, r.Integrator.GetState())
		if err != nil {
			return iterNum, xi, err
		}
		r.Integrator.SetState(iterNum, newState)
		xi += r.StepSize
		iterNum++ // Don't forget to increment the number of iterations.
	}
	return iterNum, xi, nil
}

// Step returns the state after a single step from xi, without setting it.
func (r *RK4) Step(xi float64, state []float64) ([]float64, error) {
	const (
		half     = 1 / 2.0
		oneSixth = 1 / 6.0
		oneThird = 1 / 3.0
	)
	halfStep := r.StepSize * half
	newState := make([]float64, len(state))
	k1 := make([]float64, len(state))
	//k2, k3, k4 are used as buffers AND result variables.
	k2 := make([]float64, len(state))
	k3 := make([]float64, len(state))
	k4 := make([]float64, len(state))
	tState := make([]float64, len(state))

	// Compute the k's.
	f := r.Integrator.Func(xi, state)
	if len(f) != len(state) {
		return nil, ErrStateSize
	}
	for i, y := range f {
		k1[i] = y * r.StepSize
		tState[i] = state[i] + k1[i]*half
	}
	for i, y := range r.Integrator.Func(xi+halfStep, tState) {
		k2[i] = y * r.StepSize
		tState[i] = state[i] + k2[i]*half
	}
	for i, y := range r.Integrator.Func(xi+halfStep, tState) {
		k3[i] = y * r.StepSize
		tState[i] = state[i] + k3[i]
	}
	for i, y := range r.Integrator.Func(xi+r.StepSize, tState) {
		k4[i] = y * r.StepSize
		newState[i] = state[i] + oneSixth*(k1[i]+k4[i]) + oneThird*(k2[i]+k3[i])
	}
	return newState, nil
}
