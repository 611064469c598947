package integrator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// Decay is y' = -k*y, whose solution is y0*exp(-k*t).
type Decay struct {
	state []float64
	k     float64
	iters uint64
	last  uint64
}

func (d *Decay) GetState() []float64 {
	return d.state
}

func (d *Decay) SetState(i uint64, s []float64) {
	d.state = s
	d.last = i
}

func (d *Decay) Stop(i uint64) bool {
	return i >= d.iters
}

func (d *Decay) Func(t float64, s []float64) []float64 {
	return []float64{-d.k * s[0]}
}

func TestRK4Decay(t *testing.T) {
	d := &Decay{state: []float64{1200}, k: 0.1, iters: 100}
	iterNum, xi, err := NewRK4(0, 0.1, d).Solve()
	if err != nil {
		t.Fatalf("err: %+v", err)
	}
	if iterNum != 100 || d.last != 99 {
		t.Fatalf("expected 100 iterations, got %d (last set %d)", iterNum, d.last)
	}
	if !scalar.EqualWithinAbs(xi, 10, 1e-9) {
		t.Fatalf("expected xi=10, got %f", xi)
	}
	exp := 1200 * math.Exp(-1)
	if !scalar.EqualWithinAbs(d.state[0], exp, 1e-6) {
		t.Fatalf("expected %f, got %f", exp, d.state[0])
	}
}

// Ramp has a constant derivative, which RK4 integrates exactly.
type Ramp struct {
	state []float64
}

func (r *Ramp) GetState() []float64            { return r.state }
func (r *Ramp) SetState(i uint64, s []float64) { r.state = s }
func (r *Ramp) Stop(i uint64) bool             { return i >= 3 }
func (r *Ramp) Func(t float64, s []float64) []float64 {
	return []float64{-0.5, 2}
}

func TestRK4Constant(t *testing.T) {
	r := &Ramp{state: []float64{10, 0}}
	if _, _, err := NewRK4(0, 1, r).Solve(); err != nil {
		t.Fatalf("err: %+v", err)
	}
	if !scalar.EqualWithinAbs(r.state[0], 8.5, 1e-12) || !scalar.EqualWithinAbs(r.state[1], 6, 1e-12) {
		t.Fatalf("unexpected state %v", r.state)
	}
}

type badSize struct{ Ramp }

func (b *badSize) Func(t float64, s []float64) []float64 {
	return []float64{1}
}

func TestRK4StateSize(t *testing.T) {
	b := &badSize{Ramp{state: []float64{1, 2}}}
	iterNum, _, err := NewRK4(0, 1, b).Solve()
	if err != ErrStateSize {
		t.Fatalf("expected ErrStateSize, got %v", err)
	}
	if iterNum != 0 {
		t.Fatalf("no iteration should have completed, got %d", iterNum)
	}
}

func TestRK4Panics(t *testing.T) {
	assertPanic(t, func() { NewRK4(0, 0, &Ramp{}) })
	assertPanic(t, func() { NewRK4(0, 1, nil) })
}

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("code did not panic")
		}
	}()
	f()
}
