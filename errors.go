package orbitronica

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInstruments is returned when a mission is planned without any instrument.
	ErrNoInstruments = errors.New("at least one instrument must be selected")
	// ErrUnknownInstrument is returned for an instrument which is not in the catalog.
	ErrUnknownInstrument = errors.New("unknown instrument")
	// ErrNoActiveMission is returned by session operations which need a mission.
	ErrNoActiveMission = errors.New("no active mission")
)

// UnknownBodyError is returned when a body is not in the registry.
type UnknownBodyError struct {
	Name string
}

func (e *UnknownBodyError) Error() string {
	return fmt.Sprintf("unknown body '%s'", e.Name)
}

// ConvergenceError is returned when Kepler's equation could not be solved.
type ConvergenceError struct {
	MeanAnomaly  float64
	Eccentricity float64
	Iterations   int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("kepler solver did not converge after %d iterations (M=%f e=%f)", e.Iterations, e.MeanAnomaly, e.Eccentricity)
}

// InvalidLaunchWindowError is returned when the phase angle on the launch date is outside of the window.
type InvalidLaunchWindowError struct {
	Target   string
	Angle    float64
	Min, Max float64
}

func (e *InvalidLaunchWindowError) Error() string {
	return fmt.Sprintf("invalid launch window for %s: phase angle %.2f° must be between %.2f° and %.2f°", e.Target, e.Angle, e.Min, e.Max)
}

// InsufficientFuelError is returned when the fuel on board does not cover the mission requirement.
type InsufficientFuelError struct {
	Target    string
	Available float64
	Required  float64
}

func (e *InsufficientFuelError) Error() string {
	return fmt.Sprintf("insufficient fuel for %s: %.1f%% available, %.1f%% required", e.Target, e.Available, e.Required)
}

// InvalidApproachError is returned for a degenerate gravity assist approach.
type InvalidApproachError struct {
	Body string
	VInf float64
}

func (e *InvalidApproachError) Error() string {
	return fmt.Sprintf("invalid approach of %s: v_inf=%f km/s", e.Body, e.VInf)
}
