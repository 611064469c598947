package orbitronica

import (
	"errors"
	"fmt"
	"math"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/orbitronica/orbitronica/integrator"
)

// Phase is the lifecycle phase of a mission.
type Phase uint8

const (
	// Planned missions have been validated but not started.
	Planned Phase = iota
	// Active missions consume resources on every tick.
	Active
	// Succeeded is terminal.
	Succeeded
	// Failed is terminal.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Planned:
		return "planned"
	case Active:
		return "active"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Terminal returns whether no further transition can happen from this phase.
func (p Phase) Terminal() bool {
	return p == Succeeded || p == Failed
}

// Failure reasons.
const (
	ReasonFuel  = "Critical fuel level reached"
	ReasonPower = "Power systems critical"
	ReasonTime  = "Mission time exceeded"
)

// Outcome is the terminal result of a mission.
type Outcome struct {
	Status Phase  `msgpack:"status" json:"status"`
	Reason string `msgpack:"reason,omitempty" json:"reason,omitempty"`
}

// Notification returns the operator message of this outcome.
func (o Outcome) Notification() string {
	if o.Status == Succeeded {
		return "Mission Succeeded!"
	}
	return "Mission Failed: " + o.Reason
}

func (o Outcome) String() string {
	return o.Notification()
}

// MissionState is the progress of a mission.
type MissionState struct {
	Departure     string
	Target        string
	Instruments   []Instrument
	LaunchDate    time.Time
	Plan          TransferPlan
	ElapsedDays   float64
	Resources     Resources
	TargetReached bool
	Phase         Phase
	Outcome       *Outcome
	Position      OrbitalState
	PositionStale bool // set when the last position refresh failed
	Ticks         uint64
}

func (s MissionState) String() string {
	return fmt.Sprintf("%s->%s %s day=%.1f/%.1f %s reached=%t", s.Departure, s.Target, s.Phase, s.ElapsedDays, s.Plan.Duration, s.Resources, s.TargetReached)
}

// Evaluate returns the outcome of the mission given its rules, or nil if it continues.
// Checks are ordered: fuel, power, time and finally success.
func Evaluate(state MissionState, rules MissionRules) *Outcome {
	res := state.Resources
	switch {
	case res.FuelDepleted || res.Fuel < rules.MinFuel:
		return &Outcome{Failed, ReasonFuel}
	case res.PowerDepleted || res.Power < rules.MinPower:
		return &Outcome{Failed, ReasonPower}
	case state.ElapsedDays > rules.MaxElapsedDays:
		return &Outcome{Failed, ReasonTime}
	case res.Data >= rules.RequiredData && state.TargetReached:
		return &Outcome{Status: Succeeded}
	}
	return nil
}

// PlanRequest is a request to plan a mission.
type PlanRequest struct {
	Target      string
	Instruments []string
	LaunchDate  time.Time
}

// MissionConfig is the vehicle and simulation setup of a mission.
// Every zero field gets a default except Resources: zero resources are an empty tank and a dead
// battery, which no destination accepts. Use FullResources for a fresh spacecraft.
type MissionConfig struct {
	Departure   string
	Resources   Resources
	Longitudes  Longitudes // defaults to MeanLongitudes
	Model       ResourceModel
	Speed       float64 // simulation speed multiplier
	DaysPerTick float64
	Logger      kitlog.Logger
	Metrics     *Metrics // optional
}

func (c MissionConfig) withDefaults() MissionConfig {
	if c.Departure == "" {
		c.Departure = Earth.Name
	}
	if c.Longitudes == nil {
		c.Longitudes = MeanLongitudes{}
	}
	if c.Model == (ResourceModel{}) {
		c.Model = DefaultResourceModel
	}
	if c.Speed <= 0 {
		c.Speed = 1
	}
	if c.DaysPerTick <= 0 {
		c.DaysPerTick = 1
	}
	if c.Logger == nil {
		c.Logger = kitlog.NewNopLogger()
	}
	return c
}

// LaunchWindowFor returns the acceptable range of phase angles at launch, in degrees.
// The range may wrap around 360, i.e. min > max.
func LaunchWindowFor(plan TransferPlan, rules MissionRules) (min, max float64) {
	return normalizeDegrees(plan.PhaseAngle - rules.PhaseTolerance), normalizeDegrees(plan.PhaseAngle + rules.PhaseTolerance)
}

// PlanMission validates the request and returns an active mission. The target must be registered and
// have mission rules, at least one known instrument must be selected, the actual phase angle on the
// launch date must be within the window of the transfer and the fuel on board must cover the
// requirement of the target.
func PlanMission(req PlanRequest, conf MissionConfig) (*Mission, error) {
	conf = conf.withDefaults()
	m, err := planMission(req, conf)
	if err != nil {
		if conf.Metrics != nil {
			conf.Metrics.planningRejected(err)
		}
		level.Warn(conf.Logger).Log("subsys", "planner", "target", req.Target, "status", "rejected", "err", err)
		return nil, err
	}
	level.Info(conf.Logger).Log("subsys", "planner", "target", m.state.Target, "status", "active", "tof(d)", m.state.Plan.Duration, "Δv(km/s)", m.state.Plan.TotalDeltaV)
	return m, nil
}

func planMission(req PlanRequest, conf MissionConfig) (*Mission, error) {
	target, err := Body(req.Target)
	if err != nil {
		return nil, err
	}
	rules, err := RulesFor(target.Name)
	if err != nil {
		return nil, err
	}
	instruments, err := ParseInstruments(req.Instruments)
	if err != nil {
		return nil, err
	}
	plan, err := HohmannTransfer(conf.Departure, target.Name)
	if err != nil {
		return nil, err
	}
	actual, err := PhaseAngleWith(conf.Longitudes, conf.Departure, target.Name, req.LaunchDate)
	if err != nil {
		return nil, err
	}
	if math.Abs(angleBetween(actual, plan.PhaseAngle)) > rules.PhaseTolerance {
		min, max := LaunchWindowFor(plan, rules)
		return nil, &InvalidLaunchWindowError{Target: target.Name, Angle: actual, Min: min, Max: max}
	}
	if conf.Resources.Fuel < rules.FuelRequirement {
		return nil, &InsufficientFuelError{Target: target.Name, Available: conf.Resources.Fuel, Required: rules.FuelRequirement}
	}
	state := MissionState{
		Departure:   plan.From,
		Target:      target.Name,
		Instruments: instruments,
		LaunchDate:  req.LaunchDate.UTC(),
		Plan:        plan,
		Resources:   conf.Resources,
		Phase:       Planned,
	}
	state.Resources.Data = 0
	m := newMission(state, rules, conf)
	m.state.Phase = Active
	return m, nil
}

// newMission sets up a mission from its state without any validation, e.g. when restoring a session.
func newMission(state MissionState, rules MissionRules, conf MissionConfig) *Mission {
	conf = conf.withDefaults()
	m := &Mission{state: state, rules: rules, conf: conf, logger: kitlog.With(conf.Logger, "subsys", "mission", "target", state.Target)}
	m.arrival = m.arrivalPoint()
	m.refreshPosition()
	return m
}

// Mission propagates the state of a mission tick by tick.
// It implements integrator.Integrable: the resources and elapsed time are integrated from constant
// rates over a tick, and each step is followed by the position refresh and the evaluation.
type Mission struct {
	state   MissionState
	rules   MissionRules
	conf    MissionConfig
	logger  kitlog.Logger
	arrival []float64 // arrival point on the transfer ellipse, km
	budget  uint64    // ticks allowed for the current propagation
	onTick  func(MissionState)
}

// State returns a copy of the current state. The instrument slice is shared.
func (m *Mission) State() MissionState {
	return m.state
}

// Rules returns the rules of this mission.
func (m *Mission) Rules() MissionRules {
	return m.rules
}

// Done returns whether the mission reached a terminal phase.
func (m *Mission) Done() bool {
	return m.state.Phase.Terminal()
}

// OnTick registers a function called with the state after every tick.
func (m *Mission) OnTick(f func(MissionState)) {
	m.onTick = f
}

// Tick advances the mission by one tick and returns the outcome if this tick ended the mission.
// A terminal mission is not modified.
func (m *Mission) Tick() *Outcome {
	return m.Propagate(1)
}

// Propagate runs ticks until the mission ends or maxTicks have been run. It returns the outcome only
// from the call which ended the mission; a terminal mission is left as is and nil is returned.
// Use State().Outcome for the current outcome.
func (m *Mission) Propagate(maxTicks uint64) *Outcome {
	if m.state.Phase != Active || maxTicks == 0 {
		return nil
	}
	m.budget = maxTicks
	if _, _, err := integrator.NewRK4(float64(m.state.Ticks), 1, m).Solve(); err != nil {
		// Only possible if the state vector and derivative diverge in size, which is a bug.
		panic(fmt.Errorf("mission propagation: %w", err))
	}
	return m.state.Outcome
}

// GetState returns the integrated vector [fuel, power, data, elapsed days].
func (m *Mission) GetState() []float64 {
	r := m.state.Resources
	return []float64{r.Fuel, r.Power, r.Data, m.state.ElapsedDays}
}

// Func returns the rates per tick, which are constant within a tick.
func (m *Mission) Func(t float64, s []float64) []float64 {
	fuel, power, data := m.conf.Model.Rates(m.conf.Speed, len(m.state.Instruments), m.state.TargetReached)
	return []float64{fuel, power, data, m.conf.Speed * m.conf.DaysPerTick}
}

// Stop implements the stop call of the integrator.
func (m *Mission) Stop(i uint64) bool {
	return i >= m.budget || m.state.Phase != Active
}

// SetState applies the integrated vector then refreshes the position, the arrival and the outcome.
func (m *Mission) SetState(i uint64, s []float64) {
	m.state.Resources.set(s[0], s[1], s[2])
	m.state.ElapsedDays = s[3]
	m.state.Ticks++
	m.refreshPosition()
	m.refreshArrival()
	m.evaluate()
	if m.conf.Metrics != nil {
		m.conf.Metrics.tick(m.state)
	}
	if m.onTick != nil {
		m.onTick(m.state)
	}
}

// meanAnomaly returns the mean anomaly of the spacecraft on the transfer ellipse. Outward transfers
// depart at perihelion (M=0) and inward ones at aphelion (M=π).
func (m *Mission) meanAnomaly(elapsedDays float64) float64 {
	progress := 1.0
	if m.state.Plan.Duration > 0 {
		progress = math.Min(math.Max(elapsedDays/m.state.Plan.Duration, 0), 1)
	}
	M := math.Pi * progress
	if m.state.Plan.Inward() {
		M += math.Pi
	}
	return M
}

func (m *Mission) arrivalPoint() []float64 {
	x, y, _, err := KeplerPosition(m.state.Plan.SemiMajorAxis, m.state.Plan.Eccentricity, m.meanAnomaly(m.state.Plan.Duration))
	if err != nil {
		return nil
	}
	return []float64{x, y, 0}
}

func (m *Mission) refreshPosition() {
	plan := m.state.Plan
	pos, err := OrbitalPosition(plan.SemiMajorAxis, plan.Eccentricity, m.meanAnomaly(m.state.ElapsedDays), m.state.ElapsedDays*Day)
	if err != nil {
		var convErr *ConvergenceError
		if errors.As(err, &convErr) && m.conf.Metrics != nil {
			m.conf.Metrics.ConvergenceFailures.Inc()
		}
		m.state.PositionStale = true
		level.Warn(m.logger).Log("status", "stale position", "tick", m.state.Ticks, "err", err)
		return
	}
	m.state.Position = pos
	m.state.PositionStale = false
}

// DistanceToArrival returns the distance in km between the spacecraft and the arrival point.
// Returns +Inf when unknown.
func (m *Mission) DistanceToArrival() float64 {
	if m.arrival == nil || m.state.PositionStale {
		return math.Inf(1)
	}
	pos := m.state.Position
	return norm([]float64{pos.X - m.arrival[0], pos.Y - m.arrival[1], pos.Z - m.arrival[2]})
}

// refreshArrival latches the target reached flag once the transfer time has elapsed or the
// spacecraft is within the distance threshold of the arrival point.
func (m *Mission) refreshArrival() {
	if m.state.TargetReached {
		return
	}
	if m.state.ElapsedDays >= m.state.Plan.Duration || m.DistanceToArrival() <= m.rules.DistanceThreshold*AU {
		m.state.TargetReached = true
		level.Info(m.logger).Log("status", "target reached", "day", m.state.ElapsedDays)
	}
}

func (m *Mission) evaluate() {
	outcome := Evaluate(m.state, m.rules)
	if outcome == nil {
		return
	}
	m.state.Outcome = outcome
	m.state.Phase = outcome.Status
	logger := level.Info(m.logger)
	if outcome.Status == Failed {
		logger = level.Error(m.logger)
	}
	logger.Log("status", outcome.Status, "reason", outcome.Reason, "day", m.state.ElapsedDays, "resources", m.state.Resources)
	if m.conf.Metrics != nil {
		m.conf.Metrics.outcome(m.state.Target, *outcome)
	}
}
