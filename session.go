package orbitronica

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mohae/deepcopy"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/orbitronica/orbitronica/kvstore"
)

// SnapshotKey is the key of the session snapshot in the store.
const SnapshotKey = "missionProgress"

const snapshotVersion = 1

// Snapshot is the persisted progress of a session.
type Snapshot struct {
	Version       int       `msgpack:"version"`
	Departure     string    `msgpack:"departure,omitempty"`
	Target        string    `msgpack:"target,omitempty"`
	Instruments   []string  `msgpack:"instruments,omitempty"`
	LaunchDate    time.Time `msgpack:"launchDate"`
	Resources     Resources `msgpack:"resources"`
	ElapsedDays   float64   `msgpack:"elapsedDays"`
	TargetReached bool      `msgpack:"targetReached"`
	Phase         Phase     `msgpack:"phase"`
	Outcome       *Outcome  `msgpack:"outcome,omitempty"`
	Ticks         uint64    `msgpack:"ticks"`
}

// Frame is the per tick telemetry of the mission, as sent to the visualization.
type Frame struct {
	Tick          uint64     `json:"tick"`
	Target        string     `json:"target"`
	ElapsedDays   float64    `json:"elapsedDays"`
	Position      [3]float64 `json:"position"` // km
	Speed         float64    `json:"speed"`    // km/s
	Fuel          float64    `json:"fuel"`
	Power         float64    `json:"power"`
	Data          float64    `json:"data"`
	TargetReached bool       `json:"targetReached"`
	Phase         string     `json:"phase"`
	Outcome       string     `json:"outcome,omitempty"`
}

// FrameOf returns the telemetry frame of a mission state.
func FrameOf(s MissionState) Frame {
	f := Frame{
		Tick:          s.Ticks,
		Target:        s.Target,
		ElapsedDays:   s.ElapsedDays,
		Position:      [3]float64{s.Position.X, s.Position.Y, s.Position.Z},
		Speed:         s.Position.Speed,
		Fuel:          s.Resources.Fuel,
		Power:         s.Resources.Power,
		Data:          s.Resources.Data,
		TargetReached: s.TargetReached,
		Phase:         s.Phase.String(),
	}
	if s.Outcome != nil {
		f.Outcome = s.Outcome.Notification()
	}
	return f
}

// Session owns at most one mission and drives its ticks.
// Sinks are called with the session lock held and must not call back into the session.
type Session struct {
	mu        sync.Mutex
	conf      Config
	store     kvstore.Store
	logger    kitlog.Logger
	metrics   *Metrics
	lon       Longitudes
	resources Resources // spacecraft resources when no mission is loaded
	mission   *Mission
	paused    bool
	notify    func(string)
	frames    func(Frame)
}

// NewSession returns a session in its default state. The store and metrics may be nil.
func NewSession(conf Config, store kvstore.Store, logger kitlog.Logger, metrics *Metrics) *Session {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &Session{
		conf:      conf,
		store:     store,
		logger:    kitlog.With(logger, "subsys", "session"),
		metrics:   metrics,
		resources: conf.InitialResources(),
	}
}

// UseLongitudes sets the longitudes used to check launch windows. Mean longitudes are used if unset.
func (s *Session) UseLongitudes(lon Longitudes) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lon = lon
}

// OnNotify sets the sink of operator notifications.
func (s *Session) OnNotify(f func(string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = f
}

// OnFrame sets the sink of per tick telemetry frames.
func (s *Session) OnFrame(f func(Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = f
}

func (s *Session) currentResources() Resources {
	if s.mission != nil {
		return s.mission.state.Resources
	}
	return s.resources
}

func (s *Session) missionConfig() MissionConfig {
	mc := s.conf.MissionConfig(s.currentResources())
	mc.Logger = s.logger
	mc.Metrics = s.metrics
	mc.Longitudes = s.lon
	return mc
}

// Plan validates the request against the current spacecraft resources and, on success, replaces any
// previous mission by the new active one. On failure the session is unchanged.
func (s *Session) Plan(req PlanRequest) (MissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := PlanMission(req, s.missionConfig())
	if err != nil {
		return MissionState{}, err
	}
	s.attach(m)
	s.paused = false
	return s.stateLocked(), nil
}

func (s *Session) attach(m *Mission) {
	if s.mission != nil {
		s.resources = s.mission.state.Resources
	}
	s.mission = m
	m.OnTick(s.handleTick)
}

func (s *Session) handleTick(state MissionState) {
	if s.frames != nil {
		s.frames(FrameOf(state))
	}
	if state.Outcome != nil && s.notify != nil {
		// A mission stops ticking once it has an outcome, so this happens once.
		s.notify(state.Outcome.Notification())
	}
}

// Tick advances the mission by one tick, even when paused, and returns the outcome if this tick ended
// the mission.
func (s *Session) Tick() (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mission == nil {
		return nil, ErrNoActiveMission
	}
	return s.mission.Tick(), nil
}

// Propagate runs up to maxTicks ticks at once, see Mission.Propagate.
func (s *Session) Propagate(maxTicks uint64) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mission == nil {
		return nil, ErrNoActiveMission
	}
	return s.mission.Propagate(maxTicks), nil
}

// Run ticks the mission at the configured interval until it ends or the context is done. Paused
// sessions keep waiting without ticking. Returns the context error if cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.mission == nil {
		s.mu.Unlock()
		return ErrNoActiveMission
	}
	s.mu.Unlock()

	ticker := time.NewTicker(s.conf.Sim.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			level.Info(s.logger).Log("status", "stopped", "err", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			s.mu.Lock()
			if s.mission == nil {
				s.mu.Unlock()
				return ErrNoActiveMission
			}
			if !s.paused {
				s.mission.Tick()
			}
			done := s.mission.Done()
			s.mu.Unlock()
			if done {
				return nil
			}
		}
	}
}

// Pause stops Run from ticking.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume lets Run tick again.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// Paused returns whether the session is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// State returns a deep copy of the mission state, or ErrNoActiveMission.
func (s *Session) State() (MissionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mission == nil {
		return MissionState{}, ErrNoActiveMission
	}
	return s.stateLocked(), nil
}

func (s *Session) stateLocked() MissionState {
	return deepcopy.Copy(s.mission.state).(MissionState)
}

// Resources returns the current resources of the spacecraft.
func (s *Session) Resources() Resources {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentResources()
}

// Snapshot returns the serializable progress of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{Version: snapshotVersion, Resources: s.currentResources()}
	if s.mission == nil {
		return snap
	}
	st := s.mission.state
	snap.Departure = st.Departure
	snap.Target = st.Target
	for _, inst := range st.Instruments {
		snap.Instruments = append(snap.Instruments, inst.String())
	}
	snap.LaunchDate = st.LaunchDate
	snap.ElapsedDays = st.ElapsedDays
	snap.TargetReached = st.TargetReached
	snap.Phase = st.Phase
	if st.Outcome != nil {
		o := *st.Outcome
		snap.Outcome = &o
	}
	snap.Ticks = st.Ticks
	return snap
}

// Save writes the snapshot to the store.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return errors.New("session has no store")
	}
	b, err := msgpack.Marshal(s.snapshotLocked())
	if err != nil {
		return fmt.Errorf("could not encode snapshot: %w", err)
	}
	if err := s.store.Put(SnapshotKey, b); err != nil {
		return fmt.Errorf("could not save snapshot: %w", err)
	}
	level.Debug(s.logger).Log("status", "saved", "bytes", len(b))
	return nil
}

// Load restores the session from the store. Any failure is logged and returned, and leaves the
// session in its default state: no mission and the configured initial resources.
func (s *Session) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.loadLocked()
	if err != nil {
		s.mission = nil
		s.paused = false
		s.resources = s.conf.InitialResources()
		level.Warn(s.logger).Log("status", "load failed", "err", err)
	}
	return err
}

func (s *Session) loadLocked() error {
	if s.store == nil {
		return errors.New("session has no store")
	}
	b, err := s.store.Get(SnapshotKey)
	if err != nil {
		return err
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("malformed snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	res := snap.Resources
	res.set(res.Fuel, res.Power, res.Data)
	if snap.Target == "" {
		s.mission = nil
		s.resources = res
		return nil
	}
	m, err := s.restore(snap, res)
	if err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	s.mission = nil
	s.attach(m)
	s.resources = res
	return nil
}

func (s *Session) restore(snap Snapshot, res Resources) (*Mission, error) {
	instruments, err := ParseInstruments(snap.Instruments)
	if err != nil {
		return nil, err
	}
	departure := snap.Departure
	if departure == "" {
		departure = s.conf.Spacecraft.Departure
	}
	plan, err := HohmannTransfer(departure, snap.Target)
	if err != nil {
		return nil, err
	}
	rules, err := RulesFor(plan.To)
	if err != nil {
		return nil, err
	}
	if snap.Phase == Planned || snap.Phase > Failed || snap.ElapsedDays < 0 {
		return nil, fmt.Errorf("inconsistent mission progress (phase=%s elapsed=%f)", snap.Phase, snap.ElapsedDays)
	}
	if snap.Phase.Terminal() != (snap.Outcome != nil) {
		return nil, errors.New("outcome does not match phase")
	}
	state := MissionState{
		Departure:     plan.From,
		Target:        plan.To,
		Instruments:   instruments,
		LaunchDate:    snap.LaunchDate.UTC(),
		Plan:          plan,
		ElapsedDays:   snap.ElapsedDays,
		Resources:     res,
		TargetReached: snap.TargetReached,
		Phase:         snap.Phase,
		Outcome:       snap.Outcome,
		Ticks:         snap.Ticks,
	}
	mc := s.missionConfig()
	mc.Resources = res
	return newMission(state, rules, mc), nil
}
