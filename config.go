package orbitronica

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable holding the directory of the configuration file.
const ConfigEnv = "ORBITRONICA_CONFIG"

// Config is the configuration of a simulation session.
type Config struct {
	Sim struct {
		Speed       float64
		Tick        time.Duration
		DaysPerTick float64
	}
	Spacecraft struct {
		Mass      float64 // kg
		Fuel      float64 // percent
		Power     float64 // percent
		Departure string
	}
	Session struct {
		Dir string
	}
	VSOP87 struct {
		Dir string // VSOP87B files, mean longitudes if empty
	}
	Ephemeris struct {
		URL       string
		Rate      float64 // requests per second
		CacheSize int
	}
	Log struct {
		Level string
		File  string
	}
	Metrics struct {
		Addr string
	}
	Telemetry struct {
		Addr string
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sim.speed", 1.0)
	v.SetDefault("sim.tick", "16ms") // one rendering frame
	v.SetDefault("sim.days_per_tick", 1.0)
	v.SetDefault("spacecraft.mass", DefaultSpacecraftMass)
	v.SetDefault("spacecraft.fuel", maxLevel)
	v.SetDefault("spacecraft.power", maxLevel)
	v.SetDefault("spacecraft.departure", Earth.Name)
	v.SetDefault("session.dir", "")
	v.SetDefault("vsop87.dir", "")
	v.SetDefault("ephemeris.url", "https://ssd-api.jpl.nasa.gov/horizons.api")
	v.SetDefault("ephemeris.rate", 1.0)
	v.SetDefault("ephemeris.cache_size", 64)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("telemetry.addr", "")
}

// DefaultConfig returns the configuration with only the defaults applied.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	conf, err := decodeConfig(v)
	if err != nil {
		panic(err) // defaults are always valid
	}
	return conf
}

// LoadConfig reads the configuration file named conf (TOML, YAML or JSON) from the provided
// directory, or from the directory set in ORBITRONICA_CONFIG if empty. A missing file is not an error.
// Any key can be overridden in the environment, e.g. ORBITRONICA_SIM_SPEED for sim.speed.
func LoadConfig(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("orbitronica")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	if dir != "" {
		v.SetConfigName("conf")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("could not read %s/conf: %w", dir, err)
			}
		}
	}
	return decodeConfig(v)
}

func decodeConfig(v *viper.Viper) (Config, error) {
	var c Config
	c.Sim.Speed = v.GetFloat64("sim.speed")
	c.Sim.Tick = v.GetDuration("sim.tick")
	c.Sim.DaysPerTick = v.GetFloat64("sim.days_per_tick")
	c.Spacecraft.Mass = v.GetFloat64("spacecraft.mass")
	c.Spacecraft.Fuel = v.GetFloat64("spacecraft.fuel")
	c.Spacecraft.Power = v.GetFloat64("spacecraft.power")
	c.Spacecraft.Departure = v.GetString("spacecraft.departure")
	c.Session.Dir = v.GetString("session.dir")
	c.VSOP87.Dir = v.GetString("vsop87.dir")
	c.Ephemeris.URL = v.GetString("ephemeris.url")
	c.Ephemeris.Rate = v.GetFloat64("ephemeris.rate")
	c.Ephemeris.CacheSize = v.GetInt("ephemeris.cache_size")
	c.Log.Level = v.GetString("log.level")
	c.Log.File = v.GetString("log.file")
	c.Metrics.Addr = v.GetString("metrics.addr")
	c.Telemetry.Addr = v.GetString("telemetry.addr")
	return c, c.Validate()
}

// Validate returns an error if the configuration cannot drive a simulation.
func (c Config) Validate() error {
	switch {
	case c.Sim.Speed <= 0:
		return fmt.Errorf("sim.speed must be positive, got %f", c.Sim.Speed)
	case c.Sim.Tick <= 0:
		return fmt.Errorf("sim.tick must be positive, got %s", c.Sim.Tick)
	case c.Sim.DaysPerTick <= 0:
		return fmt.Errorf("sim.days_per_tick must be positive, got %f", c.Sim.DaysPerTick)
	case c.Spacecraft.Mass <= 0:
		return fmt.Errorf("spacecraft.mass must be positive, got %f", c.Spacecraft.Mass)
	case c.Spacecraft.Fuel < minLevel || c.Spacecraft.Fuel > maxLevel:
		return fmt.Errorf("spacecraft.fuel must be within [0, 100], got %f", c.Spacecraft.Fuel)
	case c.Spacecraft.Power < minLevel || c.Spacecraft.Power > maxLevel:
		return fmt.Errorf("spacecraft.power must be within [0, 100], got %f", c.Spacecraft.Power)
	case c.Ephemeris.Rate <= 0:
		return fmt.Errorf("ephemeris.rate must be positive, got %f", c.Ephemeris.Rate)
	}
	if _, err := Body(c.Spacecraft.Departure); err != nil {
		return fmt.Errorf("spacecraft.departure: %w", err)
	}
	return nil
}

// Longitudes returns the VSOP87 longitudes when vsop87.dir is set, and the mean longitudes otherwise.
func (c Config) Longitudes(logger kitlog.Logger) (Longitudes, error) {
	if c.VSOP87.Dir == "" {
		return MeanLongitudes{}, nil
	}
	v, err := NewVSOP87(c.VSOP87.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("vsop87.dir: %w", err)
	}
	return v, nil
}

// InitialResources returns the resources of the spacecraft before any mission.
func (c Config) InitialResources() Resources {
	return Resources{Fuel: c.Spacecraft.Fuel, Power: c.Spacecraft.Power}
}

// MissionConfig returns the mission setup from this configuration with the provided resources.
func (c Config) MissionConfig(res Resources) MissionConfig {
	return MissionConfig{
		Departure:   c.Spacecraft.Departure,
		Resources:   res,
		Model:       DefaultResourceModel,
		Speed:       c.Sim.Speed,
		DaysPerTick: c.Sim.DaysPerTick,
	}
}
