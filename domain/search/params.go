package search

import (
	"fmt"

	"nucoinc/internal/errors"
)

// Population names accepted by ForPopulation.
const (
	PopulationBNS  = "bns"
	PopulationBBH  = "bbh"
	PopulationNSBH = "nsbh"
)

// Parameters holds the population-specific physical constants every density
// function receives. Constructed once per population and never mutated.
type Parameters struct {
	Population string `yaml:"population"`

	// Component-mass bounds for the log-uniform mass prior, solar masses.
	MassMinMsun float64 `yaml:"mass_min_msun"`
	MassMaxMsun float64 `yaml:"mass_max_msun"`

	// Isotropic-equivalent neutrino emission-energy bounds, erg.
	EnergyMinErg float64 `yaml:"energy_min_erg"`
	EnergyMaxErg float64 `yaml:"energy_max_erg"`

	// Time-coincidence window around the GW time, seconds.
	TMinusSec float64 `yaml:"t_minus_sec"`
	TPlusSec  float64 `yaml:"t_plus_sec"`

	// Background rates and the observation period they were measured over.
	NeutrinoBackgroundRateHz float64 `yaml:"neutrino_background_rate_hz"`
	GWBackgroundRateHz       float64 `yaml:"gw_background_rate_hz"`
	ObservationPeriodSec     float64 `yaml:"observation_period_sec"`

	// FAR below which a pipeline would have flagged a detection.
	FARThresholdHz float64 `yaml:"far_threshold_hz"`

	// Jet beaming factor of the neutrino emission.
	BeamingFactor float64 `yaml:"beaming_factor"`

	// Expected detected-neutrino count for a source at 100 Mpc emitting
	// EnergyMaxErg.
	NAt100Mpc float64 `yaml:"n_at_100_mpc"`

	// Largest source distance in the reference catalog; normalizes the
	// volumetric distance prior.
	MaxDistanceMpc float64 `yaml:"max_distance_mpc"`
}

// farThresholdHz is two alerts per day expressed in Hz.
const farThresholdHz = 2.0 / 86400.0

// ForPopulation returns the validated constants for one of the three source
// populations.
func ForPopulation(name string) (Parameters, error) {
	p := Parameters{
		Population:               name,
		EnergyMinErg:             1e46,
		EnergyMaxErg:             1e51,
		TMinusSec:                -250,
		TPlusSec:                 250,
		NeutrinoBackgroundRateHz: 6.4e-3,
		ObservationPeriodSec:     3.156e7,
		FARThresholdHz:           farThresholdHz,
		BeamingFactor:            10,
		NAt100Mpc:                1.0,
	}
	switch name {
	case PopulationBNS:
		p.MassMinMsun = 1.0
		p.MassMaxMsun = 2.5
		p.GWBackgroundRateHz = 1.0e-7
		p.MaxDistanceMpc = 400
	case PopulationNSBH:
		p.MassMinMsun = 1.0
		p.MassMaxMsun = 50
		p.GWBackgroundRateHz = 5.0e-8
		p.MaxDistanceMpc = 800
	case PopulationBBH:
		p.MassMinMsun = 2.5
		p.MassMaxMsun = 100
		p.GWBackgroundRateHz = 3.0e-7
		p.MaxDistanceMpc = 2000
	default:
		return Parameters{}, errors.New(errors.CodeConfig,
			fmt.Sprintf("unknown population %q (want bns, bbh or nsbh)", name))
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate checks that every constant is present and numerically sane.
func (p Parameters) Validate() error {
	checks := []struct {
		ok  bool
		msg string
	}{
		{p.Population != "", "population is required"},
		{p.MassMinMsun > 0 && p.MassMaxMsun > p.MassMinMsun, "mass bounds must satisfy 0 < min < max"},
		{p.EnergyMinErg > 0 && p.EnergyMaxErg > p.EnergyMinErg, "energy bounds must satisfy 0 < min < max"},
		{p.TPlusSec > p.TMinusSec, "coincidence window must be non-empty"},
		{p.NeutrinoBackgroundRateHz > 0, "neutrino background rate must be positive"},
		{p.GWBackgroundRateHz > 0, "gw background rate must be positive"},
		{p.ObservationPeriodSec > 0, "observation period must be positive"},
		{p.FARThresholdHz > 0, "far threshold must be positive"},
		{p.BeamingFactor > 0, "beaming factor must be positive"},
		{p.NAt100Mpc > 0, "expected-count normalization must be positive"},
		{p.MaxDistanceMpc > 0, "max catalog distance must be positive"},
	}
	for _, c := range checks {
		if !c.ok {
			return errors.New(errors.CodeConfig, "search parameters: "+c.msg)
		}
	}
	return nil
}
