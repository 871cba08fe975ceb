// Package policy resolves the reservation policy of a restaurant: the service-wide
// defaults from config, overlaid with per-restaurant overrides from a TOML file.
package policy

import (
	"fmt"
	"io"
	"rms/config"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

type Waitlist struct {
	TimeWeight          float64
	SmallPartyWeight    float64
	LargePartyWeight    float64
	LargePartyThreshold int
	PreferenceBonus     float64
	PreferenceTolerance int
	SuggestionCount     int
}

type Policy struct {
	SlotGranularity     int
	DefaultDuration     int
	PastGrace           int
	AllowMergedTables   bool
	RecommendationCount int
	AlternativeWindow   int
	AlternativeResults  int
	AlternativeMaxDays  int
	PeakQuantile        float64
	HighOccupancy       float64
	LowOccupancy        float64
	MinConsecutiveSlots int
	Waitlist            Waitlist
}

// Override carries the keys a restaurant may set. Absent keys keep the default.
type Override struct {
	SlotGranularity     *int     `toml:"slot_granularity_min"`
	DefaultDuration     *int     `toml:"default_duration_min"`
	PastGrace           *int     `toml:"past_grace_min"`
	AllowMergedTables   *bool    `toml:"allow_merged_tables"`
	RecommendationCount *int     `toml:"recommendation_count"`
	AlternativeWindow   *int     `toml:"alternative_window_min"`
	AlternativeResults  *int     `toml:"alternative_results"`
	AlternativeMaxDays  *int     `toml:"alternative_max_days"`
	PeakQuantile        *float64 `toml:"peak_quantile"`
	HighOccupancy       *float64 `toml:"high_occupancy"`
	LowOccupancy        *float64 `toml:"low_occupancy"`
	MinConsecutiveSlots *int     `toml:"min_consecutive_slots"`
	Waitlist            struct {
		TimeWeight          *float64 `toml:"time_weight"`
		SmallPartyWeight    *float64 `toml:"small_party_weight"`
		LargePartyWeight    *float64 `toml:"large_party_weight"`
		LargePartyThreshold *int     `toml:"large_party_threshold"`
		PreferenceBonus     *float64 `toml:"preference_bonus"`
		PreferenceTolerance *int     `toml:"preference_tolerance_min"`
		SuggestionCount     *int     `toml:"suggestion_count"`
	} `toml:"waitlist"`
}

type file struct {
	Restaurants map[string]Override `toml:"restaurants"`
}

type Provider interface {
	For(restaurantID string) Policy
	Reload() error
}

type providerImpl struct {
	mu        sync.RWMutex
	path      string
	defaults  Policy
	overrides map[string]Override
}

// New builds a provider from cfg. Without a policy file every restaurant gets the defaults.
func New(cfg *config.Config) (Provider, error) {
	p := &providerImpl{
		path:      cfg.App.PolicyFile,
		defaults:  Defaults(cfg),
		overrides: map[string]Override{},
	}

	if err := p.defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default policy: %w", err)
	}

	if err := p.Reload(); err != nil {
		return nil, err
	}

	return p, nil
}

// NewStatic builds a provider from already decoded overrides.
func NewStatic(defaults Policy, overrides map[string]Override) Provider {
	if overrides == nil {
		overrides = map[string]Override{}
	}

	return &providerImpl{defaults: defaults, overrides: overrides}
}

func (p *providerImpl) For(restaurantID string) Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()

	override, ok := p.overrides[restaurantID]
	if !ok {
		return p.defaults
	}

	return apply(p.defaults, override)
}

// Reload re-reads the policy file. A provider without a file is a no-op. A file with an
// invalid override is rejected as a whole and the previous overrides stay in place.
func (p *providerImpl) Reload() error {
	if p.path == "" {
		return nil
	}

	var f file

	meta, err := toml.DecodeFile(p.path, &f)
	if err != nil {
		log.Error().Err(err).Str("path", p.path).Msg("failed to decode policy file")

		return fmt.Errorf("failed to decode policy file: %w", err)
	}

	for _, key := range meta.Undecoded() {
		log.Warn().Str("key", key.String()).Msg("unknown key in policy file")
	}

	if f.Restaurants == nil {
		f.Restaurants = map[string]Override{}
	}

	if err = validate(p.defaults, f.Restaurants); err != nil {
		log.Error().Err(err).Str("path", p.path).Msg("invalid policy file")

		return err
	}

	p.mu.Lock()
	p.overrides = f.Restaurants
	p.mu.Unlock()

	log.Info().Int("restaurants", len(f.Restaurants)).Msg("policy overrides loaded")

	return nil
}

// Parse decodes overrides from r in the policy file format and checks each of them
// against the built-in defaults.
func Parse(r io.Reader) (map[string]Override, error) {
	var f file

	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}

	if f.Restaurants == nil {
		f.Restaurants = map[string]Override{}
	}

	if err := validate(Defaults(&config.Config{}), f.Restaurants); err != nil {
		return nil, err
	}

	return f.Restaurants, nil
}

func validate(defaults Policy, overrides map[string]Override) error {
	for id, override := range overrides {
		if err := apply(defaults, override).Validate(); err != nil {
			return fmt.Errorf("invalid policy for restaurant %q: %w", id, err)
		}
	}

	return nil
}

// Validate reports the first value outside its allowed range.
func (p Policy) Validate() error {
	switch {
	case p.SlotGranularity <= 0:
		return fmt.Errorf("slot_granularity_min must be positive, got %d", p.SlotGranularity)
	case p.DefaultDuration <= 0:
		return fmt.Errorf("default_duration_min must be positive, got %d", p.DefaultDuration)
	case p.PastGrace < 0:
		return fmt.Errorf("past_grace_min must not be negative, got %d", p.PastGrace)
	case p.RecommendationCount < 0:
		return fmt.Errorf("recommendation_count must not be negative, got %d", p.RecommendationCount)
	case p.AlternativeWindow <= 0:
		return fmt.Errorf("alternative_window_min must be positive, got %d", p.AlternativeWindow)
	case p.AlternativeResults <= 0:
		return fmt.Errorf("alternative_results must be positive, got %d", p.AlternativeResults)
	case p.AlternativeMaxDays <= 0:
		return fmt.Errorf("alternative_max_days must be positive, got %d", p.AlternativeMaxDays)
	case !unit(p.PeakQuantile):
		return fmt.Errorf("peak_quantile must be within [0, 1], got %g", p.PeakQuantile)
	case !unit(p.HighOccupancy):
		return fmt.Errorf("high_occupancy must be within [0, 1], got %g", p.HighOccupancy)
	case !unit(p.LowOccupancy):
		return fmt.Errorf("low_occupancy must be within [0, 1], got %g", p.LowOccupancy)
	case p.LowOccupancy > p.HighOccupancy:
		return fmt.Errorf("low_occupancy %g exceeds high_occupancy %g", p.LowOccupancy, p.HighOccupancy)
	case p.MinConsecutiveSlots <= 0:
		return fmt.Errorf("min_consecutive_slots must be positive, got %d", p.MinConsecutiveSlots)
	}

	return p.Waitlist.Validate()
}

func (w Waitlist) Validate() error {
	switch {
	case w.TimeWeight < 0:
		return fmt.Errorf("waitlist time_weight must not be negative, got %g", w.TimeWeight)
	case w.SmallPartyWeight < 0:
		return fmt.Errorf("waitlist small_party_weight must not be negative, got %g", w.SmallPartyWeight)
	case w.LargePartyWeight < 0:
		return fmt.Errorf("waitlist large_party_weight must not be negative, got %g", w.LargePartyWeight)
	case w.LargePartyThreshold <= 0:
		return fmt.Errorf("waitlist large_party_threshold must be positive, got %d", w.LargePartyThreshold)
	case w.PreferenceBonus < 0:
		return fmt.Errorf("waitlist preference_bonus must not be negative, got %g", w.PreferenceBonus)
	case w.PreferenceTolerance < 0:
		return fmt.Errorf("waitlist preference_tolerance_min must not be negative, got %d", w.PreferenceTolerance)
	case w.SuggestionCount < 0:
		return fmt.Errorf("waitlist suggestion_count must not be negative, got %d", w.SuggestionCount)
	}

	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// Defaults reads the service-wide policy from cfg. Unset numeric values fall back to
// the built-in defaults so a zero config still yields a usable policy.
func Defaults(cfg *config.Config) Policy {
	r := cfg.Reservation

	return Policy{
		SlotGranularity:     positive(r.SlotGranularityMin, 15),
		DefaultDuration:     positive(r.DefaultDurationMin, 90),
		PastGrace:           max(0, r.PastGraceMin),
		AllowMergedTables:   r.AllowMergedTables,
		RecommendationCount: positive(r.RecommendationCount, 3),
		AlternativeWindow:   positive(r.AlternativeWindowMin, 180),
		AlternativeResults:  positive(r.AlternativeResults, 3),
		AlternativeMaxDays:  positive(r.AlternativeMaxDays, 7),
		PeakQuantile:        positive(r.PeakQuantile, 0.75),
		HighOccupancy:       positive(r.HighOccupancy, 0.85),
		LowOccupancy:        positive(r.LowOccupancy, 0.2),
		MinConsecutiveSlots: positive(r.MinConsecutiveSlots, 2),
		Waitlist: Waitlist{
			TimeWeight:          positive(r.Waitlist.TimeWeight, 1),
			SmallPartyWeight:    positive(r.Waitlist.SmallPartyWeight, 10),
			LargePartyWeight:    max(0, r.Waitlist.LargePartyWeight),
			LargePartyThreshold: positive(r.Waitlist.LargePartyThreshold, 5),
			PreferenceBonus:     positive(r.Waitlist.PreferenceBonus, 15),
			PreferenceTolerance: positive(r.Waitlist.PreferenceTolerance, 30),
			SuggestionCount:     positive(r.Waitlist.SuggestionCount, 3),
		},
	}
}

func apply(p Policy, o Override) Policy {
	set(&p.SlotGranularity, o.SlotGranularity)
	set(&p.DefaultDuration, o.DefaultDuration)
	set(&p.PastGrace, o.PastGrace)
	set(&p.AllowMergedTables, o.AllowMergedTables)
	set(&p.RecommendationCount, o.RecommendationCount)
	set(&p.AlternativeWindow, o.AlternativeWindow)
	set(&p.AlternativeResults, o.AlternativeResults)
	set(&p.AlternativeMaxDays, o.AlternativeMaxDays)
	set(&p.PeakQuantile, o.PeakQuantile)
	set(&p.HighOccupancy, o.HighOccupancy)
	set(&p.LowOccupancy, o.LowOccupancy)
	set(&p.MinConsecutiveSlots, o.MinConsecutiveSlots)
	set(&p.Waitlist.TimeWeight, o.Waitlist.TimeWeight)
	set(&p.Waitlist.SmallPartyWeight, o.Waitlist.SmallPartyWeight)
	set(&p.Waitlist.LargePartyWeight, o.Waitlist.LargePartyWeight)
	set(&p.Waitlist.LargePartyThreshold, o.Waitlist.LargePartyThreshold)
	set(&p.Waitlist.PreferenceBonus, o.Waitlist.PreferenceBonus)
	set(&p.Waitlist.PreferenceTolerance, o.Waitlist.PreferenceTolerance)
	set(&p.Waitlist.SuggestionCount, o.Waitlist.SuggestionCount)

	return p
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func positive[T int | float64](v, fallback T) T {
	if v > 0 {
		return v
	}

	return fallback
}
