package server

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"StarCharts/internal/nav"
)

type navConfig struct {
	GridCellSize       *float64 `json:"gridCellSize"`
	DiscoveryRadius    *float64 `json:"discoveryRadius"`
	RevealAll          *bool    `json:"revealAll"`
	SessionIdleSeconds *float64 `json:"sessionIdleSeconds"`
}

type worldConfig struct {
	Nav *navConfig `json:"nav"`
}

// NavParams is the resolved tuning for all navigation sessions.
type NavParams struct {
	GridCellSize       float64
	DiscoveryRadius    float64
	RevealAll          bool
	SessionIdleSeconds float64
}

func DefaultNavParams() NavParams {
	return NavParams{
		GridCellSize:       nav.DefaultCellSize,
		DiscoveryRadius:    nav.DefaultDiscoveryRadius,
		SessionIdleSeconds: nav.SessionIdleSeconds,
	}
}

// SanitizeNavParams clamps nonsensical values back to defaults.
func SanitizeNavParams(p NavParams) NavParams {
	if p.GridCellSize <= 0 {
		p.GridCellSize = nav.DefaultCellSize
	}
	if p.DiscoveryRadius <= 0 {
		p.DiscoveryRadius = nav.DefaultDiscoveryRadius
	}
	if p.SessionIdleSeconds <= 0 {
		p.SessionIdleSeconds = nav.SessionIdleSeconds
	}
	return p
}

// NavParamOverrides represents optional command-line overrides for the
// navigation tuning.
type NavParamOverrides struct {
	GridCellSize    *float64
	DiscoveryRadius *float64
	RevealAll       *bool
}

func (o NavParamOverrides) apply(base NavParams) NavParams {
	if o.GridCellSize != nil {
		base.GridCellSize = *o.GridCellSize
	}
	if o.DiscoveryRadius != nil {
		base.DiscoveryRadius = *o.DiscoveryRadius
	}
	if o.RevealAll != nil {
		base.RevealAll = *o.RevealAll
	}
	return SanitizeNavParams(base)
}

func mergeNavConfig(base NavParams, cfg *navConfig) NavParams {
	if cfg == nil {
		return base
	}
	if cfg.GridCellSize != nil {
		base.GridCellSize = *cfg.GridCellSize
	}
	if cfg.DiscoveryRadius != nil {
		base.DiscoveryRadius = *cfg.DiscoveryRadius
	}
	if cfg.RevealAll != nil {
		base.RevealAll = *cfg.RevealAll
	}
	if cfg.SessionIdleSeconds != nil {
		base.SessionIdleSeconds = *cfg.SessionIdleSeconds
	}
	return SanitizeNavParams(base)
}

func loadNavParamsFromFile(path string, base NavParams) (NavParams, error) {
	if path == "" {
		return SanitizeNavParams(base), nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return SanitizeNavParams(base), nil
		}
		return SanitizeNavParams(base), fmt.Errorf("read nav config %q: %w", cleanPath, err)
	}
	var cfg worldConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return SanitizeNavParams(base), fmt.Errorf("parse nav config %q: %w", cleanPath, err)
	}
	return mergeNavConfig(base, cfg.Nav), nil
}

// envNavOverrides reads tuning from the environment (populated by .env
// in development). Env values sit between the config file and the
// command-line flags.
func envNavOverrides() NavParamOverrides {
	var o NavParamOverrides
	if v, ok := envFloat("STARCHARTS_GRID_CELL_SIZE"); ok {
		o.GridCellSize = v
	}
	if v, ok := envFloat("STARCHARTS_DISCOVERY_RADIUS"); ok {
		o.DiscoveryRadius = v
	}
	if raw := os.Getenv("STARCHARTS_REVEAL_ALL"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			o.RevealAll = &b
		}
	}
	return o
}

func envFloat(key string) (*float64, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return nil, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &val, true
}
