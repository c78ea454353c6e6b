package server

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// KioskParams is the resolved static settings for one kiosk deployment.
type KioskParams struct {
	Title string
	// AllowReplay lets a completed vignette be started again from the hub.
	AllowReplay bool
	// Authoring watches the content directory and hot-reloads dialogue
	// scripts. Only meaningful together with a content dir on disk.
	Authoring bool
}

func DefaultKioskParams() KioskParams {
	return KioskParams{
		Title:       "Pier to the Past",
		AllowReplay: true,
		Authoring:   false,
	}
}

// kioskConfig is the YAML file form. Pointer fields so an absent key keeps
// the default instead of zeroing it.
type kioskConfig struct {
	Title       *string `yaml:"title"`
	AllowReplay *bool   `yaml:"allowReplay"`
	Authoring   *bool   `yaml:"authoring"`
}

type kioskConfigFile struct {
	Kiosk *kioskConfig `yaml:"kiosk"`
}

// KioskParamOverrides represents optional command-line overrides.
type KioskParamOverrides struct {
	Title       *string
	AllowReplay *bool
	Authoring   *bool
}

func (o KioskParamOverrides) apply(base KioskParams) KioskParams {
	if o.Title != nil {
		base.Title = *o.Title
	}
	if o.AllowReplay != nil {
		base.AllowReplay = *o.AllowReplay
	}
	if o.Authoring != nil {
		base.Authoring = *o.Authoring
	}
	return base
}

func mergeKioskConfig(base KioskParams, cfg *kioskConfig) KioskParams {
	if cfg == nil {
		return base
	}
	if cfg.Title != nil {
		base.Title = *cfg.Title
	}
	if cfg.AllowReplay != nil {
		base.AllowReplay = *cfg.AllowReplay
	}
	if cfg.Authoring != nil {
		base.Authoring = *cfg.Authoring
	}
	return base
}

// loadKioskParamsFromFile merges the YAML file at path over base. A missing
// file is not an error; the defaults stand.
func loadKioskParamsFromFile(path string, base KioskParams) (KioskParams, error) {
	if path == "" {
		return base, nil
	}
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("read kiosk config %q: %w", cleanPath, err)
	}
	var cfg kioskConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse kiosk config %q: %w", cleanPath, err)
	}
	return mergeKioskConfig(base, cfg.Kiosk), nil
}
