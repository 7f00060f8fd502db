package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ale3590/fares/internal/screen"
)

// ScreenOverride is the YAML form of a screen profile. Unset fields keep the
// built-in value.
type ScreenOverride struct {
	Title        *string `yaml:"title"`
	PageSize     *int    `yaml:"page_size"`
	Currency     *string `yaml:"currency"`
	AllowRemoval *bool   `yaml:"allow_removal"`
	WalkInTaxID  *string `yaml:"walk_in_tax_id"`
	WalkInName   *string `yaml:"walk_in_name"`
}

type profilesFile struct {
	Screens map[string]ScreenOverride `yaml:"screens"`
}

// LoadProfiles returns the built-in screen profiles with the overrides of the
// YAML file at path applied. An empty path returns the defaults.
func LoadProfiles(path string) (map[screen.Kind]screen.Profile, error) {
	profiles := screen.DefaultProfiles()
	if path == "" {
		return profiles, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	return ApplyProfiles(profiles, data)
}

// ApplyProfiles applies YAML overrides to profiles.
func ApplyProfiles(profiles map[screen.Kind]screen.Profile, data []byte) (map[screen.Kind]screen.Profile, error) {
	var f profilesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for name, o := range f.Screens {
		kind, err := screen.ParseKind(name)
		if err != nil {
			return nil, err
		}
		p := profiles[kind]
		if o.Title != nil {
			p.Title = *o.Title
		}
		if o.PageSize != nil {
			if *o.PageSize <= 0 {
				return nil, fmt.Errorf("screen %s: page_size must be positive", name)
			}
			p.PageSize = *o.PageSize
		}
		if o.Currency != nil {
			p.Currency = *o.Currency
		}
		if o.AllowRemoval != nil {
			p.Composer.AllowRemoval = *o.AllowRemoval
		}
		if o.WalkInTaxID != nil {
			p.WalkInTaxID = *o.WalkInTaxID
		}
		if o.WalkInName != nil {
			p.WalkInName = *o.WalkInName
		}
		profiles[kind] = p
	}
	return profiles, nil
}
