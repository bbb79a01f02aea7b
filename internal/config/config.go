// Copyright 2025 cbuild Authors.
// All rights reserved

// Package config handles the cbuild configuration file and types.
package config

import (
	"os"
	"path/filepath"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/profile"
)

// Location of the cbuild config file.
const (
	ConfigDir  = ".cbuild"
	ConfigFile = "config.json"
)

const (
	errDefaultNotExist    = "profile specified as default does not exist"
	errNoDefaultSpecified = "no default profile specified"

	errProfileNotFoundFmt      = "profile not found with identifier: %s"
	errProfileAlreadyExistsFmt = "profile already exists with identifier: %s"
	errNoProfilesFound         = "no profiles found"
)

// Format represents allowed values for the global output format option.
type Format string

const (
	// FormatDefault is the default, human-friendly, output format.
	FormatDefault Format = "default"
	// FormatJSON is the JSON output format.
	FormatJSON Format = "json"
	// FormatYAML is the YAML output format.
	FormatYAML Format = "yaml"
)

// QuietFlag provides a named boolean type for the --quiet flag.
type QuietFlag bool

// Config is the format of the cbuild configuration file.
type Config struct {
	Build Build `json:"build"`
}

// Extract performs extraction of configuration from the provided source.
func Extract(src Source) (*Config, error) {
	conf, err := src.GetConfig()
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// GetDefaultPath returns the default config path or error.
func GetDefaultPath() (string, error) {
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ConfigDir, ConfigFile), nil
}

// Build contains the set of build profiles known to cbuild.
type Build struct {
	// Default indicates the default profile.
	Default string `json:"default"`

	// Profiles contain named build environments. Key is the profile name.
	Profiles map[string]profile.Profile `json:"profiles,omitempty"`
}

// AddOrUpdateProfile adds or updates a build profile in the Config.
func (c *Config) AddOrUpdateProfile(name string, p profile.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if c.Build.Profiles == nil {
		c.Build.Profiles = map[string]profile.Profile{}
	}
	c.Build.Profiles[name] = p
	return nil
}

// DeleteProfile deletes a build profile from the Config. If it is the
// current default, an arbitrary remaining profile becomes the new default.
func (c *Config) DeleteProfile(name string) error {
	if c.Build.Profiles == nil {
		return errors.Errorf(errProfileNotFoundFmt, name)
	}
	if _, ok := c.Build.Profiles[name]; !ok {
		return errors.Errorf(errProfileNotFoundFmt, name)
	}

	delete(c.Build.Profiles, name)
	if c.Build.Default == name {
		c.Build.Default = ""
		for k := range c.Build.Profiles {
			c.Build.Default = k
			break
		}
	}

	return nil
}

// RenameProfile renames a build profile in the Config. If it is the current
// default, the default is updated to match. Renaming onto an existing name
// returns an error.
func (c *Config) RenameProfile(from, to string) error {
	if c.Build.Profiles == nil {
		return errors.Errorf(errProfileNotFoundFmt, from)
	}
	p, ok := c.Build.Profiles[from]
	if !ok {
		return errors.Errorf(errProfileNotFoundFmt, from)
	}
	if from == to {
		return nil
	}
	if _, ok := c.Build.Profiles[to]; ok {
		return errors.Errorf(errProfileAlreadyExistsFmt, to)
	}

	c.Build.Profiles[to] = p
	delete(c.Build.Profiles, from)

	if c.Build.Default == from {
		c.Build.Default = to
	}

	return nil
}

// GetDefaultProfile gets the default build profile, or returns an error if
// no default is set or the default profile does not exist.
func (c *Config) GetDefaultProfile() (string, profile.Profile, error) {
	if c.Build.Default == "" {
		return "", profile.Profile{}, errors.New(errNoDefaultSpecified)
	}
	p, ok := c.Build.Profiles[c.Build.Default]
	if !ok {
		return "", profile.Profile{}, errors.New(errDefaultNotExist)
	}
	return c.Build.Default, p, nil
}

// GetProfile gets a profile with a given name. Returns an error if no
// profile exists for the given name.
func (c *Config) GetProfile(name string) (profile.Profile, error) {
	p, ok := c.Build.Profiles[name]
	if !ok {
		return profile.Profile{}, errors.Errorf(errProfileNotFoundFmt, name)
	}
	return p, nil
}

// GetProfiles returns the full set of known profiles. Returns an error if
// none exist.
func (c *Config) GetProfiles() (map[string]profile.Profile, error) {
	if len(c.Build.Profiles) == 0 {
		return nil, errors.New(errNoProfilesFound)
	}

	return c.Build.Profiles, nil
}

// SetDefaultProfile sets the default profile used for builds that don't
// specify one explicitly. Returns an error if the named profile does not
// exist.
func (c *Config) SetDefaultProfile(name string) error {
	if _, ok := c.Build.Profiles[name]; !ok {
		return errors.Errorf(errProfileNotFoundFmt, name)
	}
	c.Build.Default = name
	return nil
}

func (c *Config) applyDefaults() {
	for name, p := range c.Build.Profiles {
		if p.Arch == "" {
			p.Arch = profile.DefaultArch
			c.Build.Profiles[name] = p
		}
	}
}

// Source supplies and persists Config. FileSource (in source.go) is the
// production implementation backed by a JSON file on disk.
type Source interface {
	Initialize() error
	GetConfig() (*Config, error)
	UpdateConfig(c *Config) error
}
