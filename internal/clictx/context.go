// Copyright 2025 cbuild Authors.
// All rights reserved

// Package clictx builds the shared context cbuild subcommands bind to: the
// on-disk config, its source, and the selected build profile.
package clictx

import (
	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/distrocore/cbuild/internal/config"
	"github.com/distrocore/cbuild/internal/logging"
	"github.com/distrocore/cbuild/internal/profile"
)

// Flags are the global, profile-selecting flags every subcommand inherits.
type Flags struct {
	Profile string `env:"CBUILD_PROFILE" help:"Build profile to use." name:"profile" short:"p"`
	Debug   int    `help:"Run with debug logging. Repeat to increase verbosity." name:"debug" short:"d" type:"counter"`
}

// Context is the shared state bound to every subcommand's Run method.
type Context struct {
	FS     afero.Fs
	Cfg    *config.Config
	CfgSrc config.Source
	Log    logr.Logger

	ProfileName string
	Profile     profile.Profile
}

// Option configures a Context constructed by NewFromFlags.
type Option func(*options)

type options struct {
	fs                  afero.Fs
	cfgPath             string
	allowMissingProfile bool
}

// WithFS overrides the filesystem backing the config source. Tests use an
// in-memory afero.Fs; production uses the OS filesystem (the default).
func WithFS(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithConfigPath overrides the config file path. Production resolves it
// from config.GetDefaultPath.
func WithConfigPath(path string) Option {
	return func(o *options) { o.cfgPath = path }
}

// AllowMissingProfile lets NewFromFlags succeed with a zero-value Profile
// when no default is configured, for commands (the profile subcommands)
// that can run before any profile exists.
func AllowMissingProfile() Option {
	return func(o *options) { o.allowMissingProfile = true }
}

// NewFromFlags loads the on-disk config and resolves f.Profile (or the
// configured default) into a Context.
func NewFromFlags(f Flags, opts ...Option) (*Context, error) {
	o := &options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(o)
	}

	path := o.cfgPath
	if path == "" {
		p, err := config.GetDefaultPath()
		if err != nil {
			return nil, errors.Wrap(err, "resolving config path")
		}
		path = p
	}

	src := config.NewFSSource(config.WithFS(o.fs), config.WithPath(path))
	if err := src.Initialize(); err != nil {
		return nil, errors.Wrap(err, "initializing config")
	}
	cfg, err := src.GetConfig()
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	log, err := newLogger(f.Debug)
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	if f.Debug > 0 {
		logging.SetKlogLogger(f.Debug, log)
	}

	c := &Context{FS: o.fs, Cfg: cfg, CfgSrc: src, Log: log}

	name := f.Profile
	var p profile.Profile
	if name != "" {
		p, err = cfg.GetProfile(name)
	} else {
		name, p, err = cfg.GetDefaultProfile()
	}
	if err != nil {
		if o.allowMissingProfile {
			return c, nil
		}
		return nil, err
	}

	c.ProfileName = name
	c.Profile = p
	return c, nil
}

// newLogger builds a zap-backed logr.Logger, switched to a human-readable
// development encoding and debugLevel-scaled verbosity once --debug is set
// at least once.
func newLogger(debugLevel int) (logr.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debugLevel > 0 {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-debugLevel))
	}

	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zl), nil
}
