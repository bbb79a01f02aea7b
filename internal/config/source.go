// Copyright 2025 cbuild Authors.
// All rights reserved

package config

import (
	"encoding/json"
	"path/filepath"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/spf13/afero"
)

// FileSource is a Source backed by a JSON file on disk.
type FileSource struct {
	fs   afero.Fs
	path string
}

// Option configures a FileSource.
type Option func(*FileSource)

// WithFS sets the filesystem a FileSource reads and writes through.
func WithFS(fs afero.Fs) Option {
	return func(s *FileSource) {
		s.fs = fs
	}
}

// WithPath sets the config file path a FileSource reads and writes.
func WithPath(path string) Option {
	return func(s *FileSource) {
		s.path = path
	}
}

// NewFSSource constructs a FileSource on the OS filesystem. The config file
// path has no default; set it with WithPath.
func NewFSSource(opts ...Option) *FileSource {
	s := &FileSource{fs: afero.NewOsFs()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Initialize creates the config file's parent directory and an empty
// config file if neither already exists.
func (s *FileSource) Initialize() error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return errors.Wrap(err, "checking config file")
	}
	if exists {
		return nil
	}
	return s.UpdateConfig(&Config{})
}

// GetConfig reads and unmarshals the config file.
func (s *FileSource) GetConfig() (*Config, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	c := &Config{}
	if err := json.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}
	c.applyDefaults()
	return c, nil
}

// UpdateConfig marshals and atomically rewrites the config file.
func (s *FileSource) UpdateConfig(c *Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, b, 0o600); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return s.fs.Rename(tmp, s.path)
}
