// Package credentials persists the client-side API key and model used by the
// direct generation path.
package credentials

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	appDirName = "fxinsight"
	fileName   = "credentials.yaml"
)

// Credentials is the locally stored credential state. Both values are optional.
type Credentials struct {
	APIKey string `yaml:"OPENAI_API_KEY"`
	Model  string `yaml:"OPENAI_MODEL"`
}

// Reader loads the current credentials.
type Reader interface {
	Load() (Credentials, error)
}

// Store is a file-backed credential store.
type Store struct {
	path string
}

// NewStore returns a store persisting to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns $XDG_CONFIG_HOME/fxinsight/credentials.yaml, or
// ~/.config/fxinsight/credentials.yaml when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName, fileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appDirName, fileName)
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the stored credentials. A missing file yields empty credentials.
func (s *Store) Load() (Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, nil
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse credentials %s: %w", s.path, err)
	}

	creds.APIKey = strings.TrimSpace(creds.APIKey)
	creds.Model = strings.TrimSpace(creds.Model)

	return creds, nil
}

// Save writes creds, replacing the file atomically so concurrent readers
// see either the previous or the new state.
func (s *Store) Save(creds Credentials) error {
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	creds.Model = strings.TrimSpace(creds.Model)

	data, err := yaml.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("chmod credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credentials: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}

	return nil
}

// Masked returns the API key with all but its last four characters hidden.
func (c Credentials) Masked() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// Static is a fixed in-memory Reader.
type Static Credentials

// Load returns the fixed credentials.
func (s Static) Load() (Credentials, error) {
	return Credentials(s), nil
}
