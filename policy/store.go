package policy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yllada/vpn-switcher/common"
)

// Store loads and persists the policy file. The daemon reads the policy once
// per switch cycle, so edits made through the CLI take effect on the next
// cycle without a restart.
type Store struct {
	path string
}

// NewStore returns a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the policy file. A missing or empty file yields the default
// empty policy; a malformed or invalid file is an error so the daemon never
// runs against a half-read policy.
func (s *Store) Load() (*Config, error) {
	if !common.FileExists(s.path) {
		return &Config{}, nil
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPolicyLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true) // Strict validation: reject unknown fields

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: %v", common.ErrPolicyLoad, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPolicyLoad, err)
	}
	return &cfg, nil
}

// Save validates and writes the policy file, creating the parent directory
// when needed.
func (s *Store) Save(cfg *Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPolicySave, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPolicySave, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrPolicySave, err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPolicySave, err)
	}
	return nil
}

// AddRule validates the rule and appends it to the policy. Appended rules
// rank last, so existing rules keep winning ties.
func (s *Store) AddRule(rule TrustRule) error {
	if err := rule.validate(); err != nil {
		return err
	}
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	cfg.Rules = append(cfg.Rules, rule)
	return s.Save(cfg)
}

// RemoveRules deletes every rule whose SSID or interface equals the given
// selectors and reports how many were removed. Empty selectors match
// nothing. The file is rewritten only when at least one rule was removed.
func (s *Store) RemoveRules(ssid, iface string) (int, error) {
	cfg, err := s.Load()
	if err != nil {
		return 0, err
	}

	kept := make([]TrustRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if (ssid != "" && rule.SSID == ssid) || (iface != "" && rule.Interface == iface) {
			continue
		}
		kept = append(kept, rule)
	}

	removed := len(cfg.Rules) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	cfg.Rules = kept
	return removed, s.Save(cfg)
}

// SetFallback sets the fallback tunnel required on unmatched networks.
func (s *Store) SetFallback(tunnelUUID string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	cfg.FallbackVPNUUID = tunnelUUID
	return s.Save(cfg)
}

// ClearFallback removes the fallback tunnel, so unmatched networks require
// no tunnel at all.
func (s *Store) ClearFallback() error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	cfg.FallbackVPNUUID = ""
	return s.Save(cfg)
}
