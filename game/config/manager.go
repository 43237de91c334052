package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrRulesetNotFound = errors.New("ruleset not found")
	ErrInvalidRuleset  = errors.New("invalid ruleset")
)

// DefaultRulesetName is loaded as the default when present
const DefaultRulesetName = "default"

// Manager handles ruleset loading and caching
type Manager struct {
	dir            string
	defaultRuleset *Ruleset
	rulesets       map[string]*Ruleset
	log            logrus.FieldLogger
	mu             sync.RWMutex
}

// NewManager creates a ruleset manager reading from dir
func NewManager(dir string, log logrus.FieldLogger) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("ruleset directory does not exist: %s", dir)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	m := &Manager{
		dir:      dir,
		rulesets: make(map[string]*Ruleset),
		log:      log,
	}

	if err := m.loadDefaultRuleset(); err != nil {
		return nil, fmt.Errorf("failed to load default ruleset: %w", err)
	}

	return m, nil
}

// Dir returns the directory rulesets are read from
func (m *Manager) Dir() string {
	return m.dir
}

// LoadRuleset loads a ruleset by name, with or without its extension
func (m *Manager) LoadRuleset(name string) (*Ruleset, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: %q", ErrRulesetNotFound, name)
	}

	m.mu.RLock()
	if r, exists := m.rulesets[name]; exists {
		m.mu.RUnlock()
		return r, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if r, exists := m.rulesets[name]; exists {
		return r, nil
	}

	path, ok := m.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRulesetNotFound, name)
	}

	r, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{
		"ruleset":    name,
		"file":       filepath.Base(path),
		"tile_types": len(r.TileTypes),
		"units":      len(r.Units),
	}).Info("ruleset loaded")

	m.rulesets[name] = r
	return r, nil
}

func (m *Manager) find(name string) (string, bool) {
	if ext := filepath.Ext(name); isRulesetExt(ext) {
		path := filepath.Join(m.dir, name)
		_, err := os.Stat(path)
		return path, err == nil
	}
	for _, ext := range Extensions {
		path := filepath.Join(m.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func isRulesetExt(ext string) bool {
	for _, e := range Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// ListRulesets returns information about every loadable ruleset. Invalid files
// are skipped and logged.
func (m *Manager) ListRulesets() ([]*RulesetInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset directory: %w", err)
	}

	var rulesets []*RulesetInfo
	for _, entry := range entries {
		if entry.IsDir() || !isRulesetExt(filepath.Ext(entry.Name())) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		r, err := m.LoadRuleset(name)
		if err != nil {
			m.log.WithError(err).WithField("file", entry.Name()).Warn("skipping ruleset")
			continue
		}
		rulesets = append(rulesets, r.Info(entry.Name()))
	}

	sort.Slice(rulesets, func(i, j int) bool {
		return rulesets[i].RulesetID < rulesets[j].RulesetID
	})
	return rulesets, nil
}

// GetDefault returns the default ruleset, or nil when the directory has none
func (m *Manager) GetDefault() *Ruleset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultRuleset
}

// SetDefault sets the default ruleset by name
func (m *Manager) SetDefault(name string) error {
	r, err := m.LoadRuleset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultRuleset = r
	return nil
}

// RefreshCache drops every cached ruleset and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.rulesets = make(map[string]*Ruleset)
	m.mu.Unlock()

	return m.loadDefaultRuleset()
}

func (m *Manager) loadDefaultRuleset() error {
	r, err := m.LoadRuleset(DefaultRulesetName)
	if err != nil {
		if !errors.Is(err, ErrRulesetNotFound) {
			return err
		}
		infos, listErr := m.ListRulesets()
		if listErr != nil {
			return listErr
		}
		if len(infos) == 0 {
			m.log.WithField("dir", m.dir).Warn("no rulesets found")
			return nil
		}
		if r, err = m.LoadRuleset(infos[0].RulesetID); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.defaultRuleset = r
	m.mu.Unlock()
	return nil
}

// SaveRuleset validates r and writes it as name. The format follows the
// extension in name, defaulting to JSON.
func (m *Manager) SaveRuleset(name string, r *Ruleset) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: bad ruleset name %q", ErrInvalidRuleset, name)
	}

	r.ApplyDefaults()
	if err := r.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRuleset, err)
	}

	filename := name
	ext := filepath.Ext(name)
	if !isRulesetExt(ext) {
		ext = ".json"
		filename = name + ext
	}

	data, err := Encode(r, ext)
	if err != nil {
		return fmt.Errorf("failed to marshal ruleset: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.dir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write ruleset file: %w", err)
	}

	m.mu.Lock()
	m.rulesets[strings.TrimSuffix(filename, ext)] = r
	m.mu.Unlock()

	return nil
}
