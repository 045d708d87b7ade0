// Package watchlist keeps the persisted set of symbols valued on schedule.
package watchlist

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ValueSentinel/internal/model"
	"ValueSentinel/internal/strategy"
)

// ErrEmptySymbol is returned when a blank symbol is added.
var ErrEmptySymbol = errors.New("symbol is empty")

// Manager handles watchlist edits with concurrency safety. Every change is saved immediately.
type Manager struct {
	mu       sync.Mutex
	state    *model.WatchState
	filePath string
	now      func() time.Time
}

// NewManager creates a Manager, loading state from disk.
// A watchlist that was never saved is seeded with initialSymbols.
func NewManager(filePath string, initialSymbols []string) (*Manager, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, err
	}

	m := &Manager{state: state, filePath: filePath, now: time.Now}

	if state.UpdatedAt.IsZero() {
		for _, sym := range initialSymbols {
			sym = normalize(sym)
			if sym != "" && m.index(sym) < 0 {
				m.state.Entries = append(m.state.Entries, model.WatchEntry{Symbol: sym, AddedAt: m.now()})
			}
		}
		if err := m.save(); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add watches symbol, replacing the assumptions of an existing entry.
// A nil assumptions means the defaults apply at evaluation time.
func (m *Manager) Add(symbol string, a *model.Assumptions) error {
	symbol = normalize(symbol)
	if symbol == "" {
		return ErrEmptySymbol
	}
	if a != nil {
		if err := strategy.ValidateAssumptions(*a); err != nil {
			return err
		}
		copied := *a
		a = &copied
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(symbol); i >= 0 {
		m.state.Entries[i].Assumptions = a
	} else {
		m.state.Entries = append(m.state.Entries, model.WatchEntry{Symbol: symbol, Assumptions: a, AddedAt: m.now()})
	}
	return m.save()
}

// Remove stops watching symbol. It reports whether the symbol was present.
func (m *Manager) Remove(symbol string) (bool, error) {
	symbol = normalize(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(symbol)
	if i < 0 {
		return false, nil
	}
	m.state.Entries = append(m.state.Entries[:i], m.state.Entries[i+1:]...)
	return true, m.save()
}

// List returns a copy of the watched entries in insertion order.
func (m *Manager) List() []model.WatchEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.WatchEntry, len(m.state.Entries))
	for i, e := range m.state.Entries {
		if e.Assumptions != nil {
			a := *e.Assumptions
			e.Assumptions = &a
		}
		out[i] = e
	}
	return out
}

// AssumptionsFor returns the assumptions to use for symbol.
func (m *Manager) AssumptionsFor(symbol string, defaults model.Assumptions) model.Assumptions {
	symbol = normalize(symbol)

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.index(symbol); i >= 0 {
		return m.state.Entries[i].Effective(defaults)
	}
	return defaults
}

func (m *Manager) index(symbol string) int {
	for i, e := range m.state.Entries {
		if e.Symbol == symbol {
			return i
		}
	}
	return -1
}

func (m *Manager) save() error {
	if err := SaveState(m.filePath, m.state); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	return nil
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
