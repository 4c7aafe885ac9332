// Package session owns per-tab demo state: loading it, serializing every
// mutation behind a per-session lock, and persisting it between requests.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ashureev/kneeoa/internal/domain"
	"github.com/ashureev/kneeoa/internal/reveal"
	"github.com/ashureev/kneeoa/internal/store"
)

// State is everything one browser tab has done in the demo.
type State struct {
	Chat               reveal.State `json:"chat"`
	SelectedCase       string       `json:"selected_case,omitempty"`
	SelectedImagePath  string       `json:"selected_image_path,omitempty"`
	SelectedImageLabel string       `json:"selected_image_label,omitempty"`
	ImagePickerOpen    bool         `json:"image_picker_open"`
	PredictionDone     bool         `json:"prediction_done"`
	TherapyStarted     bool         `json:"therapy_started"`
}

// NewState returns the state of a tab that has not done anything yet.
func NewState() *State {
	return &State{}
}

// SelectImage records the chosen sample image and closes the picker.
func (s *State) SelectImage(img domain.SampleImage) {
	s.SelectedImagePath = img.Path
	s.SelectedImageLabel = img.Label
	s.ImagePickerOpen = false
}

// HasImage reports whether both parts of the image selection are set.
func (s *State) HasImage() bool {
	return s.SelectedImagePath != "" && s.SelectedImageLabel != ""
}

// SelectCase records the chosen therapy case. Choosing a different case
// hides the previous run.
func (s *State) SelectCase(name string) {
	if name != s.SelectedCase {
		s.TherapyStarted = false
	}
	s.SelectedCase = name
}

// Key identifies one tab of one visitor.
type Key struct {
	UserID    string
	SessionID string
}

func (k Key) String() string {
	return k.UserID + "/" + k.SessionID
}

// Manager serializes access to session state.
type Manager struct {
	repo store.Repository
	now  func() time.Time

	mu    sync.Mutex
	locks map[Key]*keyLock
}

// keyLock is a per-session mutex shared by everyone holding or waiting on it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewManager creates a manager backed by repo.
func NewManager(repo store.Repository) *Manager {
	return &Manager{repo: repo, now: time.Now, locks: make(map[Key]*keyLock)}
}

// lock blocks until key is free. The entry is dropped when the last holder
// or waiter releases it, so idle sessions keep no lock in memory.
func (m *Manager) lock(key Key) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}

func (m *Manager) lockCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// Do loads the state for key, applies fn and saves the result if it changed.
// Calls for the same key never overlap. If fn fails nothing is saved.
func (m *Manager) Do(ctx context.Context, key Key, fn func(*State) error) error {
	unlock := m.lock(key)
	defer unlock()

	st, rec, err := m.load(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return m.save(ctx, key, st, rec)
}

// View returns a snapshot of the state for key without saving it.
func (m *Manager) View(ctx context.Context, key Key) (*State, error) {
	unlock := m.lock(key)
	defer unlock()

	st, _, err := m.load(ctx, key)
	return st, err
}

// Reset discards the state for key.
func (m *Manager) Reset(ctx context.Context, key Key) error {
	unlock := m.lock(key)
	defer unlock()

	return m.repo.DeleteSession(ctx, key.UserID, key.SessionID)
}

func (m *Manager) load(ctx context.Context, key Key) (*State, *domain.SessionRecord, error) {
	rec, err := m.repo.GetSession(ctx, key.UserID, key.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load session %s: %w", key, err)
	}
	st := NewState()
	if rec == nil {
		return st, nil, nil
	}
	if err := json.Unmarshal([]byte(rec.StateJSON), st); err != nil {
		// A record from an older layout starts over rather than failing the page.
		return NewState(), rec, nil
	}
	st.Chat.Clamp()
	return st, rec, nil
}

func (m *Manager) save(ctx context.Context, key Key, st *State, prev *domain.SessionRecord) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}
	if prev != nil && prev.StateJSON == string(data) {
		return nil
	}

	now := m.now()
	rec := &domain.SessionRecord{
		UserID:    key.UserID,
		SessionID: key.SessionID,
		StateJSON: string(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		rec.CreatedAt = prev.CreatedAt
	}
	return m.repo.UpsertSession(ctx, rec)
}
