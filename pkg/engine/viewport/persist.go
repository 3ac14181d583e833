package viewport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultSaveDelay is how long rapid pan/zoom changes are coalesced before a
// persistence write happens.
const DefaultSaveDelay = 500 * time.Millisecond

// Store persists viewport state keyed by map/session id.
type Store interface {
	// Load returns the stored state for key, and whether one existed.
	Load(key string) (State, bool, error)
	// Save writes the state for key.
	Save(key string, s State) error
}

// FileStore keeps one JSON file per key inside a directory.
type FileStore struct {
	Dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("viewport store: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.Dir, key+".json")
}

// Load reads the state file for key. A missing file is not an error.
func (f *FileStore) Load(key string) (State, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("viewport store load %q: %w", key, err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, false, fmt.Errorf("viewport store decode %q: %w", key, err)
	}
	return s, true, nil
}

// Save writes the state file for key.
func (f *FileStore) Save(key string, s State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("viewport store encode %q: %w", key, err)
	}
	if err := os.WriteFile(f.path(key), data, 0o644); err != nil {
		return fmt.Errorf("viewport store save %q: %w", key, err)
	}
	return nil
}

// Saver debounces viewport-changed events into store writes so rapid
// pan/zoom does not hammer the disk. Register Saver.Changed as an OnChange
// listener and call Flush on teardown.
type Saver struct {
	store Store
	key   string
	delay time.Duration
	onErr func(error)

	mu      sync.Mutex
	pending State
	dirty   bool
	timer   *time.Timer
}

// NewSaver wires a debounced saver for one viewport key. onErr may be nil;
// save failures are then dropped (persistence is not critical).
func NewSaver(store Store, key string, delay time.Duration, onErr func(error)) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	return &Saver{store: store, key: key, delay: delay, onErr: onErr}
}

// Changed records a new state and (re)arms the debounce timer.
func (s *Saver) Changed(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = state
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.fire)
	} else {
		s.timer.Reset(s.delay)
	}
}

func (s *Saver) fire() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	state := s.pending
	s.dirty = false
	s.mu.Unlock()

	if err := s.store.Save(s.key, state); err != nil && s.onErr != nil {
		s.onErr(err)
	}
}

// Flush cancels the timer and writes any pending state immediately.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	dirty := s.dirty
	state := s.pending
	s.dirty = false
	s.mu.Unlock()

	if dirty {
		if err := s.store.Save(s.key, state); err != nil && s.onErr != nil {
			s.onErr(err)
		}
	}
}
