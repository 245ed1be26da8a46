package migration

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

type TableStatus struct {
	Name    string `json:"name"`
	Read    int64  `json:"read"`
	Written int64  `json:"written"`
}

type Status struct {
	State        State         `json:"state"`
	DryRun       bool          `json:"dry_run"`
	SkipImages   bool          `json:"skip_images"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
	CurrentTable string        `json:"current_table,omitempty"`
	Tables       []TableStatus `json:"tables"`
	ImagesCopied int           `json:"images_copied"`
	ImagesFailed int           `json:"images_failed"`
	Error        string        `json:"error,omitempty"`
}

func (s Status) Running() bool {
	return s.State == StateRunning
}

// StatusStore хранит статус в JSON-файле, чтобы его видели и CLI, и сервер.
type StatusStore struct {
	mu   sync.Mutex
	path string
}

func NewStatusStore(path string) *StatusStore {
	return &StatusStore{path: path}
}

func (s *StatusStore) Path() string {
	return s.path
}

// Load возвращает idle, если файла ещё нет.
func (s *StatusStore) Load() (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Status{State: StateIdle, Tables: []TableStatus{}}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("read migration status: %w", err)
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, fmt.Errorf("parse migration status: %w", err)
	}
	if st.Tables == nil {
		st.Tables = []TableStatus{}
	}
	return st, nil
}

// Save пишет во временный файл и переименовывает его.
func (s *StatusStore) Save(st Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create status dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".migration-status-*")
	if err != nil {
		return fmt.Errorf("create status file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write status file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
