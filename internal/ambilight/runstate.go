package ambilight

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// Marker records which process is running an ambilight loop for which
// device, so a `stop` from a separate CLI invocation can find and cancel it.
type Marker struct {
	Device    string    `json:"device"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

// StateFile persists the session marker. All writes are atomic replaces so
// independent CLI invocations never read a partial document.
type StateFile struct {
	path string
}

func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Read returns the current marker, or nil when no session is recorded.
func (f *StateFile) Read() (*Marker, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session marker: %w", err)
	}
	var m Marker
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing session marker %s: %w", f.path, err)
	}
	return &m, nil
}

// Write records m via temp-file-and-rename.
func (f *StateFile) Write(m Marker) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ambi-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing session marker: %w", err)
	}
	return nil
}

// Live returns the marker when its recorded process is still alive, else
// nil. Only one ambilight loop exists at a time, whichever device it drives.
func (f *StateFile) Live() (*Marker, error) {
	m, err := f.Read()
	if err != nil || m == nil {
		return nil, err
	}
	if !processAlive(m.PID) {
		return nil, nil
	}
	return m, nil
}

// Release removes the marker, but only when the stored one is own: a marker
// written by a different session (other PID or device) is left untouched.
// Releasing an absent marker is not an error.
func (f *StateFile) Release(own Marker) error {
	m, err := f.Read()
	if err != nil || m == nil {
		return err
	}
	if m.PID != own.PID || m.Device != own.Device {
		return nil
	}
	err = os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// processAlive reports whether pid refers to a live process we may signal.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 performs the existence/permission check without delivering
	// anything.
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// signalStop asks the loop process to shut down at its next safe point.
func signalStop(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}
