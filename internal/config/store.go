package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/MrTrustworthy/auri/internal/logging"
)

var logger = logging.New("config")

var (
	// ErrNoActiveDevice is returned when no device is configured or active.
	ErrNoActiveDevice = errors.New("no active device configured, run `auri device setup` first")
	// ErrDeviceNotFound is returned when a name lookup fails.
	ErrDeviceNotFound = errors.New("no device with that name is configured")
)

// DeviceConfig is one registry entry, keyed by the device IP in the file:
//
//	{ "192.168.0.255": {"name": "bananaleaf", "token": "...", "mac": "ab:cd", "active": true} }
type DeviceConfig struct {
	Name   string `json:"name"`
	Token  string `json:"token"`
	MAC    string `json:"mac"`
	Active bool   `json:"active"`
}

// Devices maps device IP to its configuration.
type Devices map[string]DeviceConfig

// Store persists the device registry as a JSON document.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the registry. A missing file is an empty registry. Registries
// with zero or multiple active entries are repaired to exactly one.
func (s *Store) Load() (Devices, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Devices{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading device registry: %w", err)
	}

	var devices Devices
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("parsing device registry %s: %w", s.path, err)
	}
	if repairActives(devices) {
		logger.Warn("Device registry did not have exactly one active device, repaired")
		if err := s.Save(devices); err != nil {
			return nil, err
		}
	}
	return devices, nil
}

// Save writes the registry atomically: the document is written to a
// temporary file in the same directory and renamed over the target, so
// concurrent invocations never observe a partial write.
func (s *Store) Save(devices Devices) error {
	data, err := json.MarshalIndent(devices, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding device registry: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("creating temp registry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing device registry: %w", err)
	}
	return nil
}

// Add registers or overwrites the device at ip. The first device ever added
// becomes active.
func (s *Store) Add(ip string, d DeviceConfig) error {
	devices, err := s.Load()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		d.Active = true
	}
	devices[ip] = d
	repairActives(devices)
	return s.Save(devices)
}

// SetActive marks the named device as the one commands operate on.
func (s *Store) SetActive(name string) error {
	devices, err := s.Load()
	if err != nil {
		return err
	}
	found := false
	for ip, d := range devices {
		d.Active = d.Name == name
		if d.Active {
			found = true
		}
		devices[ip] = d
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return s.Save(devices)
}

// Active returns the active device's IP and configuration.
func (s *Store) Active() (string, DeviceConfig, error) {
	devices, err := s.Load()
	if err != nil {
		return "", DeviceConfig{}, err
	}
	for ip, d := range devices {
		if d.Active {
			return ip, d, nil
		}
	}
	return "", DeviceConfig{}, ErrNoActiveDevice
}

// ByName returns the device with the given name.
func (s *Store) ByName(name string) (string, DeviceConfig, error) {
	devices, err := s.Load()
	if err != nil {
		return "", DeviceConfig{}, err
	}
	for ip, d := range devices {
		if d.Name == name {
			return ip, d, nil
		}
	}
	return "", DeviceConfig{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// ByNameOrActive resolves the device a command should act on: the named one
// when name is non-empty, the active one otherwise.
func (s *Store) ByNameOrActive(name string) (string, DeviceConfig, error) {
	if name == "" {
		return s.Active()
	}
	return s.ByName(name)
}

// NameByIP returns the configured name for ip, or "" when unknown.
func (s *Store) NameByIP(ip string) (string, error) {
	devices, err := s.Load()
	if err != nil {
		return "", err
	}
	return devices[ip].Name, nil
}

// repairActives enforces the exactly-one-active invariant in place and
// reports whether anything changed. With multiple actives the first by IP
// order wins so the outcome is stable.
func repairActives(devices Devices) bool {
	if len(devices) == 0 {
		return false
	}
	ips := make([]string, 0, len(devices))
	for ip := range devices {
		ips = append(ips, ip)
	}
	sort.Strings(ips)

	first := ""
	actives := 0
	for _, ip := range ips {
		if devices[ip].Active {
			actives++
			if first == "" {
				first = ip
			}
		}
	}
	if actives == 1 {
		return false
	}
	if first == "" {
		first = ips[0]
	}
	for _, ip := range ips {
		d := devices[ip]
		d.Active = ip == first
		devices[ip] = d
	}
	return true
}
