package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config.json"))
}

func TestStoreMissingFileIsEmpty(t *testing.T) {
	s := newTestStore(t)
	devices, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestStoreFirstDeviceBecomesActive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("192.168.0.10", DeviceConfig{Name: "livingroom", Token: "t1", MAC: "aa:bb"}))

	ip, d, err := s.Active()
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.10", ip)
	assert.Equal(t, "livingroom", d.Name)
	assert.True(t, d.Active)
}

func TestStoreSetActiveSwitches(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("192.168.0.10", DeviceConfig{Name: "livingroom"}))
	require.NoError(t, s.Add("192.168.0.11", DeviceConfig{Name: "bedroom"}))

	require.NoError(t, s.SetActive("bedroom"))
	ip, d, err := s.Active()
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.11", ip)
	assert.Equal(t, "bedroom", d.Name)

	devices, err := s.Load()
	require.NoError(t, err)
	assert.False(t, devices["192.168.0.10"].Active, "only one device may be active")

	assert.ErrorIs(t, s.SetActive("kitchen"), ErrDeviceNotFound)
}

func TestStoreByNameOrActive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Add("192.168.0.10", DeviceConfig{Name: "livingroom"}))
	require.NoError(t, s.Add("192.168.0.11", DeviceConfig{Name: "bedroom"}))

	ip, _, err := s.ByNameOrActive("bedroom")
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.11", ip)

	ip, _, err = s.ByNameOrActive("")
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.10", ip)

	_, _, err = s.ByNameOrActive("kitchen")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestStoreActiveOnEmptyRegistry(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Active()
	assert.ErrorIs(t, err, ErrNoActiveDevice)
}

func TestStoreRepairsMultipleActives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	broken := Devices{
		"192.168.0.20": {Name: "a", Active: true},
		"192.168.0.10": {Name: "b", Active: true},
	}
	data, err := json.Marshal(broken)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	devices, err := NewStore(path).Load()
	require.NoError(t, err)

	// The first IP in order stays active, the duplicate is repaired away.
	assert.True(t, devices["192.168.0.10"].Active)
	assert.False(t, devices["192.168.0.20"].Active)
}

func TestStoreRepairsZeroActives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data, err := json.Marshal(Devices{"192.168.0.10": {Name: "a"}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	devices, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.True(t, devices["192.168.0.10"].Active)
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "config.json"))
	require.NoError(t, s.Add("192.168.0.10", DeviceConfig{Name: "a"}))
	require.NoError(t, s.Add("192.168.0.11", DeviceConfig{Name: "b"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
