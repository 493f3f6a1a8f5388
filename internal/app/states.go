// Package app provides save state slot management for the SNES emulator.
package app

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gosnes/internal/bus"
)

// encodeStateFile gob-encodes a save-state envelope, matching
// bus.Bus's own SaveState/LoadState wire format.
func encodeStateFile(sf *stateFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStateFile(data []byte) (*stateFile, error) {
	var sf stateFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sf); err != nil {
		return nil, err
	}
	return &sf, nil
}

// StateManager owns the save-state directory and slot naming scheme.
// The wire format itself is bus.Bus's gob-encoded snapshot; this type
// only adds slot bookkeeping (file paths, metadata, existence checks)
// on top of it.
type StateManager struct {
	saveDirectory string
	maxSlots      int
	initialized   bool
}

// stateFile is the on-disk save-state envelope: metadata plus the raw
// bytes produced by bus.Bus.SaveState.
type stateFile struct {
	Timestamp   time.Time
	ROMPath     string
	ROMChecksum string
	Snapshot    []byte
}

// StateSlotInfo describes one save-state slot for UI/listing purposes.
type StateSlotInfo struct {
	SlotNumber int
	Used       bool
	Timestamp  time.Time
	ROMPath    string
	FilePath   string
	FileSize   int64
}

// NewStateManager creates a state manager rooted at saveDirectory.
func NewStateManager(saveDirectory string) *StateManager {
	manager := &StateManager{
		saveDirectory: saveDirectory,
		maxSlots:      10,
	}

	if err := manager.initialize(); err != nil {
		fmt.Printf("Warning: state manager initialization failed: %v\n", err)
	}

	return manager
}

func (sm *StateManager) initialize() error {
	if err := os.MkdirAll(sm.saveDirectory, 0755); err != nil {
		return fmt.Errorf("failed to create save directory: %v", err)
	}
	sm.initialized = true
	return nil
}

// SaveState serializes b's current state via bus.Bus.SaveState and
// writes it to the given slot for romPath.
func (sm *StateManager) SaveState(b *bus.Bus, slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d", slot)
	}

	snapshot, err := b.SaveState()
	if err != nil {
		return fmt.Errorf("failed to snapshot bus state: %v", err)
	}

	sf := stateFile{
		Timestamp:   time.Now(),
		ROMPath:     romPath,
		ROMChecksum: sm.calculateROMChecksum(romPath),
		Snapshot:    snapshot,
	}
	return sm.saveToFile(&sf, sm.getSlotFilePath(slot, romPath))
}

// LoadState restores b from the snapshot stored in slot for romPath.
func (sm *StateManager) LoadState(b *bus.Bus, slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d", slot)
	}

	sf, err := sm.loadFromFile(sm.getSlotFilePath(slot, romPath))
	if err != nil {
		return fmt.Errorf("failed to load slot %d: %v", slot, err)
	}
	if err := sm.validateStateFile(sf, romPath); err != nil {
		return fmt.Errorf("invalid save state: %v", err)
	}
	return b.LoadState(sf.Snapshot)
}

func (sm *StateManager) saveToFile(sf *stateFile, filePath string) error {
	var buf []byte
	var err error
	if buf, err = encodeStateFile(sf); err != nil {
		return fmt.Errorf("failed to encode save state: %v", err)
	}
	if err := os.WriteFile(filePath, buf, 0644); err != nil {
		return fmt.Errorf("failed to write save state: %v", err)
	}
	return nil
}

func (sm *StateManager) loadFromFile(filePath string) (*stateFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read save state: %v", err)
	}
	return decodeStateFile(data)
}

func (sm *StateManager) validateStateFile(sf *stateFile, romPath string) error {
	if sf.ROMChecksum != sm.calculateROMChecksum(romPath) {
		return fmt.Errorf("save state does not match loaded ROM %s", romPath)
	}
	return nil
}

// getSlotFilePath generates the file path for a save slot.
func (sm *StateManager) getSlotFilePath(slot int, romPath string) string {
	romName := filepath.Base(romPath)
	romNameWithoutExt := romName[:len(romName)-len(filepath.Ext(romName))]
	fileName := fmt.Sprintf("%s_slot_%d.state", romNameWithoutExt, slot)
	return filepath.Join(sm.saveDirectory, fileName)
}

// calculateROMChecksum derives a ROM identity tag from its file name;
// a full content hash is unnecessary since the snapshot already
// excludes ROM bytes and only needs to catch an obviously mismatched
// cartridge.
func (sm *StateManager) calculateROMChecksum(romPath string) string {
	return fmt.Sprintf("checksum_%s", filepath.Base(romPath))
}

// GetSlotInfo returns information about every save slot for romPath.
func (sm *StateManager) GetSlotInfo(romPath string) []StateSlotInfo {
	slots := make([]StateSlotInfo, sm.maxSlots)

	for i := 0; i < sm.maxSlots; i++ {
		slotInfo := StateSlotInfo{SlotNumber: i}

		filePath := sm.getSlotFilePath(i, romPath)
		if stat, err := os.Stat(filePath); err == nil {
			slotInfo.Used = true
			slotInfo.FilePath = filePath
			slotInfo.FileSize = stat.Size()
			slotInfo.Timestamp = stat.ModTime()

			if sf, err := sm.loadFromFile(filePath); err == nil {
				slotInfo.ROMPath = sf.ROMPath
				slotInfo.Timestamp = sf.Timestamp
			}
		}

		slots[i] = slotInfo
	}

	return slots
}

// DeleteState removes the save state in slot for romPath.
func (sm *StateManager) DeleteState(slot int, romPath string) error {
	if !sm.initialized {
		return fmt.Errorf("state manager not initialized")
	}
	if slot < 0 || slot >= sm.maxSlots {
		return fmt.Errorf("invalid save slot: %d", slot)
	}

	filePath := sm.getSlotFilePath(slot, romPath)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("save state not found in slot %d", slot)
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete save state: %v", err)
	}
	return nil
}

// HasSaveState reports whether slot has a save state for romPath.
func (sm *StateManager) HasSaveState(slot int, romPath string) bool {
	if slot < 0 || slot >= sm.maxSlots {
		return false
	}
	_, err := os.Stat(sm.getSlotFilePath(slot, romPath))
	return err == nil
}

func (sm *StateManager) GetMaxSlots() int { return sm.maxSlots }

func (sm *StateManager) SetMaxSlots(slots int) {
	if slots > 0 {
		sm.maxSlots = slots
	}
}

func (sm *StateManager) GetSaveDirectory() string { return sm.saveDirectory }

func (sm *StateManager) SetSaveDirectory(directory string) error {
	sm.saveDirectory = directory
	return sm.initialize()
}

// ExportState writes b's current state to an arbitrary file, outside
// the slot naming scheme.
func (sm *StateManager) ExportState(b *bus.Bus, filePath string, romPath string) error {
	snapshot, err := b.SaveState()
	if err != nil {
		return fmt.Errorf("failed to snapshot bus state: %v", err)
	}
	sf := stateFile{
		Timestamp:   time.Now(),
		ROMPath:     romPath,
		ROMChecksum: sm.calculateROMChecksum(romPath),
		Snapshot:    snapshot,
	}
	return sm.saveToFile(&sf, filePath)
}

// ImportState restores b from an arbitrary file written by ExportState.
func (sm *StateManager) ImportState(b *bus.Bus, filePath string, romPath string) error {
	sf, err := sm.loadFromFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to import state: %v", err)
	}
	if err := sm.validateStateFile(sf, romPath); err != nil {
		return fmt.Errorf("invalid imported state: %v", err)
	}
	return b.LoadState(sf.Snapshot)
}

// Cleanup releases state manager resources.
func (sm *StateManager) Cleanup() error {
	sm.initialized = false
	return nil
}

// GetStateManagerStats summarizes slot usage for romPath.
func (sm *StateManager) GetStateManagerStats(romPath string) StateManagerStats {
	slots := sm.GetSlotInfo(romPath)

	var usedSlots int
	var totalSize int64
	for _, slot := range slots {
		if slot.Used {
			usedSlots++
			totalSize += slot.FileSize
		}
	}

	return StateManagerStats{
		MaxSlots:      sm.maxSlots,
		UsedSlots:     usedSlots,
		FreeSlots:     sm.maxSlots - usedSlots,
		TotalSize:     totalSize,
		SaveDirectory: sm.saveDirectory,
		Initialized:   sm.initialized,
	}
}

// StateManagerStats reports save-directory usage.
type StateManagerStats struct {
	MaxSlots      int
	UsedSlots     int
	FreeSlots     int
	TotalSize     int64
	SaveDirectory string
	Initialized   bool
}
