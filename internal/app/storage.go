package app

import (
	"encoding/json"
	"io"
	"log"
	"os"

	"github.com/klabast/wb-services/recept/internal/mealplan"
)

// LoadData loads the data set from the file, starting empty if it does not exist yet
func LoadData() error {
	file, err := os.Open(DataFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️  No data file at %s, starting with an empty data set", DataFile)
			DataMutex.Lock()
			Data = NewAppData()
			DataMutex.Unlock()
			return nil
		}
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Error closing data file: %v", err)
		}
	}()

	raw, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	var newData AppData
	if err := json.Unmarshal(raw, &newData); err != nil {
		return err
	}
	newData.normalize()

	DataMutex.Lock()
	Data = &newData
	DataMutex.Unlock()

	return nil
}

// SaveData saves the data set to the file with backup
func SaveData() error {
	DataMutex.RLock()
	defer DataMutex.RUnlock()
	return saveDataLocked()
}

// saveDataLocked saves data without locking (caller must hold lock)
func saveDataLocked() error {
	raw, err := json.MarshalIndent(Data, "", "  ")
	if err != nil {
		return err
	}

	// Write to temp file first
	tmpFile := DataFile + TmpSuffix
	if err := os.WriteFile(tmpFile, raw, FilePermissions); err != nil {
		return err
	}

	// Keep the previous version as backup
	if _, err := os.Stat(DataFile); err == nil {
		if err := os.Rename(DataFile, DataFile+BackupSuffix); err != nil {
			log.Printf("Warning: failed to create backup: %v", err)
		}
	}

	// Rename temp file to actual file
	return os.Rename(tmpFile, DataFile)
}

// kvGet returns the value stored under key, or "" if absent
func kvGet(key string) string {
	DataMutex.RLock()
	defer DataMutex.RUnlock()
	if Data == nil {
		return ""
	}
	return Data.KV[key]
}

// kvSet overwrites key and persists the data set
func kvSet(key, value string) error {
	DataMutex.Lock()
	defer DataMutex.Unlock()
	if Data == nil {
		Data = NewAppData()
	}
	prev, existed := Data.KV[key]
	Data.KV[key] = value
	if err := saveDataLocked(); err != nil {
		if existed {
			Data.KV[key] = prev
		} else {
			delete(Data.KV, key)
		}
		return err
	}
	return nil
}

// kvSlot binds one key of the key-value map as a mealplan.Storage
type kvSlot struct {
	key string
}

func (s kvSlot) Get() (string, error) {
	return kvGet(s.key), nil
}

func (s kvSlot) Set(value string) error {
	return kvSet(s.key, value)
}

// KVStorage returns persistent storage for a single key
func KVStorage(key string) mealplan.Storage {
	return kvSlot{key: key}
}
