// services/store_manager.go
package services

import (
	"log"
	"os"
	"strconv"
	"sync"

	"lingua/progression"
)

// StoreManager hands out one progression.Store per authenticated user and
// keeps it for the lifetime of the process. Stores rehydrate from local
// blob storage on first access.
type StoreManager struct {
	mu      sync.Mutex
	stores  map[uint]*progression.Store
	storage progression.LocalStorage
	remote  progression.RemoteSync
	clock   progression.Clock
}

var storeManager *StoreManager

// InitStoreManager initializes the singleton store manager.
func InitStoreManager(remote progression.RemoteSync) {
	dir := getEnv("DATA_DIR", "./data")
	storage, err := progression.NewFileStorage(dir)
	if err != nil {
		log.Fatalf("Failed to initialize progression storage: %v", err)
	}

	storeManager = &StoreManager{
		stores:  make(map[uint]*progression.Store),
		storage: storage,
		remote:  remote,
		clock:   progression.SystemClock(),
	}
	log.Printf("✅ Progression storage ready at %s", dir)
}

// GetStoreManager returns the initialized manager.
func GetStoreManager() *StoreManager {
	if storeManager == nil {
		log.Fatal("Store manager not initialized. Call InitStoreManager() first.")
	}
	return storeManager
}

// Get returns the store for a user, creating it on first access.
func (m *StoreManager) Get(userID uint) *progression.Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.stores[userID]; ok {
		return st
	}
	st := progression.NewStore(strconv.FormatUint(uint64(userID), 10), m.storage, m.remote, m.clock)
	m.stores[userID] = st
	return st
}

// Loaded returns the stores currently resident in memory, for the
// background regen tick and rollover sweep.
func (m *StoreManager) Loaded() []*progression.Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*progression.Store, 0, len(m.stores))
	for _, st := range m.stores {
		out = append(out, st)
	}
	return out
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
