// Package adapters provides concrete implementations of snapshot storage
package adapters

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/pkg/serialization"
)

// InMemorySaver implements snapshot.Saver with thread-safe in-memory storage
// PRINCIPLES:
// - KISS: Simple map with proper concurrency
// - SRP: Single responsibility for in-memory snapshot storage
// - DIP: Implements snapshot.Saver interface
type InMemorySaver struct {
	mu         sync.RWMutex
	entries    map[string]*snapshotEntry
	defaultTTL time.Duration
	serializer *serialization.Serializer

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	cleanupOnce   sync.Once
}

// InMemoryConfig holds configuration for InMemorySaver
type InMemoryConfig struct {
	DefaultTTL      time.Duration             // TTL for stored snapshots
	CleanupInterval time.Duration             // Sweep interval for expired items
	Serializer      *serialization.Serializer // Custom serializer (optional)
}

// snapshotEntry holds the serialized snapshot plus bookkeeping
type snapshotEntry struct {
	exerciseID string
	takenAt    time.Time
	data       []byte
	expiresAt  time.Time
}

// NewInMemorySaver creates a new in-memory snapshot saver
func NewInMemorySaver(config InMemoryConfig) *InMemorySaver {
	if config.DefaultTTL == 0 {
		config.DefaultTTL = 24 * time.Hour
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	if config.Serializer == nil {
		config.Serializer = serialization.DefaultSerializer()
	}

	saver := &InMemorySaver{
		entries:     make(map[string]*snapshotEntry),
		defaultTTL:  config.DefaultTTL,
		serializer:  config.Serializer,
		stopCleanup: make(chan struct{}),
	}

	saver.startCleanup(config.CleanupInterval)

	return saver
}

// NewSaver creates an InMemorySaver with default configuration
func NewSaver() *InMemorySaver {
	return NewInMemorySaver(InMemoryConfig{})
}

// Save serializes and stores a snapshot
func (s *InMemorySaver) Save(_ context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("snapshot validation failed: %w", err)
	}

	data, err := s.serializer.Serialize(snap)
	if err != nil {
		return fmt.Errorf("snapshot serialization failed: %w", err)
	}

	now := time.Now()
	s.mu.Lock()
	s.entries[snap.ID] = &snapshotEntry{
		exerciseID: snap.ExerciseID,
		takenAt:    snap.TakenAt,
		data:       data,
		expiresAt:  now.Add(s.defaultTTL),
	}
	s.mu.Unlock()

	return nil
}

// Load retrieves a snapshot by ID
func (s *InMemorySaver) Load(_ context.Context, id string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	entry, exists := s.entries[id]
	s.mu.RUnlock()
	if !exists || time.Now().After(entry.expiresAt) {
		return nil, snapshot.ErrSnapshotNotFound
	}

	var snap snapshot.Snapshot
	if err := s.serializer.Deserialize(entry.data, &snap); err != nil {
		return nil, fmt.Errorf("snapshot deserialization failed: %w", err)
	}
	return &snap, nil
}

// LoadLatest retrieves the most recent snapshot for an exercise
func (s *InMemorySaver) LoadLatest(ctx context.Context, exerciseID string) (*snapshot.Snapshot, error) {
	s.mu.RLock()
	var (
		latestID string
		latestAt time.Time
	)
	now := time.Now()
	for id, entry := range s.entries {
		if entry.exerciseID != exerciseID || now.After(entry.expiresAt) {
			continue
		}
		if latestID == "" || entry.takenAt.After(latestAt) {
			latestID = id
			latestAt = entry.takenAt
		}
	}
	s.mu.RUnlock()

	if latestID == "" {
		return nil, snapshot.ErrSnapshotNotFound
	}
	return s.Load(ctx, latestID)
}

// List returns snapshots matching the filter
func (s *InMemorySaver) List(_ context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter validation failed: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var results []*snapshot.Snapshot
	matchCount := 0
	for _, entry := range s.entries {
		if now.After(entry.expiresAt) {
			continue
		}
		if filter.ExerciseID != "" && entry.exerciseID != filter.ExerciseID {
			continue
		}
		if filter.Since != nil && entry.takenAt.Before(*filter.Since) {
			continue
		}
		if filter.Before != nil && !entry.takenAt.Before(*filter.Before) {
			continue
		}
		if filter.Offset > 0 && matchCount < filter.Offset {
			matchCount++
			continue
		}
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}

		var snap snapshot.Snapshot
		if err := s.serializer.Deserialize(entry.data, &snap); err != nil {
			return nil, fmt.Errorf("snapshot deserialization failed: %w", err)
		}
		results = append(results, &snap)
		matchCount++
	}

	return results, nil
}

// Delete removes a snapshot by ID
func (s *InMemorySaver) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[id]; !exists {
		return snapshot.ErrSnapshotNotFound
	}
	delete(s.entries, id)
	return nil
}

// Close stops the cleanup goroutine
func (s *InMemorySaver) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
		}
	})
	return nil
}

func (s *InMemorySaver) startCleanup(interval time.Duration) {
	s.cleanupTicker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.cleanupExpired()
			case <-s.stopCleanup:
				return
			}
		}
	}()
}

func (s *InMemorySaver) cleanupExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}
}
