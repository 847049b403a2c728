package store

import (
	"errors"
	"sync"
	"time"

	"github.com/agrodecision/agrodecision/internal/enviro"
)

var (
	// ErrNotFound is returned when no reading is available for a coordinate.
	ErrNotFound = errors.New("no reading for coordinate")
)

// readingHistory holds a time-ordered list of readings for one coordinate.
type readingHistory struct {
	readings []enviro.Reading
}

// MemoryStore is a concurrency-safe in-memory cache of environmental
// readings, keyed by rounded coordinate. Repeated analyses of the same point
// reuse a recent reading instead of hammering the providers.
type MemoryStore struct {
	mu sync.RWMutex

	data map[string]*readingHistory

	maxHistory int           // max readings kept per coordinate (<=0 = unlimited)
	maxAge     time.Duration // max age of kept readings (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*readingHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save appends a reading for its coordinate and enforces retention.
func (s *MemoryStore) Save(reading enviro.Reading) {
	key := reading.Coordinate.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &readingHistory{}
		s.data[key] = history
	}

	history.readings = append(history.readings, reading)

	if s.maxHistory > 0 && len(history.readings) > s.maxHistory {
		over := len(history.readings) - s.maxHistory
		history.readings = history.readings[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.readings); i++ {
			if !history.readings[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history.readings) {
			history.readings = history.readings[i:]
		}
	}
}

// Latest returns the most recent reading for the coordinate.
func (s *MemoryStore) Latest(coord enviro.Coordinate) (enviro.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coord.Key()]
	if !ok || len(history.readings) == 0 {
		return enviro.Reading{}, ErrNotFound
	}
	return history.readings[len(history.readings)-1], nil
}

// Fresh returns the most recent reading for the coordinate if it is younger
// than maxAge.
func (s *MemoryStore) Fresh(coord enviro.Coordinate, maxAge time.Duration) (enviro.Reading, error) {
	reading, err := s.Latest(coord)
	if err != nil {
		return enviro.Reading{}, err
	}
	if maxAge > 0 && time.Since(reading.FetchedAt) > maxAge {
		return enviro.Reading{}, ErrNotFound
	}
	return reading, nil
}

// Range returns all readings for a coordinate between from and to, inclusive.
func (s *MemoryStore) Range(coord enviro.Coordinate, from, to time.Time) ([]enviro.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coord.Key()]
	if !ok || len(history.readings) == 0 {
		return nil, ErrNotFound
	}

	var result []enviro.Reading
	for _, r := range history.readings {
		if !r.FetchedAt.Before(from) && !r.FetchedAt.After(to) {
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
