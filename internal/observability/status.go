package observability

import (
	"sync"
	"time"
)

type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhasePlanning  Phase = "PLANNING"
	PhaseExecuting Phase = "EXECUTING"
)

// SystemStatus tracks the single in-flight run. The process handles one
// run at a time, so one global record is enough.
type SystemStatus struct {
	mu          sync.RWMutex
	CurrentRun  Phase
	ActiveQuery string
	LastUpdate  time.Time
}

var globalStatus = &SystemStatus{
	CurrentRun: PhaseIdle,
	LastUpdate: time.Now(),
}

// SetStatus updates the global run status.
func SetStatus(phase Phase, query string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.CurrentRun = phase
	globalStatus.ActiveQuery = query
	globalStatus.LastUpdate = time.Now()
}

// GetStatus retrieves a copy of the global run status.
func GetStatus() (Phase, string, time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.CurrentRun, globalStatus.ActiveQuery, globalStatus.LastUpdate
}
