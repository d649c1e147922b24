package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkloadState is the two-state machine over a technician's workload
// counter: assign is enabled only while UNDERLOADED, complete in either
// state.
type WorkloadState string

const (
	WorkloadStateUnderloaded WorkloadState = "UNDERLOADED"
	WorkloadStateFull        WorkloadState = "FULL"
)

type LabTechnician struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             uuid.UUID      `json:"userId"`
	Specialization     Specialization `json:"specialization"`
	IsAvailable        bool           `json:"isAvailable"`
	CurrentWorkload    int            `json:"currentWorkload"`
	MaxConcurrentTests int            `json:"maxConcurrentTests"`
	PerformanceScore   float64        `json:"performanceScore"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

func (t LabTechnician) HasCapacity() bool {
	return t.CurrentWorkload < t.MaxConcurrentTests
}

// AvailableSlots is the remaining simultaneous-test headroom exposed on the
// availability surface.
func (t LabTechnician) AvailableSlots() int {
	remaining := t.MaxConcurrentTests - t.CurrentWorkload
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (t LabTechnician) WorkloadState() WorkloadState {
	if t.HasCapacity() {
		return WorkloadStateUnderloaded
	}
	return WorkloadStateFull
}

// ClampWorkload bounds an externally computed workload to the technician's
// valid range. Reconcile uses it so the workload invariant holds even when
// the authoritative order count exceeds capacity (pre-existing drift).
func (t LabTechnician) ClampWorkload(workload int) int {
	if workload < 0 {
		return 0
	}
	if workload > t.MaxConcurrentTests {
		return t.MaxConcurrentTests
	}
	return workload
}
