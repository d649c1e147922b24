package domain

import (
	"time"

	"github.com/google/uuid"
)

type LabOrderStatus string

const (
	LabOrderStatusAssigned   LabOrderStatus = "ASSIGNED"
	LabOrderStatusInProgress LabOrderStatus = "IN_PROGRESS"
	LabOrderStatusCompleted  LabOrderStatus = "COMPLETED"
	LabOrderStatusCancelled  LabOrderStatus = "CANCELLED"
)

// ActiveLabOrderStatuses are the states counted as in-flight work when
// reconciling a technician's workload against the order ledger.
func ActiveLabOrderStatuses() []LabOrderStatus {
	return []LabOrderStatus{LabOrderStatusAssigned, LabOrderStatusInProgress}
}

// LabOrder is a diagnostic test assignment owned by the order subsystem.
// This core only reads it: the order ledger is the authoritative source for
// workload reconciliation.
type LabOrder struct {
	ID           uuid.UUID      `json:"id"`
	TestID       string         `json:"testId"`
	TechnicianID uuid.UUID      `json:"technicianId"`
	Status       LabOrderStatus `json:"status"`
	CreatedAt    time.Time      `json:"createdAt"`
}
