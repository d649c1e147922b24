package out

import (
	"context"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
)

// SchedulePort is the document-store contract for schedule slots. Lookups
// return (nil, nil) when the record does not exist; only infrastructure
// failures surface as errors.
type SchedulePort interface {
	GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.ScheduleSlot, error)
	ListSlots(ctx context.Context, doctorID uuid.UUID) ([]domain.ScheduleSlot, error)

	// CreateSlotIfFree atomically checks the no-overlap invariant and inserts.
	// It returns the conflicting slot when the check fails, nil when the slot
	// was persisted. The check-and-insert must not interleave with concurrent
	// writers of the same doctor and day group.
	CreateSlotIfFree(ctx context.Context, slot domain.ScheduleSlot) (*domain.ScheduleSlot, error)

	// UpdateSlotVersioned persists the slot only if the stored version still
	// equals expectedVersion. Returns false when a concurrent write won. For
	// patches that cannot move the slot's interval or day key.
	UpdateSlotVersioned(ctx context.Context, slot domain.ScheduleSlot, expectedVersion int64) (bool, error)

	// UpdateSlotIfFree re-checks the no-overlap invariant against the slot's
	// day-group siblings and applies the versioned update as one atomic
	// operation, under the same serialization as CreateSlotIfFree. Returns the
	// conflicting slot when the check fails, applied=false when the version
	// race was lost.
	UpdateSlotIfFree(ctx context.Context, slot domain.ScheduleSlot, expectedVersion int64) (*domain.ScheduleSlot, bool, error)

	DeleteSlot(ctx context.Context, slotID uuid.UUID) error
}

// TechnicianPort is the document-store contract for the technician pool.
// The two conditional mutations are the only writers of currentWorkload,
// and both are single guarded operations at the store layer.
type TechnicianPort interface {
	GetTechnician(ctx context.Context, technicianID uuid.UUID) (*domain.LabTechnician, error)

	// ListAvailableTechnicians returns technicians with isAvailable=true and
	// spare capacity, filtered by specialization when one is given.
	ListAvailableTechnicians(ctx context.Context, specialization *domain.Specialization) ([]domain.LabTechnician, error)

	// IncrementWorkload applies currentWorkload += 1 only while
	// currentWorkload < maxConcurrentTests. Returns false, leaving the record
	// unchanged, when the technician is at capacity.
	IncrementWorkload(ctx context.Context, technicianID uuid.UUID) (bool, error)

	// DecrementWorkload applies currentWorkload -= 1 only while
	// currentWorkload > 0. Returns false at the floor; never goes negative.
	DecrementWorkload(ctx context.Context, technicianID uuid.UUID) (bool, error)

	SetWorkload(ctx context.Context, technicianID uuid.UUID, workload int) error

	// CountActiveOrders counts in-flight lab orders for the technician in the
	// authoritative order ledger.
	CountActiveOrders(ctx context.Context, technicianID uuid.UUID) (int, error)
}

// DoctorPort reads the display fields denormalized into schedule responses.
type DoctorPort interface {
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error)
}
