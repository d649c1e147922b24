package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
)

// DoctorScheduleView is a doctor's schedule with the display fields the
// booking surfaces denormalize into each slot record.
type DoctorScheduleView struct {
	Doctor *domain.Doctor
	Slots  []domain.ScheduleSlot
}

type ScheduleUseCase interface {
	// CreateSlot persists a new slot after validation and conflict detection.
	// Only the owning doctor may create slots for a doctor id.
	CreateSlot(ctx context.Context, actor domain.Actor, doctorID uuid.UUID, slot domain.ScheduleSlot) (*domain.ScheduleSlot, error)

	ListSlots(ctx context.Context, doctorID uuid.UUID) (*DoctorScheduleView, error)

	// UpdateSlot applies a partial patch. Patches touching times or the day
	// key re-run conflict detection against the slot's siblings.
	UpdateSlot(ctx context.Context, actor domain.Actor, slotID uuid.UUID, patch domain.ScheduleSlotPatch) (*domain.ScheduleSlot, error)

	DeleteSlot(ctx context.Context, actor domain.Actor, slotID uuid.UUID) error
}
