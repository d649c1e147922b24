package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/in"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

// updateRetryAttempts bounds the optimistic-concurrency retry loop on slot
// updates. Contention on a single doctor's schedule is low; three attempts
// is plenty before reporting the write as lost.
const updateRetryAttempts = 3

// ScheduleService owns a doctor's bookable time slots and enforces the
// no-overlap invariant among active slots sharing a day key.
type ScheduleService struct {
	schedulePort out.SchedulePort
	doctorPort   out.DoctorPort
	logger       out.LoggerPort
}

func NewScheduleService(
	schedulePort out.SchedulePort,
	doctorPort out.DoctorPort,
	logger out.LoggerPort,
) *ScheduleService {
	return &ScheduleService{
		schedulePort: schedulePort,
		doctorPort:   doctorPort,
		logger:       logger.WithModule("ScheduleService"),
	}
}

func (s *ScheduleService) CreateSlot(ctx context.Context, actor domain.Actor, doctorID uuid.UUID, slot domain.ScheduleSlot) (*domain.ScheduleSlot, error) {
	if err := s.checkOwnership(actor, doctorID); err != nil {
		return nil, err
	}

	slot.ID = uuid.New()
	slot.DoctorID = doctorID
	slot.ApplyDefaults()

	if err := slot.Validate(); err != nil {
		s.logger.Warn("schedule.create.invalid", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	now := time.Now().UTC()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	slot.Version = 1

	// The overlap check and the insert run as one atomic operation at the
	// store layer, so two concurrent creates for the same doctor and day
	// cannot both pass the check.
	conflicting, err := s.schedulePort.CreateSlotIfFree(ctx, slot)
	if err != nil {
		s.logger.Error("schedule.create.store_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, domain.NewTransientError("failed to persist slot", err)
	}
	if conflicting != nil {
		s.logger.Info("schedule.create.conflict", out.LogFields{
			"doctorId":          doctorID,
			"conflictingSlotId": conflicting.ID,
			"startTime":         slot.StartTime,
			"endTime":           slot.EndTime,
		})
		return nil, domain.NewScheduleConflictError(*conflicting)
	}

	s.logger.Info("schedule.create.success", out.LogFields{
		"doctorId":  doctorID,
		"slotId":    slot.ID,
		"startTime": slot.StartTime,
		"endTime":   slot.EndTime,
	})

	return &slot, nil
}

func (s *ScheduleService) ListSlots(ctx context.Context, doctorID uuid.UUID) (*in.DoctorScheduleView, error) {
	slots, err := s.schedulePort.ListSlots(ctx, doctorID)
	if err != nil {
		return nil, domain.NewTransientError("failed to load slots", err)
	}

	// Doctor display fields are best-effort: a missing doctor record still
	// returns the slots themselves.
	doctor, err := s.doctorPort.GetDoctor(ctx, doctorID)
	if err != nil {
		s.logger.Warn("schedule.list.doctor_lookup_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		doctor = nil
	}

	return &in.DoctorScheduleView{Doctor: doctor, Slots: slots}, nil
}

func (s *ScheduleService) UpdateSlot(ctx context.Context, actor domain.Actor, slotID uuid.UUID, patch domain.ScheduleSlotPatch) (*domain.ScheduleSlot, error) {
	for attempt := 0; attempt < updateRetryAttempts; attempt++ {
		slot, err := s.loadOwnedSlot(ctx, actor, slotID)
		if err != nil {
			return nil, err
		}

		updated := *slot
		updated.Apply(patch)

		if err := updated.Validate(); err != nil {
			return nil, err
		}

		updated.UpdatedAt = time.Now().UTC()
		updated.Version = slot.Version + 1

		var applied bool
		if patch.ChangesTiming() && updated.IsActive {
			// A patch that moves the interval or the day key re-passes
			// conflict detection atomically with the write, under the same
			// store-level serialization as create. A service-side sibling
			// scan would leave a window for a concurrent create to slip in
			// before the version-checked write.
			conflicting, ok, err := s.schedulePort.UpdateSlotIfFree(ctx, updated, slot.Version)
			if err != nil {
				return nil, domain.NewTransientError("failed to persist slot update", err)
			}
			if conflicting != nil {
				s.logger.Info("schedule.update.conflict", out.LogFields{
					"slotId":            updated.ID,
					"conflictingSlotId": conflicting.ID,
				})
				return nil, domain.NewScheduleConflictError(*conflicting)
			}
			applied = ok
		} else {
			applied, err = s.schedulePort.UpdateSlotVersioned(ctx, updated, slot.Version)
			if err != nil {
				return nil, domain.NewTransientError("failed to persist slot update", err)
			}
		}
		if applied {
			s.logger.Info("schedule.update.success", out.LogFields{
				"slotId":  slotID,
				"version": updated.Version,
			})
			return &updated, nil
		}

		s.logger.Debug("schedule.update.version_conflict", out.LogFields{
			"slotId":  slotID,
			"attempt": attempt + 1,
		})
	}

	return nil, domain.NewTransientError("slot update lost to concurrent writes", nil)
}

func (s *ScheduleService) DeleteSlot(ctx context.Context, actor domain.Actor, slotID uuid.UUID) error {
	if _, err := s.loadOwnedSlot(ctx, actor, slotID); err != nil {
		return err
	}

	if err := s.schedulePort.DeleteSlot(ctx, slotID); err != nil {
		// A concurrent delete can win between the ownership load and the
		// store call; the resulting NotFound is the truthful answer, not an
		// infrastructure failure.
		var domainErr *domain.Error
		if errors.As(err, &domainErr) {
			return err
		}
		return domain.NewTransientError("failed to delete slot", err)
	}

	s.logger.Info("schedule.delete.success", out.LogFields{
		"slotId": slotID,
	})
	return nil
}

func (s *ScheduleService) checkOwnership(actor domain.Actor, doctorID uuid.UUID) error {
	if actor.Role != domain.RoleDoctor {
		return domain.NewForbiddenError("only doctors may manage schedules")
	}
	if actor.ID != doctorID {
		return domain.NewForbiddenError("slot belongs to another doctor")
	}
	return nil
}

func (s *ScheduleService) loadOwnedSlot(ctx context.Context, actor domain.Actor, slotID uuid.UUID) (*domain.ScheduleSlot, error) {
	slot, err := s.schedulePort.GetSlot(ctx, slotID)
	if err != nil {
		return nil, domain.NewTransientError("failed to load slot", err)
	}
	if slot == nil {
		return nil, domain.NewNotFoundError("schedule slot", slotID)
	}
	if err := s.checkOwnership(actor, slot.DoctorID); err != nil {
		return nil, err
	}
	return slot, nil
}

