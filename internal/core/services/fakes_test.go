package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields)            {}
func (nopLogger) Info(string, out.LogFields)             {}
func (nopLogger) Warn(string, out.LogFields)             {}
func (nopLogger) Error(string, out.LogFields)            {}
func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort        { return l }

// fakeScheduleStore implements the schedule port contract in memory,
// including the check-and-insert and versioned-update semantics.
type fakeScheduleStore struct {
	slots map[uuid.UUID]domain.ScheduleSlot
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{slots: make(map[uuid.UUID]domain.ScheduleSlot)}
}

func (f *fakeScheduleStore) GetSlot(_ context.Context, slotID uuid.UUID) (*domain.ScheduleSlot, error) {
	slot, ok := f.slots[slotID]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (f *fakeScheduleStore) ListSlots(_ context.Context, doctorID uuid.UUID) ([]domain.ScheduleSlot, error) {
	var result []domain.ScheduleSlot
	for _, slot := range f.slots {
		if slot.DoctorID == doctorID {
			result = append(result, slot)
		}
	}
	return result, nil
}

// overlappingSibling scans the slot's active day-group siblings, mirroring
// the store adapter's in-transaction overlap check.
func (f *fakeScheduleStore) overlappingSibling(slot domain.ScheduleSlot) *domain.ScheduleSlot {
	for _, other := range f.slots {
		if other.ID == slot.ID || other.DoctorID != slot.DoctorID || !other.IsActive {
			continue
		}
		if other.DayKey() == slot.DayKey() && other.Overlaps(slot) {
			conflicting := other
			return &conflicting
		}
	}
	return nil
}

func (f *fakeScheduleStore) CreateSlotIfFree(_ context.Context, slot domain.ScheduleSlot) (*domain.ScheduleSlot, error) {
	if conflicting := f.overlappingSibling(slot); conflicting != nil {
		return conflicting, nil
	}
	f.slots[slot.ID] = slot
	return nil, nil
}

func (f *fakeScheduleStore) UpdateSlotVersioned(_ context.Context, slot domain.ScheduleSlot, expectedVersion int64) (bool, error) {
	stored, ok := f.slots[slot.ID]
	if !ok || stored.Version != expectedVersion {
		return false, nil
	}
	f.slots[slot.ID] = slot
	return true, nil
}

func (f *fakeScheduleStore) UpdateSlotIfFree(ctx context.Context, slot domain.ScheduleSlot, expectedVersion int64) (*domain.ScheduleSlot, bool, error) {
	if conflicting := f.overlappingSibling(slot); conflicting != nil {
		return conflicting, false, nil
	}
	applied, err := f.UpdateSlotVersioned(ctx, slot, expectedVersion)
	return nil, applied, err
}

func (f *fakeScheduleStore) DeleteSlot(_ context.Context, slotID uuid.UUID) error {
	if _, ok := f.slots[slotID]; !ok {
		return domain.NewNotFoundError("schedule slot", slotID)
	}
	delete(f.slots, slotID)
	return nil
}

type fakeDoctorStore struct {
	doctors map[uuid.UUID]domain.Doctor
}

func newFakeDoctorStore() *fakeDoctorStore {
	return &fakeDoctorStore{doctors: make(map[uuid.UUID]domain.Doctor)}
}

func (f *fakeDoctorStore) GetDoctor(_ context.Context, doctorID uuid.UUID) (*domain.Doctor, error) {
	doctor, ok := f.doctors[doctorID]
	if !ok {
		return nil, nil
	}
	return &doctor, nil
}

// fakeTechnicianStore keeps insertion order in listings so the service's
// ordering contract is what the tests observe, not a store-side sort.
type fakeTechnicianStore struct {
	technicians  map[uuid.UUID]*domain.LabTechnician
	order        []uuid.UUID
	activeOrders map[uuid.UUID]int
}

func newFakeTechnicianStore() *fakeTechnicianStore {
	return &fakeTechnicianStore{
		technicians:  make(map[uuid.UUID]*domain.LabTechnician),
		activeOrders: make(map[uuid.UUID]int),
	}
}

func (f *fakeTechnicianStore) add(technician domain.LabTechnician) {
	f.technicians[technician.ID] = &technician
	f.order = append(f.order, technician.ID)
}

func (f *fakeTechnicianStore) GetTechnician(_ context.Context, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	technician, ok := f.technicians[technicianID]
	if !ok {
		return nil, nil
	}
	copied := *technician
	return &copied, nil
}

func (f *fakeTechnicianStore) ListAvailableTechnicians(_ context.Context, specialization *domain.Specialization) ([]domain.LabTechnician, error) {
	var result []domain.LabTechnician
	for _, id := range f.order {
		technician := f.technicians[id]
		if !technician.IsAvailable || !technician.HasCapacity() {
			continue
		}
		if specialization != nil && technician.Specialization != *specialization {
			continue
		}
		result = append(result, *technician)
	}
	return result, nil
}

func (f *fakeTechnicianStore) IncrementWorkload(_ context.Context, technicianID uuid.UUID) (bool, error) {
	technician, ok := f.technicians[technicianID]
	if !ok {
		return false, domain.NewNotFoundError("lab technician", technicianID)
	}
	if !technician.HasCapacity() {
		return false, nil
	}
	technician.CurrentWorkload++
	return true, nil
}

func (f *fakeTechnicianStore) DecrementWorkload(_ context.Context, technicianID uuid.UUID) (bool, error) {
	technician, ok := f.technicians[technicianID]
	if !ok {
		return false, domain.NewNotFoundError("lab technician", technicianID)
	}
	if technician.CurrentWorkload <= 0 {
		return false, nil
	}
	technician.CurrentWorkload--
	return true, nil
}

func (f *fakeTechnicianStore) SetWorkload(_ context.Context, technicianID uuid.UUID, workload int) error {
	technician, ok := f.technicians[technicianID]
	if !ok {
		return domain.NewNotFoundError("lab technician", technicianID)
	}
	technician.CurrentWorkload = workload
	return nil
}

func (f *fakeTechnicianStore) CountActiveOrders(_ context.Context, technicianID uuid.UUID) (int, error) {
	return f.activeOrders[technicianID], nil
}

type fakeCatalog struct {
	categories map[string]string
	err        error
	calls      int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{categories: make(map[string]string)}
}

func (f *fakeCatalog) GetTestCategory(_ context.Context, testID string) (string, bool, error) {
	f.calls++
	if f.err != nil {
		return "", false, f.err
	}
	category, ok := f.categories[testID]
	return category, ok, nil
}

type fakeCache struct {
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) GetTestCategory(_ context.Context, testID string) (string, bool) {
	category, ok := f.entries[testID]
	return category, ok
}

func (f *fakeCache) StoreTestCategory(_ context.Context, testID, category string) {
	f.entries[testID] = category
}

func (f *fakeCache) InvalidateTestCategory(_ context.Context, testID string) {
	delete(f.entries, testID)
}
