package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
)

// TechnicianAvailability is the availability listing plus the explicit
// outcome of the specialization-hint resolution, so callers can tell "no
// filter applied" apart from "filter matched".
type TechnicianAvailability struct {
	Technicians []domain.LabTechnician
	Resolution  domain.SpecializationResolution
}

type TechnicianUseCase interface {
	// ListAvailable returns available technicians with spare capacity,
	// ordered by currentWorkload ascending, ties broken by performanceScore
	// descending. The ordering is a contract: first result is the
	// least-loaded, most-capable candidate.
	ListAvailable(ctx context.Context, specializationHint string) (*TechnicianAvailability, error)

	// Assign increments the technician's workload under the capacity guard.
	Assign(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error)

	// Complete decrements the workload, floored at zero.
	Complete(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error)

	// Reconcile recomputes the workload from the authoritative count of
	// in-flight lab orders, correcting drift from missed Complete calls.
	Reconcile(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error)
}
