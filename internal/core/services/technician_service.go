package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/in"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

// TechnicianService owns the lab-technician pool: availability listing and
// the guarded workload transitions. currentWorkload is written through the
// store port's conditional operations only; no other code path touches it.
type TechnicianService struct {
	technicianPort out.TechnicianPort
	catalogPort    out.CatalogPort
	cachePort      out.CachePort
	logger         out.LoggerPort
}

func NewTechnicianService(
	technicianPort out.TechnicianPort,
	catalogPort out.CatalogPort,
	cachePort out.CachePort,
	logger out.LoggerPort,
) *TechnicianService {
	return &TechnicianService{
		technicianPort: technicianPort,
		catalogPort:    catalogPort,
		cachePort:      cachePort,
		logger:         logger.WithModule("TechnicianService"),
	}
}

func (s *TechnicianService) ListAvailable(ctx context.Context, specializationHint string) (*in.TechnicianAvailability, error) {
	resolution := s.resolveSpecialization(ctx, specializationHint)

	var filter *domain.Specialization
	if resolution.Resolved {
		filter = &resolution.Value
	}

	technicians, err := s.technicianPort.ListAvailableTechnicians(ctx, filter)
	if err != nil {
		return nil, domain.NewTransientError("failed to load technicians", err)
	}

	// Ordering contract: least-loaded first, ties broken by performance.
	// The store adapter sorts too, but the contract is enforced here so it
	// holds for every port implementation.
	sort.SliceStable(technicians, func(i, j int) bool {
		if technicians[i].CurrentWorkload != technicians[j].CurrentWorkload {
			return technicians[i].CurrentWorkload < technicians[j].CurrentWorkload
		}
		return technicians[i].PerformanceScore > technicians[j].PerformanceScore
	})

	s.logger.Debug("technicians.list.success", out.LogFields{
		"hint":     specializationHint,
		"resolved": resolution.Resolved,
		"source":   resolution.Source,
		"count":    len(technicians),
	})

	return &in.TechnicianAvailability{Technicians: technicians, Resolution: resolution}, nil
}

// resolveSpecialization runs the hint resolution chain: diagnostic-test
// catalog lookup, then the raw hint itself, then no filter at all. Every
// step is a soft failure; an unresolvable hint widens the search instead of
// rejecting the request.
func (s *TechnicianService) resolveSpecialization(ctx context.Context, hint string) domain.SpecializationResolution {
	if hint == "" {
		return domain.UnresolvedSpecialization()
	}

	// A hint that already is an enumeration member needs no catalog trip.
	if specialization, ok := domain.ParseSpecialization(hint); ok {
		return domain.ResolvedSpecialization(specialization, domain.ResolutionSourceDirect)
	}

	category, found := s.lookupTestCategory(ctx, hint)
	if found {
		if specialization, ok := domain.ParseSpecialization(category); ok {
			return domain.ResolvedSpecialization(specialization, domain.ResolutionSourceCatalog)
		}
		// Category exists but is not a known specialization: drop the filter.
		s.logger.Warn("technicians.resolve.unknown_category", out.LogFields{
			"hint":     hint,
			"category": category,
		})
		return domain.UnresolvedSpecialization()
	}

	// Raw-hint fallback. The direct parse above already failed for this
	// string, so this resolves only for hints that gained meaning via
	// normalization; otherwise the filter is dropped.
	if specialization, ok := domain.ParseSpecialization(hint); ok {
		return domain.ResolvedSpecialization(specialization, domain.ResolutionSourceFallback)
	}

	s.logger.Debug("technicians.resolve.dropped", out.LogFields{
		"hint": hint,
	})
	return domain.UnresolvedSpecialization()
}

func (s *TechnicianService) lookupTestCategory(ctx context.Context, testID string) (string, bool) {
	if s.cachePort != nil {
		if category, ok := s.cachePort.GetTestCategory(ctx, testID); ok {
			return category, true
		}
	}

	category, found, err := s.catalogPort.GetTestCategory(ctx, testID)
	if err != nil {
		// Catalog outage degrades to the fallback branch rather than
		// failing the listing.
		s.logger.Warn("technicians.resolve.catalog_failed", out.LogFields{
			"testId": testID,
			"error":  err.Error(),
		})
		return "", false
	}
	if !found {
		return "", false
	}

	if s.cachePort != nil {
		s.cachePort.StoreTestCategory(ctx, testID, category)
	}
	return category, true
}

func (s *TechnicianService) Assign(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	if !actor.CanManageWorkload() {
		return nil, domain.NewForbiddenError("role may not manage technician workload")
	}

	// Single conditional increment at the store layer: two racing assigns
	// cannot both pass the capacity guard.
	applied, err := s.technicianPort.IncrementWorkload(ctx, technicianID)
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			return nil, err
		}
		return nil, domain.NewTransientError("failed to assign technician", err)
	}

	technician, err := s.loadTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	if !applied {
		s.logger.Info("technicians.assign.capacity_exceeded", out.LogFields{
			"technicianId":    technicianID,
			"currentWorkload": technician.CurrentWorkload,
		})
		return nil, domain.NewCapacityExceededError(technicianID, technician.CurrentWorkload, technician.MaxConcurrentTests)
	}

	s.logger.Info("technicians.assign.success", out.LogFields{
		"technicianId":    technicianID,
		"currentWorkload": technician.CurrentWorkload,
		"state":           technician.WorkloadState(),
	})
	return technician, nil
}

func (s *TechnicianService) Complete(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	if !actor.CanManageWorkload() {
		return nil, domain.NewForbiddenError("role may not manage technician workload")
	}

	applied, err := s.technicianPort.DecrementWorkload(ctx, technicianID)
	if err != nil {
		if domain.IsKind(err, domain.ErrorKindNotFound) {
			return nil, err
		}
		return nil, domain.NewTransientError("failed to complete assignment", err)
	}
	if !applied {
		// Already at zero: completing more times than assigned is not an
		// error, the counter just stays floored.
		s.logger.Debug("technicians.complete.already_zero", out.LogFields{
			"technicianId": technicianID,
		})
	}

	technician, err := s.loadTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("technicians.complete.success", out.LogFields{
		"technicianId":    technicianID,
		"currentWorkload": technician.CurrentWorkload,
	})
	return technician, nil
}

func (s *TechnicianService) Reconcile(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	if !actor.CanManageWorkload() {
		return nil, domain.NewForbiddenError("role may not manage technician workload")
	}

	technician, err := s.loadTechnician(ctx, technicianID)
	if err != nil {
		return nil, err
	}

	inFlight, err := s.technicianPort.CountActiveOrders(ctx, technicianID)
	if err != nil {
		return nil, domain.NewTransientError("failed to count in-flight orders", err)
	}

	workload := technician.ClampWorkload(inFlight)
	if err := s.technicianPort.SetWorkload(ctx, technicianID, workload); err != nil {
		return nil, domain.NewTransientError("failed to persist reconciled workload", err)
	}

	s.logger.Info("technicians.reconcile.success", out.LogFields{
		"technicianId": technicianID,
		"previous":     technician.CurrentWorkload,
		"inFlight":     inFlight,
		"workload":     workload,
	})

	technician.CurrentWorkload = workload
	return technician, nil
}

func (s *TechnicianService) loadTechnician(ctx context.Context, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	technician, err := s.technicianPort.GetTechnician(ctx, technicianID)
	if err != nil {
		return nil, domain.NewTransientError("failed to load technician", err)
	}
	if technician == nil {
		return nil, domain.NewNotFoundError("lab technician", technicianID)
	}
	return technician, nil
}
