package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/in"
)

type TechnicianController struct {
	useCase in.TechnicianUseCase
}

func NewTechnicianController(useCase in.TechnicianUseCase) *TechnicianController {
	return &TechnicianController{useCase: useCase}
}

func (c *TechnicianController) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/technicians/available", c.listAvailable)
	api.POST("/technicians/:technicianId/workload", c.updateWorkload)
}

type technicianResponse struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	Specialization   string    `json:"specialization"`
	PerformanceScore float64   `json:"performanceScore"`
	AvailableSlots   int       `json:"availableSlots"`

	// Raw workload fields are only exposed when includeWorkload is set.
	CurrentWorkload    *int `json:"currentWorkload,omitempty"`
	MaxConcurrentTests *int `json:"maxConcurrentTests,omitempty"`
}

func newTechnicianResponse(technician domain.LabTechnician, includeWorkload bool) technicianResponse {
	resp := technicianResponse{
		ID:               technician.ID,
		UserID:           technician.UserID,
		Specialization:   string(technician.Specialization),
		PerformanceScore: technician.PerformanceScore,
		AvailableSlots:   technician.AvailableSlots(),
	}
	if includeWorkload {
		workload := technician.CurrentWorkload
		capacity := technician.MaxConcurrentTests
		resp.CurrentWorkload = &workload
		resp.MaxConcurrentTests = &capacity
	}
	return resp
}

func (c *TechnicianController) listAvailable(ctx *gin.Context) {
	hint := ctx.Query("specialization")

	includeWorkload := false
	if raw, ok := ctx.GetQuery("includeWorkload"); ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(ctx, domain.NewValidationError("invalid includeWorkload value %q", raw))
			return
		}
		includeWorkload = parsed
	}

	availability, err := c.useCase.ListAvailable(ctx.Request.Context(), hint)
	if err != nil {
		respondError(ctx, err)
		return
	}

	technicians := make([]technicianResponse, 0, len(availability.Technicians))
	for _, technician := range availability.Technicians {
		technicians = append(technicians, newTechnicianResponse(technician, includeWorkload))
	}

	filter := gin.H{
		"resolved": availability.Resolution.Resolved,
		"source":   string(availability.Resolution.Source),
	}
	if availability.Resolution.Resolved {
		filter["specialization"] = string(availability.Resolution.Value)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"specializationFilter": filter,
		"technicians":          technicians,
	})
}

type WorkloadRequest struct {
	Action string `json:"action" binding:"required"`
}

type workloadResponse struct {
	ID                 uuid.UUID `json:"id"`
	CurrentWorkload    int       `json:"currentWorkload"`
	MaxConcurrentTests int       `json:"maxConcurrentTests"`
	AvailableSlots     int       `json:"availableSlots"`
	State              string    `json:"state"`
}

func (c *TechnicianController) updateWorkload(ctx *gin.Context) {
	technicianID, err := uuid.Parse(ctx.Param("technicianId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid technician id format"})
		return
	}

	var req WorkloadRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := actorFromContext(ctx)

	var technician *domain.LabTechnician
	switch req.Action {
	case "assign":
		technician, err = c.useCase.Assign(ctx.Request.Context(), actor, technicianID)
	case "complete":
		technician, err = c.useCase.Complete(ctx.Request.Context(), actor, technicianID)
	case "update":
		technician, err = c.useCase.Reconcile(ctx.Request.Context(), actor, technicianID)
	default:
		respondError(ctx, domain.NewValidationError("unknown workload action %q", req.Action))
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, workloadResponse{
		ID:                 technician.ID,
		CurrentWorkload:    technician.CurrentWorkload,
		MaxConcurrentTests: technician.MaxConcurrentTests,
		AvailableSlots:     technician.AvailableSlots(),
		State:              string(technician.WorkloadState()),
	})
}
