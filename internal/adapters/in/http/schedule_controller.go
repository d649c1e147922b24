package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/json_types"
	"github.com/carewell-hms/allocation-service/internal/core/ports/in"
)

type ScheduleController struct {
	useCase in.ScheduleUseCase
}

func NewScheduleController(useCase in.ScheduleUseCase) *ScheduleController {
	return &ScheduleController{useCase: useCase}
}

func (c *ScheduleController) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/doctors/:doctorId/schedule", c.createSlot)
	api.GET("/doctors/:doctorId/schedule", c.listSlots)
	api.PATCH("/schedule/:slotId", c.updateSlot)
	api.DELETE("/schedule/:slotId", c.deleteSlot)
}

type CreateSlotRequest struct {
	DayOfWeek          string `json:"dayOfWeek"`
	Date               string `json:"date"`
	StartTime          string `json:"startTime" binding:"required"`
	EndTime            string `json:"endTime" binding:"required"`
	SlotDuration       int    `json:"slotDuration"`
	MaxPatientsPerSlot int    `json:"maxPatientsPerSlot"`
	BreakStart         string `json:"breakStart"`
	BreakEnd           string `json:"breakEnd"`
	IsActive           *bool  `json:"isActive"`
	Notes              string `json:"notes"`
}

type UpdateSlotRequest struct {
	DayOfWeek          *string `json:"dayOfWeek"`
	Date               *string `json:"date"`
	StartTime          *string `json:"startTime"`
	EndTime            *string `json:"endTime"`
	SlotDuration       *int    `json:"slotDuration"`
	MaxPatientsPerSlot *int    `json:"maxPatientsPerSlot"`
	BreakStart         *string `json:"breakStart"`
	BreakEnd           *string `json:"breakEnd"`
	IsActive           *bool   `json:"isActive"`
	Notes              *string `json:"notes"`
}

type slotResponse struct {
	ID                 uuid.UUID `json:"id"`
	DoctorID           uuid.UUID `json:"doctorId"`
	DoctorName         string    `json:"doctorName,omitempty"`
	Department         string    `json:"department,omitempty"`
	DayOfWeek          string    `json:"dayOfWeek,omitempty"`
	Date               string    `json:"date,omitempty"`
	StartTime          string    `json:"startTime"`
	EndTime            string    `json:"endTime"`
	SlotDuration       int       `json:"slotDuration"`
	MaxPatientsPerSlot int       `json:"maxPatientsPerSlot"`
	BreakStart         string    `json:"breakStart,omitempty"`
	BreakEnd           string    `json:"breakEnd,omitempty"`
	IsRecurring        bool      `json:"isRecurring"`
	IsActive           bool      `json:"isActive"`
	Notes              string    `json:"notes,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func newSlotResponse(slot domain.ScheduleSlot, doctor *domain.Doctor) slotResponse {
	resp := slotResponse{
		ID:                 slot.ID,
		DoctorID:           slot.DoctorID,
		DayOfWeek:          string(slot.DayOfWeek),
		Date:               string(slot.Date),
		StartTime:          string(slot.StartTime),
		EndTime:            string(slot.EndTime),
		SlotDuration:       slot.SlotDuration,
		MaxPatientsPerSlot: slot.MaxPatientsPerSlot,
		BreakStart:         string(slot.BreakStart),
		BreakEnd:           string(slot.BreakEnd),
		IsRecurring:        slot.IsRecurring,
		IsActive:           slot.IsActive,
		Notes:              slot.Notes,
		CreatedAt:          slot.CreatedAt,
		UpdatedAt:          slot.UpdatedAt,
	}
	if doctor != nil {
		resp.DoctorName = doctor.Name
		resp.Department = doctor.Department
	}
	return resp
}

func (c *ScheduleController) createSlot(ctx *gin.Context) {
	doctorID, err := uuid.Parse(ctx.Param("doctorId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id format"})
		return
	}

	var req CreateSlotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := slotFromCreateRequest(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	created, err := c.useCase.CreateSlot(ctx.Request.Context(), actorFromContext(ctx), doctorID, slot)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, newSlotResponse(*created, nil))
}

func (c *ScheduleController) listSlots(ctx *gin.Context) {
	doctorID, err := uuid.Parse(ctx.Param("doctorId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid doctor id format"})
		return
	}

	view, err := c.useCase.ListSlots(ctx.Request.Context(), doctorID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	slots := make([]slotResponse, 0, len(view.Slots))
	for _, slot := range view.Slots {
		slots = append(slots, newSlotResponse(slot, view.Doctor))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"doctorId": doctorID,
		"slots":    slots,
	})
}

func (c *ScheduleController) updateSlot(ctx *gin.Context) {
	slotID, err := uuid.Parse(ctx.Param("slotId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id format"})
		return
	}

	var req UpdateSlotRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch, err := patchFromUpdateRequest(req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	updated, err := c.useCase.UpdateSlot(ctx.Request.Context(), actorFromContext(ctx), slotID, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, newSlotResponse(*updated, nil))
}

func (c *ScheduleController) deleteSlot(ctx *gin.Context) {
	slotID, err := uuid.Parse(ctx.Param("slotId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid slot id format"})
		return
	}

	if err := c.useCase.DeleteSlot(ctx.Request.Context(), actorFromContext(ctx), slotID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func slotFromCreateRequest(req CreateSlotRequest) (domain.ScheduleSlot, error) {
	slot := domain.ScheduleSlot{
		SlotDuration:       req.SlotDuration,
		MaxPatientsPerSlot: req.MaxPatientsPerSlot,
		Notes:              req.Notes,
		IsActive:           true,
	}
	if req.IsActive != nil {
		slot.IsActive = *req.IsActive
	}

	if req.DayOfWeek != "" {
		day, ok := domain.ParseDayOfWeek(req.DayOfWeek)
		if !ok {
			return domain.ScheduleSlot{}, domain.NewValidationError("unknown dayOfWeek %q", req.DayOfWeek)
		}
		slot.DayOfWeek = day
	}
	if req.Date != "" {
		date, err := json_types.ParseDateString(req.Date)
		if err != nil {
			return domain.ScheduleSlot{}, domain.NewValidationError("invalid date: %v", err)
		}
		slot.Date = date
	}

	var err error
	if slot.StartTime, err = json_types.ParseClockTime(req.StartTime); err != nil {
		return domain.ScheduleSlot{}, domain.NewValidationError("invalid startTime: %v", err)
	}
	if slot.EndTime, err = json_types.ParseClockTime(req.EndTime); err != nil {
		return domain.ScheduleSlot{}, domain.NewValidationError("invalid endTime: %v", err)
	}
	if req.BreakStart != "" {
		if slot.BreakStart, err = json_types.ParseClockTime(req.BreakStart); err != nil {
			return domain.ScheduleSlot{}, domain.NewValidationError("invalid breakStart: %v", err)
		}
	}
	if req.BreakEnd != "" {
		if slot.BreakEnd, err = json_types.ParseClockTime(req.BreakEnd); err != nil {
			return domain.ScheduleSlot{}, domain.NewValidationError("invalid breakEnd: %v", err)
		}
	}

	return slot, nil
}

func patchFromUpdateRequest(req UpdateSlotRequest) (domain.ScheduleSlotPatch, error) {
	patch := domain.ScheduleSlotPatch{
		SlotDuration:       req.SlotDuration,
		MaxPatientsPerSlot: req.MaxPatientsPerSlot,
		IsActive:           req.IsActive,
		Notes:              req.Notes,
	}

	if req.DayOfWeek != nil {
		day, ok := domain.ParseDayOfWeek(*req.DayOfWeek)
		if !ok {
			return domain.ScheduleSlotPatch{}, domain.NewValidationError("unknown dayOfWeek %q", *req.DayOfWeek)
		}
		patch.DayOfWeek = &day
	}
	if req.Date != nil {
		date, err := json_types.ParseDateString(*req.Date)
		if err != nil {
			return domain.ScheduleSlotPatch{}, domain.NewValidationError("invalid date: %v", err)
		}
		patch.Date = &date
	}
	if req.StartTime != nil {
		start, err := json_types.ParseClockTime(*req.StartTime)
		if err != nil {
			return domain.ScheduleSlotPatch{}, domain.NewValidationError("invalid startTime: %v", err)
		}
		patch.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := json_types.ParseClockTime(*req.EndTime)
		if err != nil {
			return domain.ScheduleSlotPatch{}, domain.NewValidationError("invalid endTime: %v", err)
		}
		patch.EndTime = &end
	}
	if req.BreakStart != nil {
		breakStart, err := json_types.ParseClockTime(*req.BreakStart)
		if err != nil {
			return domain.ScheduleSlotPatch{}, domain.NewValidationError("invalid breakStart: %v", err)
		}
		patch.BreakStart = &breakStart
	}
	if req.BreakEnd != nil {
		breakEnd, err := json_types.ParseClockTime(*req.BreakEnd)
		if err != nil {
			return domain.ScheduleSlotPatch{}, domain.NewValidationError("invalid breakEnd: %v", err)
		}
		patch.BreakEnd = &breakEnd
	}

	return patch, nil
}
