package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/in"
)

type fakeTechnicianUseCase struct {
	listAvailable func(ctx context.Context, hint string) (*in.TechnicianAvailability, error)
	assign        func(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error)
	complete      func(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error)
	reconcile     func(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error)
}

func (f *fakeTechnicianUseCase) ListAvailable(ctx context.Context, hint string) (*in.TechnicianAvailability, error) {
	return f.listAvailable(ctx, hint)
}

func (f *fakeTechnicianUseCase) Assign(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	return f.assign(ctx, actor, technicianID)
}

func (f *fakeTechnicianUseCase) Complete(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	return f.complete(ctx, actor, technicianID)
}

func (f *fakeTechnicianUseCase) Reconcile(ctx context.Context, actor domain.Actor, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	return f.reconcile(ctx, actor, technicianID)
}

func technicianRouter(useCase in.TechnicianUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", ActorContext())
	NewTechnicianController(useCase).RegisterRoutes(api)
	return router
}

func withActor(req *http.Request, actor domain.Actor) *http.Request {
	req.Header.Set("X-Actor-Id", actor.ID.String())
	req.Header.Set("X-Actor-Role", string(actor.Role))
	return req
}

func TestListAvailableResponseShape(t *testing.T) {
	tech := domain.LabTechnician{
		ID:                 uuid.New(),
		UserID:             uuid.New(),
		Specialization:     domain.SpecializationHematology,
		CurrentWorkload:    2,
		MaxConcurrentTests: 5,
		PerformanceScore:   4.5,
	}
	useCase := &fakeTechnicianUseCase{
		listAvailable: func(_ context.Context, hint string) (*in.TechnicianAvailability, error) {
			if hint != "hematology" {
				t.Errorf("hint = %q, expected hematology", hint)
			}
			return &in.TechnicianAvailability{
				Technicians: []domain.LabTechnician{tech},
				Resolution:  domain.ResolvedSpecialization(domain.SpecializationHematology, domain.ResolutionSourceDirect),
			}, nil
		},
	}
	router := technicianRouter(useCase)

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/technicians/available?specialization=hematology", nil),
		domain.Actor{ID: uuid.New(), Role: domain.RoleReceptionist})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var body struct {
		SpecializationFilter struct {
			Resolved       bool   `json:"resolved"`
			Source         string `json:"source"`
			Specialization string `json:"specialization"`
		} `json:"specializationFilter"`
		Technicians []map[string]interface{} `json:"technicians"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if !body.SpecializationFilter.Resolved || body.SpecializationFilter.Source != "direct" {
		t.Errorf("filter = %+v", body.SpecializationFilter)
	}
	if body.SpecializationFilter.Specialization != "HEMATOLOGY" {
		t.Errorf("specialization = %q", body.SpecializationFilter.Specialization)
	}
	if len(body.Technicians) != 1 {
		t.Fatalf("expected 1 technician, got %d", len(body.Technicians))
	}

	entry := body.Technicians[0]
	if entry["availableSlots"] != float64(3) {
		t.Errorf("availableSlots = %v, expected 3", entry["availableSlots"])
	}
	// Raw workload fields stay hidden without includeWorkload.
	if _, ok := entry["currentWorkload"]; ok {
		t.Error("currentWorkload must be omitted by default")
	}
}

func TestListAvailableIncludeWorkload(t *testing.T) {
	tech := domain.LabTechnician{ID: uuid.New(), CurrentWorkload: 2, MaxConcurrentTests: 5}
	useCase := &fakeTechnicianUseCase{
		listAvailable: func(context.Context, string) (*in.TechnicianAvailability, error) {
			return &in.TechnicianAvailability{
				Technicians: []domain.LabTechnician{tech},
				Resolution:  domain.UnresolvedSpecialization(),
			}, nil
		},
	}
	router := technicianRouter(useCase)

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/technicians/available?includeWorkload=true", nil),
		domain.Actor{ID: uuid.New(), Role: domain.RoleReceptionist})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	var body struct {
		Technicians []map[string]interface{} `json:"technicians"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Technicians[0]["currentWorkload"] != float64(2) {
		t.Errorf("currentWorkload = %v, expected 2", body.Technicians[0]["currentWorkload"])
	}
	if body.Technicians[0]["maxConcurrentTests"] != float64(5) {
		t.Errorf("maxConcurrentTests = %v, expected 5", body.Technicians[0]["maxConcurrentTests"])
	}
}

func TestListAvailableRejectsBadIncludeWorkload(t *testing.T) {
	useCase := &fakeTechnicianUseCase{
		listAvailable: func(context.Context, string) (*in.TechnicianAvailability, error) {
			t.Fatal("use case must not run for a malformed query")
			return nil, nil
		},
	}
	router := technicianRouter(useCase)

	req := withActor(httptest.NewRequest(http.MethodGet, "/api/v1/technicians/available?includeWorkload=yes", nil),
		domain.Actor{ID: uuid.New(), Role: domain.RoleReceptionist})
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", recorder.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["kind"] != "validation" {
		t.Errorf("kind = %v", body["kind"])
	}
}

func TestUpdateWorkloadActions(t *testing.T) {
	technicianID := uuid.New()
	tech := domain.LabTechnician{ID: technicianID, CurrentWorkload: 3, MaxConcurrentTests: 5}

	var called string
	useCase := &fakeTechnicianUseCase{
		assign: func(_ context.Context, actor domain.Actor, id uuid.UUID) (*domain.LabTechnician, error) {
			called = "assign"
			if actor.Role != domain.RoleReceptionist {
				t.Errorf("actor role = %q", actor.Role)
			}
			if id != technicianID {
				t.Errorf("id = %s", id)
			}
			return &tech, nil
		},
		complete: func(context.Context, domain.Actor, uuid.UUID) (*domain.LabTechnician, error) {
			called = "complete"
			return &tech, nil
		},
		reconcile: func(context.Context, domain.Actor, uuid.UUID) (*domain.LabTechnician, error) {
			called = "reconcile"
			return &tech, nil
		},
	}
	router := technicianRouter(useCase)
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleReceptionist}

	cases := []struct {
		action   string
		expected string
	}{
		{"assign", "assign"},
		{"complete", "complete"},
		{"update", "reconcile"},
	}

	for _, tc := range cases {
		called = ""
		req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/technicians/"+technicianID.String()+"/workload",
			strings.NewReader(`{"action":"`+tc.action+`"}`)), actor)
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("action %q: status = %d, body = %s", tc.action, recorder.Code, recorder.Body.String())
		}
		if called != tc.expected {
			t.Errorf("action %q dispatched to %q", tc.action, called)
		}

		var body map[string]interface{}
		if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body["availableSlots"] != float64(2) || body["state"] != "UNDERLOADED" {
			t.Errorf("action %q body = %v", tc.action, body)
		}
	}
}

func TestUpdateWorkloadUnknownAction(t *testing.T) {
	router := technicianRouter(&fakeTechnicianUseCase{})
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleReceptionist}

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/technicians/"+uuid.NewString()+"/workload",
		strings.NewReader(`{"action":"escalate"}`)), actor)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", recorder.Code)
	}
}

func TestUpdateWorkloadCapacityExceeded(t *testing.T) {
	useCase := &fakeTechnicianUseCase{
		assign: func(_ context.Context, _ domain.Actor, id uuid.UUID) (*domain.LabTechnician, error) {
			return nil, domain.NewCapacityExceededError(id, 5, 5)
		},
	}
	router := technicianRouter(useCase)
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleReceptionist}

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/technicians/"+uuid.NewString()+"/workload",
		strings.NewReader(`{"action":"assign"}`)), actor)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusConflict {
		t.Fatalf("status = %d, expected 409", recorder.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["kind"] != "capacity_exceeded" {
		t.Errorf("kind = %v", body["kind"])
	}
}

func TestActorContextRejectsMissingHeaders(t *testing.T) {
	router := technicianRouter(&fakeTechnicianUseCase{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/technicians/available", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("no headers: status = %d, expected 401", recorder.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/technicians/available", nil)
	req.Header.Set("X-Actor-Id", uuid.NewString())
	req.Header.Set("X-Actor-Role", "JANITOR")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("unknown role: status = %d, expected 401", recorder.Code)
	}
}
