package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

type technicianDoc struct {
	ID                 string    `bson:"_id"`
	UserID             string    `bson:"userId"`
	Specialization     string    `bson:"specialization"`
	IsAvailable        bool      `bson:"isAvailable"`
	CurrentWorkload    int       `bson:"currentWorkload"`
	MaxConcurrentTests int       `bson:"maxConcurrentTests"`
	PerformanceScore   float64   `bson:"performanceScore"`
	CreatedAt          time.Time `bson:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt"`
}

func (d technicianDoc) toDomain() (domain.LabTechnician, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.LabTechnician{}, fmt.Errorf("invalid technician id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return domain.LabTechnician{}, fmt.Errorf("invalid user id %q: %w", d.UserID, err)
	}

	return domain.LabTechnician{
		ID:                 id,
		UserID:             userID,
		Specialization:     domain.Specialization(d.Specialization),
		IsAvailable:        d.IsAvailable,
		CurrentWorkload:    d.CurrentWorkload,
		MaxConcurrentTests: d.MaxConcurrentTests,
		PerformanceScore:   d.PerformanceScore,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}, nil
}

func (a *MongoAdapter) GetTechnician(ctx context.Context, technicianID uuid.UUID) (*domain.LabTechnician, error) {
	var doc technicianDoc
	err := a.technicians.FindOne(ctx, bson.M{"_id": technicianID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		a.logger.Error("mongo.technician.get_failed", out.LogFields{
			"technicianId": technicianID,
			"error":        err.Error(),
		})
		return nil, err
	}

	technician, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &technician, nil
}

func (a *MongoAdapter) ListAvailableTechnicians(ctx context.Context, specialization *domain.Specialization) ([]domain.LabTechnician, error) {
	filter := bson.M{
		"isAvailable": true,
		"$expr":       bson.M{"$lt": bson.A{"$currentWorkload", "$maxConcurrentTests"}},
	}
	if specialization != nil {
		filter["specialization"] = string(*specialization)
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "currentWorkload", Value: 1},
		{Key: "performanceScore", Value: -1},
	})

	cursor, err := a.technicians.Find(ctx, filter, opts)
	if err != nil {
		a.logger.Error("mongo.technician.list_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	var docs []technicianDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	technicians := make([]domain.LabTechnician, 0, len(docs))
	for _, doc := range docs {
		technician, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		technicians = append(technicians, technician)
	}
	return technicians, nil
}

// IncrementWorkload is the capacity guard and the increment in one
// conditional update: the filter only matches while spare capacity exists,
// so concurrent assigns cannot overshoot maxConcurrentTests.
func (a *MongoAdapter) IncrementWorkload(ctx context.Context, technicianID uuid.UUID) (bool, error) {
	filter := bson.M{
		"_id":   technicianID.String(),
		"$expr": bson.M{"$lt": bson.A{"$currentWorkload", "$maxConcurrentTests"}},
	}
	update := bson.M{
		"$inc":         bson.M{"currentWorkload": 1},
		"$currentDate": bson.M{"updatedAt": true},
	}

	result, err := a.technicians.UpdateOne(ctx, filter, update)
	if err != nil {
		a.logger.Error("mongo.technician.increment_failed", out.LogFields{
			"technicianId": technicianID,
			"error":        err.Error(),
		})
		return false, err
	}
	if result.MatchedCount == 1 {
		return true, nil
	}

	return false, a.requireTechnicianExists(ctx, technicianID)
}

// DecrementWorkload floors at zero: the filter only matches a positive
// workload, so the counter can never go negative.
func (a *MongoAdapter) DecrementWorkload(ctx context.Context, technicianID uuid.UUID) (bool, error) {
	filter := bson.M{
		"_id":             technicianID.String(),
		"currentWorkload": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc":         bson.M{"currentWorkload": -1},
		"$currentDate": bson.M{"updatedAt": true},
	}

	result, err := a.technicians.UpdateOne(ctx, filter, update)
	if err != nil {
		a.logger.Error("mongo.technician.decrement_failed", out.LogFields{
			"technicianId": technicianID,
			"error":        err.Error(),
		})
		return false, err
	}
	if result.MatchedCount == 1 {
		return true, nil
	}

	return false, a.requireTechnicianExists(ctx, technicianID)
}

func (a *MongoAdapter) SetWorkload(ctx context.Context, technicianID uuid.UUID, workload int) error {
	update := bson.M{
		"$set":         bson.M{"currentWorkload": workload},
		"$currentDate": bson.M{"updatedAt": true},
	}

	result, err := a.technicians.UpdateOne(ctx, bson.M{"_id": technicianID.String()}, update)
	if err != nil {
		a.logger.Error("mongo.technician.set_workload_failed", out.LogFields{
			"technicianId": technicianID,
			"error":        err.Error(),
		})
		return err
	}
	if result.MatchedCount == 0 {
		return domain.NewNotFoundError("lab technician", technicianID)
	}
	return nil
}

func (a *MongoAdapter) CountActiveOrders(ctx context.Context, technicianID uuid.UUID) (int, error) {
	statuses := make([]string, 0)
	for _, status := range domain.ActiveLabOrderStatuses() {
		statuses = append(statuses, string(status))
	}

	count, err := a.orders.CountDocuments(ctx, bson.M{
		"technicianId": technicianID.String(),
		"status":       bson.M{"$in": statuses},
	})
	if err != nil {
		a.logger.Error("mongo.orders.count_failed", out.LogFields{
			"technicianId": technicianID,
			"error":        err.Error(),
		})
		return 0, err
	}
	return int(count), nil
}

// requireTechnicianExists turns "update matched nothing" into either a
// guard rejection (nil) or NotFound.
func (a *MongoAdapter) requireTechnicianExists(ctx context.Context, technicianID uuid.UUID) error {
	count, err := a.technicians.CountDocuments(ctx, bson.M{"_id": technicianID.String()})
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.NewNotFoundError("lab technician", technicianID)
	}
	return nil
}
