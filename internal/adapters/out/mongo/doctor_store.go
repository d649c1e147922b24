package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carewell-hms/allocation-service/internal/core/domain"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

type doctorDoc struct {
	ID         string `bson:"_id"`
	Name       string `bson:"name"`
	Department string `bson:"department"`
}

func (a *MongoAdapter) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*domain.Doctor, error) {
	var doc doctorDoc
	err := a.doctors.FindOne(ctx, bson.M{"_id": doctorID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		a.logger.Error("mongo.doctor.get_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid doctor id %q: %w", doc.ID, err)
	}

	return &domain.Doctor{
		ID:         id,
		Name:       doc.Name,
		Department: doc.Department,
	}, nil
}
