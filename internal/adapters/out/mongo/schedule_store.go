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
	"github.com/carewell-hms/allocation-service/internal/core/json_types"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

// errSlotOverlap aborts the create transaction when the overlap check finds
// an existing slot; it never escapes CreateSlotIfFree.
var errSlotOverlap = errors.New("slot overlaps an existing slot")

type slotDoc struct {
	ID                 string    `bson:"_id"`
	DoctorID           string    `bson:"doctorId"`
	DayOfWeek          string    `bson:"dayOfWeek,omitempty"`
	Date               string    `bson:"date,omitempty"`
	StartTime          string    `bson:"startTime"`
	EndTime            string    `bson:"endTime"`
	SlotDuration       int       `bson:"slotDuration"`
	MaxPatientsPerSlot int       `bson:"maxPatientsPerSlot"`
	BreakStart         string    `bson:"breakStart,omitempty"`
	BreakEnd           string    `bson:"breakEnd,omitempty"`
	IsRecurring        bool      `bson:"isRecurring"`
	IsActive           bool      `bson:"isActive"`
	Notes              string    `bson:"notes,omitempty"`
	CreatedAt          time.Time `bson:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt"`
	Version            int64     `bson:"version"`
}

func newSlotDoc(slot domain.ScheduleSlot) slotDoc {
	return slotDoc{
		ID:                 slot.ID.String(),
		DoctorID:           slot.DoctorID.String(),
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
		Version:            slot.Version,
	}
}

func (d slotDoc) toDomain() (domain.ScheduleSlot, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.ScheduleSlot{}, fmt.Errorf("invalid slot id %q: %w", d.ID, err)
	}
	doctorID, err := uuid.Parse(d.DoctorID)
	if err != nil {
		return domain.ScheduleSlot{}, fmt.Errorf("invalid doctor id %q: %w", d.DoctorID, err)
	}

	return domain.ScheduleSlot{
		ID:                 id,
		DoctorID:           doctorID,
		DayOfWeek:          domain.DayOfWeek(d.DayOfWeek),
		Date:               json_types.Date(d.Date),
		StartTime:          json_types.ClockTime(d.StartTime),
		EndTime:            json_types.ClockTime(d.EndTime),
		SlotDuration:       d.SlotDuration,
		MaxPatientsPerSlot: d.MaxPatientsPerSlot,
		BreakStart:         json_types.ClockTime(d.BreakStart),
		BreakEnd:           json_types.ClockTime(d.BreakEnd),
		IsRecurring:        d.IsRecurring,
		IsActive:           d.IsActive,
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
		Version:            d.Version,
	}, nil
}

func (a *MongoAdapter) GetSlot(ctx context.Context, slotID uuid.UUID) (*domain.ScheduleSlot, error) {
	var doc slotDoc
	err := a.slots.FindOne(ctx, bson.M{"_id": slotID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		a.logger.Error("mongo.slot.get_failed", out.LogFields{
			"slotId": slotID,
			"error":  err.Error(),
		})
		return nil, err
	}

	slot, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (a *MongoAdapter) ListSlots(ctx context.Context, doctorID uuid.UUID) ([]domain.ScheduleSlot, error) {
	cursor, err := a.slots.Find(ctx, bson.M{"doctorId": doctorID.String()})
	if err != nil {
		a.logger.Error("mongo.slot.list_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, err
	}
	return a.decodeSlots(ctx, cursor)
}

func (a *MongoAdapter) decodeSlots(ctx context.Context, cursor *mongo.Cursor) ([]domain.ScheduleSlot, error) {
	var docs []slotDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	slots := make([]domain.ScheduleSlot, 0, len(docs))
	for _, doc := range docs {
		slot, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// overlapFilter matches active slots of the same doctor and day whose
// half-open interval intersects the given slot. ClockTime's canonical form
// makes the string range comparison equivalent to a time comparison.
func overlapFilter(slot domain.ScheduleSlot) bson.M {
	filter := bson.M{
		"doctorId":  slot.DoctorID.String(),
		"isActive":  true,
		"startTime": bson.M{"$lt": string(slot.EndTime)},
		"endTime":   bson.M{"$gt": string(slot.StartTime)},
	}
	if slot.DayOfWeek != "" {
		filter["dayOfWeek"] = string(slot.DayOfWeek)
	} else {
		filter["date"] = string(slot.Date)
	}
	return filter
}

// dayGroupID names the lock document for one doctor's day group.
func dayGroupID(slot domain.ScheduleSlot) string {
	if slot.DayOfWeek != "" {
		return fmt.Sprintf("%s|%s", slot.DoctorID, slot.DayOfWeek)
	}
	return fmt.Sprintf("%s|%s", slot.DoctorID, slot.Date)
}

// lockDayGroup bumps the day-group lock document inside the transaction.
// Snapshot isolation alone would let two writers of the same group read
// "no overlap" and both commit distinct inserts; writing one shared document
// makes such transactions conflict, so the driver aborts and retries one of
// them and the overlap check re-runs against the winner's commit.
func (a *MongoAdapter) lockDayGroup(sc mongo.SessionContext, slot domain.ScheduleSlot) error {
	_, err := a.slotLocks.UpdateOne(sc,
		bson.M{"_id": dayGroupID(slot)},
		bson.M{"$inc": bson.M{"revision": 1}},
		options.Update().SetUpsert(true),
	)
	return err
}

// CreateSlotIfFree takes the day-group lock, then runs the overlap check and
// the insert, all inside one transaction. Concurrent writers of the same
// doctor and day serialize on the lock document instead of racing past the
// check.
func (a *MongoAdapter) CreateSlotIfFree(ctx context.Context, slot domain.ScheduleSlot) (*domain.ScheduleSlot, error) {
	session, err := a.client.StartSession()
	if err != nil {
		a.logger.Error("mongo.slot.session_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}
	defer session.EndSession(ctx)

	var conflicting *domain.ScheduleSlot
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if lockErr := a.lockDayGroup(sc, slot); lockErr != nil {
			return nil, lockErr
		}

		var existing slotDoc
		findErr := a.slots.FindOne(sc, overlapFilter(slot)).Decode(&existing)
		if findErr == nil {
			found, convErr := existing.toDomain()
			if convErr != nil {
				return nil, convErr
			}
			conflicting = &found
			return nil, errSlotOverlap
		}
		if !errors.Is(findErr, mongo.ErrNoDocuments) {
			return nil, findErr
		}

		_, insertErr := a.slots.InsertOne(sc, newSlotDoc(slot))
		return nil, insertErr
	})

	if errors.Is(err, errSlotOverlap) {
		return conflicting, nil
	}
	if err != nil {
		a.logger.Error("mongo.slot.create_failed", out.LogFields{
			"doctorId": slot.DoctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("mongo.slot.create_success", out.LogFields{
		"slotId": slot.ID,
	})
	return nil, nil
}

// slotUpdate writes every mutable field. Cleared day-key fields are written
// as empty strings rather than relying on omitempty, so flipping a slot
// between dated and recurring never leaves the stale key behind.
func slotUpdate(doc slotDoc) bson.M {
	return bson.M{
		"$set": bson.M{
			"dayOfWeek":          doc.DayOfWeek,
			"date":               doc.Date,
			"startTime":          doc.StartTime,
			"endTime":            doc.EndTime,
			"slotDuration":       doc.SlotDuration,
			"maxPatientsPerSlot": doc.MaxPatientsPerSlot,
			"breakStart":         doc.BreakStart,
			"breakEnd":           doc.BreakEnd,
			"isRecurring":        doc.IsRecurring,
			"isActive":           doc.IsActive,
			"notes":              doc.Notes,
			"updatedAt":          doc.UpdatedAt,
			"version":            doc.Version,
		},
	}
}

func (a *MongoAdapter) UpdateSlotVersioned(ctx context.Context, slot domain.ScheduleSlot, expectedVersion int64) (bool, error) {
	doc := newSlotDoc(slot)

	result, err := a.slots.UpdateOne(ctx, bson.M{"_id": doc.ID, "version": expectedVersion}, slotUpdate(doc))
	if err != nil {
		a.logger.Error("mongo.slot.update_failed", out.LogFields{
			"slotId": slot.ID,
			"error":  err.Error(),
		})
		return false, err
	}

	return result.MatchedCount == 1, nil
}

// UpdateSlotIfFree is the update-path counterpart of CreateSlotIfFree: the
// day-group lock, the sibling overlap check and the versioned write run in
// one transaction, so a slot created or moved into the target interval by a
// concurrent writer cannot slip in between check and write.
func (a *MongoAdapter) UpdateSlotIfFree(ctx context.Context, slot domain.ScheduleSlot, expectedVersion int64) (*domain.ScheduleSlot, bool, error) {
	session, err := a.client.StartSession()
	if err != nil {
		a.logger.Error("mongo.slot.session_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, false, err
	}
	defer session.EndSession(ctx)

	doc := newSlotDoc(slot)
	var conflicting *domain.ScheduleSlot
	applied := false
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if lockErr := a.lockDayGroup(sc, slot); lockErr != nil {
			return nil, lockErr
		}

		filter := overlapFilter(slot)
		filter["_id"] = bson.M{"$ne": doc.ID}

		var existing slotDoc
		findErr := a.slots.FindOne(sc, filter).Decode(&existing)
		if findErr == nil {
			found, convErr := existing.toDomain()
			if convErr != nil {
				return nil, convErr
			}
			conflicting = &found
			return nil, errSlotOverlap
		}
		if !errors.Is(findErr, mongo.ErrNoDocuments) {
			return nil, findErr
		}

		result, updateErr := a.slots.UpdateOne(sc, bson.M{"_id": doc.ID, "version": expectedVersion}, slotUpdate(doc))
		if updateErr != nil {
			return nil, updateErr
		}
		applied = result.MatchedCount == 1
		return nil, nil
	})

	if errors.Is(err, errSlotOverlap) {
		return conflicting, false, nil
	}
	if err != nil {
		a.logger.Error("mongo.slot.update_failed", out.LogFields{
			"slotId": slot.ID,
			"error":  err.Error(),
		})
		return nil, false, err
	}

	return nil, applied, nil
}

func (a *MongoAdapter) DeleteSlot(ctx context.Context, slotID uuid.UUID) error {
	result, err := a.slots.DeleteOne(ctx, bson.M{"_id": slotID.String()})
	if err != nil {
		a.logger.Error("mongo.slot.delete_failed", out.LogFields{
			"slotId": slotID,
			"error":  err.Error(),
		})
		return err
	}
	if result.DeletedCount == 0 {
		return domain.NewNotFoundError("schedule slot", slotID)
	}

	a.logger.Debug("mongo.slot.delete_success", out.LogFields{
		"slotId": slotID,
	})
	return nil
}
