package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/carewell-hms/allocation-service/internal/config"
	"github.com/carewell-hms/allocation-service/internal/core/ports/out"
)

const (
	slotsCollection       = "schedule_slots"
	slotLocksCollection   = "schedule_slot_locks"
	techniciansCollection = "lab_technicians"
	ordersCollection      = "lab_orders"
	doctorsCollection     = "doctors"

	connectTimeout = 10 * time.Second
)

// MongoAdapter implements the schedule, technician and doctor store ports
// over the hospital's document database. The guarded mutations (conditional
// workload updates, check-and-insert slot creation) live here so the
// invariants hold under concurrent requests.
type MongoAdapter struct {
	client      *mongo.Client
	slots       *mongo.Collection
	slotLocks   *mongo.Collection
	technicians *mongo.Collection
	orders      *mongo.Collection
	doctors     *mongo.Collection
	logger      out.LoggerPort
}

func NewMongoAdapter(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (*MongoAdapter, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Error("mongo.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		logger.Error("mongo.ping.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(cfg.Mongo.Database)
	logger.Info("mongo.connect.success", out.LogFields{
		"database": cfg.Mongo.Database,
	})

	return &MongoAdapter{
		client:      client,
		slots:       db.Collection(slotsCollection),
		slotLocks:   db.Collection(slotLocksCollection),
		technicians: db.Collection(techniciansCollection),
		orders:      db.Collection(ordersCollection),
		doctors:     db.Collection(doctorsCollection),
		logger:      logger.WithModule("MongoAdapter"),
	}, nil
}

func (a *MongoAdapter) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
