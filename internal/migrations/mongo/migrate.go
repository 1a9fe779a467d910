package mongo

import (
	"context"
	"fmt"

	"taskhire/internal/migrations/mongo/validators"
	"taskhire/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "worker", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "date", Value: -1}}},
	}

	PaymentsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("booking_unique"),
		},
		{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "worker", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	DisputesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking", Value: 1}}},
		{Keys: bson.D{{Key: "raisedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "against", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	NotificationsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "receiver.id", Value: 1},
			{Key: "receiver.role", Value: 1},
			{Key: "createdAt", Value: -1},
		}},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections maps every collection the marketplace owns to its schema
// validator and indexes.
func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		"Bookings":      {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		"Payments":      {Indexes: PaymentsIndexes, Validator: validators.PaymentValidator},
		"Disputes":      {Indexes: DisputesIndexes, Validator: validators.DisputeValidator},
		"Notifications": {Indexes: NotificationsIndexes, Validator: validators.NotificationValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
