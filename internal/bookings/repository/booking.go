package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "taskhire/internal/bookings/errors"
	"taskhire/pkg/config"
	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

// BookingRepository persists bookings. Every write bumps version; Update
// only succeeds when the caller's version is still current.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	Update(ctx context.Context, booking *model.Booking) error
	SetReview(ctx context.Context, id string, review *model.Review, updatedBy model.Actor) error
	SetPaid(ctx context.Context, id string, paid bool, updatedBy model.Actor) error
	SetDispute(ctx context.Context, id string, disputeID string) error
	UnsetDispute(ctx context.Context, id string, disputeID string) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 0

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// Update writes the mutable fields of booking if its stored version still
// equals booking.Version, then advances booking.Version.
func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(booking.ID)
	if err != nil {
		return err
	}

	booking.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"date":           booking.Date,
		"time":           booking.Time,
		"location":       booking.Location,
		"notes":          booking.Notes,
		"status":         booking.Status,
		"price":          booking.Price,
		"updatedBy":      booking.UpdatedBy,
		"updatedByModel": booking.UpdatedByModel,
		"updatedAt":      booking.UpdatedAt,
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if booking.Billing != nil {
		set["billing"] = booking.Billing
	} else {
		update["$unset"] = bson.M{"billing": ""}
	}

	filter := bson.M{"_id": objectID, "version": booking.Version}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, objectID, bookingserrors.ErrVersionConflict)
	}

	booking.Version++
	return nil
}

// SetReview attaches review only to a completed booking without one.
func (r *mongoBookingRepository) SetReview(ctx context.Context, id string, review *model.Review, updatedBy model.Actor) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":    objectID,
		"status": model.BookingCompleted,
		"review": bson.M{"$exists": false},
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"review": review, "updatedBy": updatedBy.ID, "updatedByModel": updatedBy.Role.Model(), "updatedAt": review.CreatedAt},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to set booking review: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Review != nil {
		return bookingserrors.ErrAlreadyReviewed
	}
	return bookingserrors.ErrNotCompleted
}

func (r *mongoBookingRepository) SetPaid(ctx context.Context, id string, paid bool, updatedBy model.Actor) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{
		"$set": bson.M{
			"isPaid":         paid,
			"updatedBy":      updatedBy.ID,
			"updatedByModel": updatedBy.Role.Model(),
			"updatedAt":      time.Now().UTC().Truncate(time.Millisecond),
		},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to set booking paid flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}

// SetDispute links disputeID to the booking unless it already has one.
func (r *mongoBookingRepository) SetDispute(ctx context.Context, id string, disputeID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID, "dispute": bson.M{"$exists": false}}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{"dispute": disputeID, "updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to link dispute: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, objectID, bookingserrors.ErrDisputeExists)
	}
	return nil
}

// UnsetDispute removes the dispute field only while it still points at
// disputeID. A booking that no longer references it is left alone.
func (r *mongoBookingRepository) UnsetDispute(ctx context.Context, id string, disputeID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "dispute": disputeID}, bson.M{
		"$unset": bson.M{"dispute": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC().Truncate(time.Millisecond)},
		"$inc":   bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to unlink dispute: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// missOrConflict tells a missing booking apart from a failed precondition
// after a conditional update matched nothing.
func (r *mongoBookingRepository) missOrConflict(ctx context.Context, objectID primitive.ObjectID, conflict error) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check booking existence: %w", err)
	}
	if n == 0 {
		return bookingserrors.ErrNotFound
	}
	return conflict
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := mongotx.ObjectID(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

func buildFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.Customer != "" {
		filter["customer"] = f.Customer
	}
	if f.Worker != "" {
		filter["worker"] = f.Worker
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}
