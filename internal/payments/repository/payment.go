package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	paymentserrors "taskhire/internal/payments/errors"
	"taskhire/pkg/config"
	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Payments"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, id string) (*model.Payment, error)
	FindByBooking(ctx context.Context, bookingID string) (*model.Payment, error)
	FindAll(ctx context.Context, filter model.PaymentFilter, limit int, offset int64) ([]*model.Payment, error)
	Count(ctx context.Context, filter model.PaymentFilter) (int64, error)
	Update(ctx context.Context, payment *model.Payment) error
	Delete(ctx context.Context, id string) error
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// Create relies on the unique booking index to reject a second payment for
// the same booking.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return paymentserrors.ErrDuplicate
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	payment.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoPaymentRepository) FindByID(ctx context.Context, id string) (*model.Payment, error) {
	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoPaymentRepository) FindByBooking(ctx context.Context, bookingID string) (*model.Payment, error) {
	return r.findOne(ctx, bson.M{"booking": bookingID})
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M) (*model.Payment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var payment model.Payment
	if err := r.collection.FindOne(ctx, filter).Decode(&payment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &payment, nil
}

func (r *mongoPaymentRepository) FindAll(ctx context.Context, filter model.PaymentFilter, limit int, offset int64) ([]*model.Payment, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := make([]*model.Payment, 0)
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func (r *mongoPaymentRepository) Count(ctx context.Context, filter model.PaymentFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return count, nil
}

func (r *mongoPaymentRepository) Update(ctx context.Context, payment *model.Payment) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(payment.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, payment.ID)
	}

	payment.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"amount":         payment.Amount,
		"method":         payment.Method,
		"status":         payment.Status,
		"updatedBy":      payment.UpdatedBy,
		"updatedByModel": payment.UpdatedByModel,
		"updatedAt":      payment.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if payment.TransactionID != "" {
		set["transactionId"] = payment.TransactionID
	} else {
		update["$unset"] = bson.M{"transactionId": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return paymentserrors.ErrNotFound
	}
	return nil
}

func (r *mongoPaymentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return fmt.Errorf("%w: %s", paymentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	if result.DeletedCount == 0 {
		return paymentserrors.ErrNotFound
	}
	return nil
}

// buildFilter matches payments where the user is customer or worker. A
// filter naming both matches either side.
func buildFilter(f model.PaymentFilter) bson.M {
	switch {
	case f.Customer != "" && f.Worker != "":
		return bson.M{"$or": bson.A{bson.M{"customer": f.Customer}, bson.M{"worker": f.Worker}}}
	case f.Customer != "":
		return bson.M{"customer": f.Customer}
	case f.Worker != "":
		return bson.M{"worker": f.Worker}
	}
	return bson.M{}
}
