package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	disputeserrors "taskhire/internal/disputes/errors"
	"taskhire/pkg/config"
	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Disputes"
)

// Change describes one dispute update. History and Attachments are appended,
// never replaced; nil pointers leave the stored field untouched. When Status
// is set the update only applies while the stored status is still From.
type Change struct {
	Status          *model.DisputeStatus
	From            model.DisputeStatus
	History         []model.StatusEntry
	Attachments     []model.Attachment
	Resolution      *model.Resolution
	EscalationLevel *int
	EscalatedBy     string
	UpdatedBy       model.Actor
}

type DisputeRepository interface {
	Create(ctx context.Context, dispute *model.Dispute) error
	FindByID(ctx context.Context, id string) (*model.Dispute, error)
	FindAll(ctx context.Context, filter model.DisputeFilter, limit int, offset int64) ([]*model.Dispute, error)
	Count(ctx context.Context, filter model.DisputeFilter) (int64, error)
	Update(ctx context.Context, id string, change Change) (*model.Dispute, error)
	Delete(ctx context.Context, id string) error
}

type mongoDisputeRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoDisputeRepository(cfg *config.Config) DisputeRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDisputeRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoDisputeRepository) Create(ctx context.Context, dispute *model.Dispute) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	dispute.CreatedAt = now
	dispute.UpdatedAt = now
	if dispute.Attachments == nil {
		dispute.Attachments = []model.Attachment{}
	}

	result, err := r.collection.InsertOne(ctx, dispute)
	if err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}

	dispute.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoDisputeRepository) FindByID(ctx context.Context, id string) (*model.Dispute, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	var dispute model.Dispute
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&dispute); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, disputeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find dispute: %w", err)
	}
	return &dispute, nil
}

func (r *mongoDisputeRepository) FindAll(ctx context.Context, filter model.DisputeFilter, limit int, offset int64) ([]*model.Dispute, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find disputes: %w", err)
	}
	defer cursor.Close(ctx)

	disputes := make([]*model.Dispute, 0)
	if err = cursor.All(ctx, &disputes); err != nil {
		return nil, fmt.Errorf("failed to decode disputes: %w", err)
	}
	return disputes, nil
}

func (r *mongoDisputeRepository) Count(ctx context.Context, filter model.DisputeFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count disputes: %w", err)
	}
	return count, nil
}

// Update applies change atomically and returns the stored document after it.
func (r *mongoDisputeRepository) Update(ctx context.Context, id string, change Change) (*model.Dispute, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var dispute model.Dispute
	err = r.collection.FindOneAndUpdate(ctx, updateFilter(objectID, change), buildUpdate(change, time.Now().UTC().Truncate(time.Millisecond)), opts).Decode(&dispute)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missReason(ctx, objectID, change)
		}
		return nil, fmt.Errorf("failed to update dispute: %w", err)
	}
	return &dispute, nil
}

// missReason tells a deleted dispute apart from one whose status moved
// between the read and the guarded update.
func (r *mongoDisputeRepository) missReason(ctx context.Context, objectID primitive.ObjectID, change Change) error {
	if change.Status == nil {
		return disputeserrors.ErrNotFound
	}
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check dispute: %w", err)
	}
	if count == 0 {
		return disputeserrors.ErrNotFound
	}
	return disputeserrors.ErrStatusChanged
}

func updateFilter(objectID primitive.ObjectID, c Change) bson.M {
	filter := bson.M{"_id": objectID}
	if c.Status != nil {
		filter["status"] = c.From
	}
	return filter
}

func (r *mongoDisputeRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := objectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete dispute: %w", err)
	}
	if result.DeletedCount == 0 {
		return disputeserrors.ErrNotFound
	}
	return nil
}

func buildUpdate(c Change, now time.Time) bson.M {
	set := bson.M{
		"updatedBy":      c.UpdatedBy.ID,
		"updatedByModel": c.UpdatedBy.Role.Model(),
		"updatedAt":      now,
	}
	if c.Status != nil {
		set["status"] = *c.Status
	}
	if c.Resolution != nil {
		set["resolution"] = c.Resolution
	}
	if c.EscalationLevel != nil {
		set["escalationLevel"] = *c.EscalationLevel
		set["escalatedBy"] = c.EscalatedBy
	}

	update := bson.M{"$set": set}
	push := bson.M{}
	if len(c.History) > 0 {
		push["statusHistory"] = bson.M{"$each": c.History}
	}
	if len(c.Attachments) > 0 {
		push["attachments"] = bson.M{"$each": c.Attachments}
	}
	if len(push) > 0 {
		update["$push"] = push
	}
	return update
}

// buildFilter matches disputes the party raised or is named in.
func buildFilter(f model.DisputeFilter) bson.M {
	filter := bson.M{}
	if f.Party != "" {
		filter["$or"] = bson.A{bson.M{"raisedBy": f.Party}, bson.M{"against": f.Party}}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := mongotx.ObjectID(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", disputeserrors.ErrInvalidID, id)
	}
	return oid, nil
}
