// Package directory resolves user and service refs against the catalogs
// owned by other systems. It never writes.
package directory

import (
	"context"
	"fmt"

	"taskhire/pkg/config"
	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection    = "Users"
	ServicesCollection = "Services"
)

type Directory interface {
	Users(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
	Services(ctx context.Context, ids []string) (map[string]model.ServiceSummary, error)
}

type mongoDirectory struct {
	cfg      *config.Config
	users    *mongo.Collection
	services *mongo.Collection
}

func NewMongoDirectory(cfg *config.Config) Directory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoDirectory{
		cfg:      cfg,
		users:    db.Collection(UsersCollection),
		services: db.Collection(ServicesCollection),
	}
}

var (
	userProjection    = bson.M{"name": 1, "email": 1, "phone": 1}
	serviceProjection = bson.M{"name": 1, "category": 1, "price": 1}
)

func (d *mongoDirectory) Users(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	var users []model.UserSummary
	if err := d.findByIDs(ctx, d.users, ids, userProjection, &users); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	out := make(map[string]model.UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (d *mongoDirectory) Services(ctx context.Context, ids []string) (map[string]model.ServiceSummary, error) {
	var services []model.ServiceSummary
	if err := d.findByIDs(ctx, d.services, ids, serviceProjection, &services); err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	out := make(map[string]model.ServiceSummary, len(services))
	for _, s := range services {
		out[s.ID] = s
	}
	return out, nil
}

// findByIDs skips ids that are not object ids; a dangling or malformed ref
// simply stays unpopulated.
func (d *mongoDirectory) findByIDs(ctx context.Context, coll *mongo.Collection, ids []string, projection bson.M, out any) error {
	oids := validObjectIDs(ids)
	if len(oids) == 0 {
		return nil
	}

	ctx, cancel := mongotx.WithTimeout(ctx, d.cfg.ReadTimeout)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetProjection(projection))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	return cursor.All(ctx, out)
}
