package directory

import (
	"context"

	mongotx "taskhire/pkg/db/mongo"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Populate resolves the customer, worker and service refs of bookings with
// one lookup per catalog. Refs that cannot be resolved keep only their id.
func Populate(ctx context.Context, dir Directory, bookings ...*model.Booking) ([]*model.BookingView, error) {
	if len(bookings) == 0 {
		return []*model.BookingView{}, nil
	}

	userIDs := make([]string, 0, len(bookings)*2)
	serviceIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		userIDs = append(userIDs, b.Customer, b.Worker)
		serviceIDs = append(serviceIDs, b.Service)
	}

	users, err := dir.Users(ctx, unique(userIDs))
	if err != nil {
		return nil, err
	}
	services, err := dir.Services(ctx, unique(serviceIDs))
	if err != nil {
		return nil, err
	}

	views := make([]*model.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, &model.BookingView{
			Booking:  *b,
			Customer: userOrID(users, b.Customer),
			Worker:   userOrID(users, b.Worker),
			Service:  serviceOrID(services, b.Service),
		})
	}
	return views, nil
}

func userOrID(users map[string]model.UserSummary, id string) model.UserSummary {
	if u, ok := users[id]; ok {
		return u
	}
	return model.UserSummary{ID: id}
}

func serviceOrID(services map[string]model.ServiceSummary, id string) model.ServiceSummary {
	if s, ok := services[id]; ok {
		return s
	}
	return model.ServiceSummary{ID: id}
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func validObjectIDs(ids []string) []primitive.ObjectID {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := mongotx.ObjectID(id); err == nil {
			oids = append(oids, oid)
		}
	}
	return oids
}
