package mongo

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidObjectID = errors.New("invalid object id")

// ObjectID parses a hex id, wrapping failures in ErrInvalidObjectID.
func ObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidObjectID, id)
	}
	return oid, nil
}

// ObjectIDs parses every id, failing on the first invalid one.
func ObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := ObjectID(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

// InsertedHex converts an InsertOne result id to its hex form.
func InsertedHex(insertedID any) string {
	if oid, ok := insertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	if s, ok := insertedID.(string); ok {
		return s
	}
	return ""
}
