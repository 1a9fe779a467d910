package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestWithTimeout_NoDeadline(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Second)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if time.Until(deadline) > time.Second {
		t.Errorf("deadline too far: %s", time.Until(deadline))
	}
}

func TestWithTimeout_KeepsEarlierDeadline(t *testing.T) {
	parent, cancelParent := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelParent()

	ctx, cancel := WithTimeout(parent, time.Hour)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if time.Until(deadline) > 50*time.Millisecond {
		t.Errorf("expected parent deadline to win, got %s", time.Until(deadline))
	}
}

func TestWithTimeout_SessionContextUnchanged(t *testing.T) {
	sessCtx := mongo.NewSessionContext(context.Background(), nil)

	ctx, cancel := WithTimeout(sessCtx, time.Second)
	defer cancel()

	if ctx != sessCtx {
		t.Error("session context should be returned unchanged")
	}
	if _, ok := ctx.Deadline(); ok {
		t.Error("session context should not gain a deadline")
	}
}

func TestObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := ObjectID(oid.Hex())
	if err != nil || got != oid {
		t.Fatalf("ObjectID(%s) = %v, %v", oid.Hex(), got, err)
	}

	_, err = ObjectID("not-hex")
	if !errors.Is(err, ErrInvalidObjectID) {
		t.Errorf("expected ErrInvalidObjectID, got %v", err)
	}

	_, err = ObjectIDs([]string{oid.Hex(), "bad"})
	if !errors.Is(err, ErrInvalidObjectID) {
		t.Errorf("expected ErrInvalidObjectID from ObjectIDs, got %v", err)
	}
}

func TestInsertedHex(t *testing.T) {
	oid := primitive.NewObjectID()
	if InsertedHex(oid) != oid.Hex() {
		t.Error("object id should convert to hex")
	}
	if InsertedHex("abc") != "abc" {
		t.Error("string ids pass through")
	}
	if InsertedHex(42) != "" {
		t.Error("unknown id types yield empty string")
	}
}
