package repository

import (
	"errors"
	"testing"
	"time"

	disputeserrors "taskhire/internal/disputes/errors"
	"taskhire/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter model.DisputeFilter
		want   bson.M
	}{
		{"empty", model.DisputeFilter{}, bson.M{}},
		{"status only", model.DisputeFilter{Status: model.DisputeOpen}, bson.M{"status": model.DisputeOpen}},
		{
			"party matches either side",
			model.DisputeFilter{Party: "u1"},
			bson.M{"$or": bson.A{bson.M{"raisedBy": "u1"}, bson.M{"against": "u1"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildFilter(tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("buildFilter() = %v, want %v", got, tt.want)
			}
			if tt.filter.Status != "" && got["status"] != tt.want["status"] {
				t.Errorf("status = %v, want %v", got["status"], tt.want["status"])
			}
			if tt.filter.Party != "" {
				or, ok := got["$or"].(bson.A)
				if !ok || len(or) != 2 {
					t.Fatalf("expected $or over two sides, got %v", got["$or"])
				}
			}
		})
	}
}

func TestBuildUpdate_AppendsHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resolved := model.DisputeResolved
	level := 2

	update := buildUpdate(Change{
		Status:          &resolved,
		History:         []model.StatusEntry{{Status: resolved, UpdatedBy: "a1", Timestamp: now}},
		Attachments:     []model.Attachment{{URL: "https://x/y.png", UploadedBy: "a1"}},
		EscalationLevel: &level,
		EscalatedBy:     "a1",
		UpdatedBy:       model.Actor{ID: "a1", Role: model.RoleAdmin},
	}, now)

	set := update["$set"].(bson.M)
	if set["status"] != resolved || set["escalationLevel"] != 2 || set["escalatedBy"] != "a1" {
		t.Errorf("unexpected $set: %v", set)
	}
	if set["updatedByModel"] != "Admin" {
		t.Errorf("updatedByModel = %v", set["updatedByModel"])
	}
	if _, ok := set["statusHistory"]; ok {
		t.Error("history must never be overwritten")
	}

	push, ok := update["$push"].(bson.M)
	if !ok {
		t.Fatalf("expected $push, got %v", update)
	}
	if _, ok := push["statusHistory"]; !ok {
		t.Error("history entry should be pushed")
	}
	if _, ok := push["attachments"]; !ok {
		t.Error("attachments should be pushed")
	}
}

func TestBuildUpdate_NothingToPush(t *testing.T) {
	update := buildUpdate(Change{UpdatedBy: model.Actor{ID: "c1", Role: model.RoleCustomer}}, time.Now())
	if _, ok := update["$push"]; ok {
		t.Errorf("unexpected $push: %v", update)
	}
	if _, ok := update["$set"].(bson.M)["resolution"]; ok {
		t.Error("resolution untouched when absent")
	}
}

func TestUpdateFilter_GuardsStatus(t *testing.T) {
	oid := primitive.NewObjectID()
	rejected := model.DisputeRejected

	filter := updateFilter(oid, Change{Status: &rejected, From: model.DisputeOpen})
	if filter["_id"] != oid || filter["status"] != model.DisputeOpen {
		t.Errorf("status change should match id and previous status, got %v", filter)
	}

	filter = updateFilter(oid, Change{Attachments: []model.Attachment{{URL: "https://x/y.png"}}})
	if _, ok := filter["status"]; ok || len(filter) != 1 {
		t.Errorf("changes without a status should match the id only, got %v", filter)
	}
}

func TestObjectID_Invalid(t *testing.T) {
	if _, err := objectID("nope"); !errors.Is(err, disputeserrors.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}
