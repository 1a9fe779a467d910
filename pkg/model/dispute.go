package model

import "time"

type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "Open"
	DisputeResolved DisputeStatus = "Resolved"
	DisputeRejected DisputeStatus = "Rejected"
)

const (
	FieldAttachments     = "attachments"
	FieldResolution      = "resolution"
	FieldEscalationLevel = "escalationLevel"
)

const MaxEscalationLevel = 5

type Attachment struct {
	URL        string    `json:"url" bson:"url"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	UploadedBy string    `json:"uploadedBy" bson:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt" bson:"uploadedAt"`
}

type StatusEntry struct {
	Status    DisputeStatus `json:"status" bson:"status"`
	UpdatedBy string        `json:"updatedBy" bson:"updatedBy"`
	Notes     string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
}

type Resolution struct {
	Decision   string     `json:"decision,omitempty" bson:"decision,omitempty"`
	Notes      string     `json:"notes,omitempty" bson:"notes,omitempty"`
	ResolvedBy string     `json:"resolvedBy,omitempty" bson:"resolvedBy,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty" bson:"resolvedAt,omitempty"`
}

type Dispute struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty"`
	Booking         string        `json:"booking" bson:"booking"`
	RaisedBy        string        `json:"raisedBy" bson:"raisedBy"`
	RaisedByModel   string        `json:"raisedByModel" bson:"raisedByModel"`
	Against         string        `json:"against,omitempty" bson:"against,omitempty"`
	AgainstModel    string        `json:"againstModel,omitempty" bson:"againstModel,omitempty"`
	Reason          string        `json:"reason" bson:"reason"`
	Details         string        `json:"details,omitempty" bson:"details,omitempty"`
	Attachments     []Attachment  `json:"attachments" bson:"attachments"`
	Status          DisputeStatus `json:"status" bson:"status"`
	StatusHistory   []StatusEntry `json:"statusHistory" bson:"statusHistory"`
	Resolution      *Resolution   `json:"resolution,omitempty" bson:"resolution,omitempty"`
	EscalationLevel int           `json:"escalationLevel" bson:"escalationLevel"`
	EscalatedBy     string        `json:"escalatedBy,omitempty" bson:"escalatedBy,omitempty"`
	CreatedBy       string        `json:"createdBy" bson:"createdBy"`
	CreatedByModel  string        `json:"createdByModel" bson:"createdByModel"`
	UpdatedBy       string        `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedByModel  string        `json:"updatedByModel,omitempty" bson:"updatedByModel,omitempty"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// Parties returns the raisedBy and against parties, skipping an empty against.
func (d *Dispute) Parties() []Party {
	parties := []Party{{ID: d.RaisedBy, Role: RoleFromModel(d.RaisedByModel)}}
	if d.Against != "" {
		parties = append(parties, Party{ID: d.Against, Role: RoleFromModel(d.AgainstModel)})
	}
	return parties
}

type AttachmentInput struct {
	URL  string `json:"url" validate:"required,url,max=2048"`
	Name string `json:"name,omitempty" validate:"omitempty,max=200"`
}

type DisputeInput struct {
	Booking     string            `json:"bookingId" validate:"required,mongodb"`
	Reason      string            `json:"reason" validate:"required,min=2,max=200"`
	Details     string            `json:"details,omitempty" validate:"omitempty,max=5000"`
	Attachments []AttachmentInput `json:"attachments,omitempty" validate:"omitempty,max=20,dive"`
}

type ResolutionInput struct {
	Decision *string `json:"decision,omitempty" validate:"omitempty,max=200"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type DisputePatch struct {
	Status          *DisputeStatus    `json:"status,omitempty" validate:"omitempty,oneof=Open Resolved Rejected"`
	Notes           *string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Attachments     []AttachmentInput `json:"attachments,omitempty" validate:"omitempty,max=20,dive"`
	Resolution      *ResolutionInput  `json:"resolution,omitempty"`
	EscalationLevel *int              `json:"escalationLevel,omitempty" validate:"omitempty,min=0,max=5"`
}

func (p *DisputePatch) Fields() []string {
	var fields []string
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.Notes != nil {
		fields = append(fields, FieldNotes)
	}
	if len(p.Attachments) > 0 {
		fields = append(fields, FieldAttachments)
	}
	if p.Resolution != nil {
		fields = append(fields, FieldResolution)
	}
	if p.EscalationLevel != nil {
		fields = append(fields, FieldEscalationLevel)
	}
	return fields
}

func (p *DisputePatch) Restrict(allowed FieldSet) []string {
	var dropped []string
	if p.Status != nil && !allowed.Has(FieldStatus) {
		p.Status = nil
		dropped = append(dropped, FieldStatus)
	}
	if p.Notes != nil && !allowed.Has(FieldNotes) {
		p.Notes = nil
		dropped = append(dropped, FieldNotes)
	}
	if len(p.Attachments) > 0 && !allowed.Has(FieldAttachments) {
		p.Attachments = nil
		dropped = append(dropped, FieldAttachments)
	}
	if p.Resolution != nil && !allowed.Has(FieldResolution) {
		p.Resolution = nil
		dropped = append(dropped, FieldResolution)
	}
	if p.EscalationLevel != nil && !allowed.Has(FieldEscalationLevel) {
		p.EscalationLevel = nil
		dropped = append(dropped, FieldEscalationLevel)
	}
	return dropped
}

type DisputeFilter struct {
	// Party matches disputes where the user is raisedBy or against.
	Party  string
	Status DisputeStatus
}
