package model

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "Pending"
	BookingInProgress BookingStatus = "In-progress"
	BookingCompleted  BookingStatus = "Completed"
	BookingCancelled  BookingStatus = "Cancelled"
)

// Booking field names as they appear in patches and authorization tables.
const (
	FieldDate     = "date"
	FieldTime     = "time"
	FieldLocation = "location"
	FieldNotes    = "notes"
	FieldStatus   = "status"
	FieldPrice    = "price"
	FieldBilling  = "billing"
)

type Billing struct {
	Name    string `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,max=120"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=32"`
	Address string `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=300"`
}

type Review struct {
	Rating    int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment,omitempty" bson:"comment,omitempty" validate:"omitempty,max=2000"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Booking struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Customer       string        `json:"customer" bson:"customer" validate:"required,mongodb"`
	Worker         string        `json:"worker" bson:"worker" validate:"required,mongodb"`
	Service        string        `json:"service" bson:"service" validate:"required,mongodb"`
	Date           time.Time     `json:"date" bson:"date" validate:"required"`
	Time           string        `json:"time,omitempty" bson:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Location       string        `json:"location" bson:"location" validate:"required,min=2,max=300"`
	Notes          string        `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	Status         BookingStatus `json:"status" bson:"status" validate:"required,oneof=Pending In-progress Completed Cancelled"`
	Price          float64       `json:"price" bson:"price" validate:"min=0"`
	Billing        *Billing      `json:"billing,omitempty" bson:"billing,omitempty"`
	Review         *Review       `json:"review,omitempty" bson:"review,omitempty"`
	Dispute        string        `json:"dispute,omitempty" bson:"dispute,omitempty"`
	IsPaid         bool          `json:"isPaid" bson:"isPaid"`
	CreatedBy      string        `json:"createdBy" bson:"createdBy"`
	CreatedByModel string        `json:"createdByModel" bson:"createdByModel"`
	UpdatedBy      string        `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedByModel string        `json:"updatedByModel,omitempty" bson:"updatedByModel,omitempty"`
	Version        int64         `json:"version" bson:"version"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// BookingInput is the create payload. Customer is honoured only for admins.
type BookingInput struct {
	Customer string     `json:"customer,omitempty" validate:"omitempty,mongodb"`
	Worker   string     `json:"worker"`
	Service  string     `json:"service"`
	Date     *time.Time `json:"date"`
	Time     string     `json:"time,omitempty"`
	Location string     `json:"location"`
	Notes    string     `json:"notes,omitempty"`
	Price    *float64   `json:"price,omitempty"`
	Billing  *Billing   `json:"billing,omitempty"`
}

// BookingPatch is a partial update. Nil fields are left untouched. Version,
// when present, must match the stored version for the write to succeed.
type BookingPatch struct {
	Date     *time.Time     `json:"date,omitempty"`
	Time     *string        `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Location *string        `json:"location,omitempty" validate:"omitempty,min=2,max=300"`
	Notes    *string        `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status   *BookingStatus `json:"status,omitempty" validate:"omitempty,oneof=Pending In-progress Completed Cancelled"`
	Price    *float64       `json:"price,omitempty" validate:"omitempty,min=0"`
	Billing  *Billing       `json:"billing,omitempty"`
	Version  *int64         `json:"version,omitempty"`
}

// Fields lists the writable fields present in the patch.
func (p *BookingPatch) Fields() []string {
	var fields []string
	if p.Date != nil {
		fields = append(fields, FieldDate)
	}
	if p.Time != nil {
		fields = append(fields, FieldTime)
	}
	if p.Location != nil {
		fields = append(fields, FieldLocation)
	}
	if p.Notes != nil {
		fields = append(fields, FieldNotes)
	}
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.Price != nil {
		fields = append(fields, FieldPrice)
	}
	if p.Billing != nil {
		fields = append(fields, FieldBilling)
	}
	return fields
}

// Restrict clears every field not in allowed and returns the dropped names.
func (p *BookingPatch) Restrict(allowed FieldSet) []string {
	var dropped []string
	drop := func(field string) bool {
		if allowed.Has(field) {
			return false
		}
		dropped = append(dropped, field)
		return true
	}

	if p.Date != nil && drop(FieldDate) {
		p.Date = nil
	}
	if p.Time != nil && drop(FieldTime) {
		p.Time = nil
	}
	if p.Location != nil && drop(FieldLocation) {
		p.Location = nil
	}
	if p.Notes != nil && drop(FieldNotes) {
		p.Notes = nil
	}
	if p.Status != nil && drop(FieldStatus) {
		p.Status = nil
	}
	if p.Price != nil && drop(FieldPrice) {
		p.Price = nil
	}
	if p.Billing != nil && drop(FieldBilling) {
		p.Billing = nil
	}
	return dropped
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

// UserSummary is the populated form of a customer or worker ref.
type UserSummary struct {
	ID    string `json:"id" bson:"_id"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// ServiceSummary is the populated form of a service ref.
type ServiceSummary struct {
	ID       string  `json:"id" bson:"_id"`
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Category string  `json:"category,omitempty" bson:"category,omitempty"`
	Price    float64 `json:"price,omitempty" bson:"price,omitempty"`
}

// BookingView is a booking with its refs resolved. The outer fields shadow
// the embedded string refs when encoded.
type BookingView struct {
	Booking
	Customer UserSummary    `json:"customer"`
	Worker   UserSummary    `json:"worker"`
	Service  ServiceSummary `json:"service"`
}

type BookingFilter struct {
	Customer string
	Worker   string
	Status   BookingStatus
}
