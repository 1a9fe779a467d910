package model

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
	PaymentFailed   PaymentStatus = "Failed"
)

type PaymentMethod string

const (
	MethodCash       PaymentMethod = "Cash"
	MethodCard       PaymentMethod = "Card"
	MethodUPI        PaymentMethod = "UPI"
	MethodNetBanking PaymentMethod = "NetBanking"
	MethodWallet     PaymentMethod = "Wallet"
	MethodOther      PaymentMethod = "Other"
)

const (
	FieldAmount        = "amount"
	FieldMethod        = "method"
	FieldTransactionID = "transactionId"
)

type Payment struct {
	ID             string        `json:"id,omitempty" bson:"_id,omitempty"`
	Booking        string        `json:"booking" bson:"booking" validate:"required,mongodb"`
	Customer       string        `json:"customer" bson:"customer" validate:"required,mongodb"`
	Worker         string        `json:"worker" bson:"worker" validate:"required,mongodb"`
	Amount         float64       `json:"amount" bson:"amount" validate:"min=0"`
	Status         PaymentStatus `json:"status" bson:"status" validate:"required,oneof=Pending Paid Refunded Failed"`
	Method         PaymentMethod `json:"method" bson:"method" validate:"required,oneof=Cash Card UPI NetBanking Wallet Other"`
	TransactionID  string        `json:"transactionId,omitempty" bson:"transactionId,omitempty" validate:"omitempty,max=128"`
	CreatedBy      string        `json:"createdBy" bson:"createdBy"`
	CreatedByModel string        `json:"createdByModel" bson:"createdByModel"`
	UpdatedBy      string        `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedByModel string        `json:"updatedByModel,omitempty" bson:"updatedByModel,omitempty"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt"`
}

type PaymentInput struct {
	Amount        *float64      `json:"amount" validate:"required,min=0"`
	Method        PaymentMethod `json:"method" validate:"required,oneof=Cash Card UPI NetBanking Wallet Other"`
	TransactionID string        `json:"transactionId,omitempty" validate:"omitempty,max=128"`
}

type PaymentPatch struct {
	Amount        *float64       `json:"amount,omitempty" validate:"omitempty,min=0"`
	Method        *PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=Cash Card UPI NetBanking Wallet Other"`
	Status        *PaymentStatus `json:"status,omitempty" validate:"omitempty,oneof=Pending Paid Refunded Failed"`
	TransactionID *string        `json:"transactionId,omitempty" validate:"omitempty,max=128"`
}

func (p *PaymentPatch) Fields() []string {
	var fields []string
	if p.Amount != nil {
		fields = append(fields, FieldAmount)
	}
	if p.Method != nil {
		fields = append(fields, FieldMethod)
	}
	if p.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if p.TransactionID != nil {
		fields = append(fields, FieldTransactionID)
	}
	return fields
}

func (p *PaymentPatch) Restrict(allowed FieldSet) []string {
	var dropped []string
	if p.Amount != nil && !allowed.Has(FieldAmount) {
		p.Amount = nil
		dropped = append(dropped, FieldAmount)
	}
	if p.Method != nil && !allowed.Has(FieldMethod) {
		p.Method = nil
		dropped = append(dropped, FieldMethod)
	}
	if p.Status != nil && !allowed.Has(FieldStatus) {
		p.Status = nil
		dropped = append(dropped, FieldStatus)
	}
	if p.TransactionID != nil && !allowed.Has(FieldTransactionID) {
		p.TransactionID = nil
		dropped = append(dropped, FieldTransactionID)
	}
	return dropped
}

type PaymentFilter struct {
	Customer string
	Worker   string
}
