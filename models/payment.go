package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "Credit Card"
	MethodDebitCard    PaymentMethod = "Debit Card"
	MethodBankTransfer PaymentMethod = "Bank Transfer"
	MethodCash         PaymentMethod = "Cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodDebitCard, MethodBankTransfer, MethodCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

// CanTransitionTo enforces the one-way lifecycle: Pending may move to
// Completed or Failed, both of which are terminal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentPending && (next == PaymentCompleted || next == PaymentFailed)
}

type PaymentPlan string

const (
	PlanFull        PaymentPlan = "Full Payment"
	PlanInstallment PaymentPlan = "Installment"
)

type InstallmentDetails struct {
	TotalInstallments int        `bson:"totalInstallments" json:"totalInstallments"`
	InstallmentsPaid  int        `bson:"installmentsPaid" json:"installmentsPaid"`
	NextPaymentDue    *time.Time `bson:"nextPaymentDue,omitempty" json:"nextPaymentDue,omitempty"`
}

// Fulfilled reports whether every installment has been paid.
func (d *InstallmentDetails) Fulfilled() bool {
	return d != nil && d.InstallmentsPaid >= d.TotalInstallments
}

func (d *InstallmentDetails) Validate() error {
	if d == nil {
		return Invalid("installment details are required for installment plans")
	}
	if d.TotalInstallments < 1 {
		return Invalid("totalInstallments must be at least 1")
	}
	if d.InstallmentsPaid < 1 {
		return Invalid("installmentsPaid must be at least 1")
	}
	if d.InstallmentsPaid > d.TotalInstallments {
		return Invalid("installmentsPaid cannot exceed totalInstallments")
	}
	if d.InstallmentsPaid < d.TotalInstallments && d.NextPaymentDue == nil {
		return Invalid("nextPaymentDue is required while installments remain")
	}
	return nil
}

type Payment struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	UserID             primitive.ObjectID  `bson:"userId" json:"userId"`
	Amount             float64             `bson:"amount" json:"amount"`
	Method             PaymentMethod       `bson:"method" json:"method"`
	Status             PaymentStatus       `bson:"status" json:"status"`
	PropertyType       PropertyKind        `bson:"propertyType" json:"propertyType"`
	PropertyID         primitive.ObjectID  `bson:"propertyId" json:"propertyId"`
	TransactionID      string              `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	PaymentDate        time.Time           `bson:"paymentDate" json:"paymentDate"`
	PaymentPlan        PaymentPlan         `bson:"paymentPlan" json:"paymentPlan"`
	InstallmentDetails *InstallmentDetails `bson:"installmentDetails,omitempty" json:"installmentDetails,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks a payment intent before it is persisted.
func (p *Payment) Validate() error {
	if p.UserID.IsZero() {
		return Invalid("userId is required")
	}
	if p.PropertyID.IsZero() {
		return Invalid("propertyId is required")
	}
	if !p.PropertyType.Valid() {
		return Invalid("invalid property type %q", p.PropertyType)
	}
	if p.Amount <= 0 {
		return Invalid("amount must be greater than zero")
	}
	if !p.Method.Valid() {
		return Invalid("invalid payment method %q", p.Method)
	}
	if p.PaymentPlan == "" {
		p.PaymentPlan = PlanFull
	}
	switch p.PaymentPlan {
	case PlanFull:
	case PlanInstallment:
		if err := p.InstallmentDetails.Validate(); err != nil {
			return err
		}
	default:
		return Invalid("invalid payment plan %q", p.PaymentPlan)
	}
	return nil
}
