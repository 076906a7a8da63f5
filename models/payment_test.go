package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validIntent() *Payment {
	return &Payment{
		UserID:       primitive.NewObjectID(),
		Amount:       150000,
		Method:       MethodCreditCard,
		PropertyType: KindLand,
		PropertyID:   primitive.NewObjectID(),
		PaymentPlan:  PlanFull,
	}
}

func TestPaymentValidate(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)

	tests := []struct {
		name    string
		mutate  func(*Payment)
		wantErr string
	}{
		{name: "valid full payment", mutate: func(p *Payment) {}},
		{
			name:   "empty plan defaults to full",
			mutate: func(p *Payment) { p.PaymentPlan = "" },
		},
		{
			name: "valid installment plan",
			mutate: func(p *Payment) {
				p.PaymentPlan = PlanInstallment
				p.InstallmentDetails = &InstallmentDetails{TotalInstallments: 12, InstallmentsPaid: 1, NextPaymentDue: &due}
			},
		},
		{
			name:    "missing user",
			mutate:  func(p *Payment) { p.UserID = primitive.NilObjectID },
			wantErr: "userId is required",
		},
		{
			name:    "zero amount",
			mutate:  func(p *Payment) { p.Amount = 0 },
			wantErr: "amount must be greater than zero",
		},
		{
			name:    "negative amount",
			mutate:  func(p *Payment) { p.Amount = -10 },
			wantErr: "amount must be greater than zero",
		},
		{
			name:    "bad method",
			mutate:  func(p *Payment) { p.Method = "Barter" },
			wantErr: "invalid payment method",
		},
		{
			name:    "bad kind",
			mutate:  func(p *Payment) { p.PropertyType = "Castle" },
			wantErr: "invalid property type",
		},
		{
			name:    "bad plan",
			mutate:  func(p *Payment) { p.PaymentPlan = "Layaway" },
			wantErr: "invalid payment plan",
		},
		{
			name:    "installment plan without details",
			mutate:  func(p *Payment) { p.PaymentPlan = PlanInstallment },
			wantErr: "installment details are required",
		},
		{
			name: "installment plan missing due date",
			mutate: func(p *Payment) {
				p.PaymentPlan = PlanInstallment
				p.InstallmentDetails = &InstallmentDetails{TotalInstallments: 12, InstallmentsPaid: 2}
			},
			wantErr: "nextPaymentDue is required",
		},
		{
			name: "paid exceeds total",
			mutate: func(p *Payment) {
				p.PaymentPlan = PlanInstallment
				p.InstallmentDetails = &InstallmentDetails{TotalInstallments: 3, InstallmentsPaid: 4}
			},
			wantErr: "cannot exceed totalInstallments",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validIntent()
			tc.mutate(p)
			err := p.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPaymentStatusTransitions(t *testing.T) {
	require.True(t, PaymentPending.CanTransitionTo(PaymentCompleted))
	require.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	require.False(t, PaymentPending.CanTransitionTo(PaymentPending))
	require.False(t, PaymentCompleted.CanTransitionTo(PaymentFailed))
	require.False(t, PaymentCompleted.CanTransitionTo(PaymentPending))
	require.False(t, PaymentFailed.CanTransitionTo(PaymentCompleted))
}

func TestInstallmentDetailsFulfilled(t *testing.T) {
	var nilDetails *InstallmentDetails
	require.False(t, nilDetails.Fulfilled())
	require.False(t, (&InstallmentDetails{TotalInstallments: 12, InstallmentsPaid: 11}).Fulfilled())
	require.True(t, (&InstallmentDetails{TotalInstallments: 12, InstallmentsPaid: 12}).Fulfilled())
}
