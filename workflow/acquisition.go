package workflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInconsistent marks a payment that completed but whose ownership side
// effects could not be applied. The payment record is the commit point;
// callers surface this instead of pretending the purchase finished.
var ErrInconsistent = errors.New("payment completed but ownership update failed")

// ErrDeclined marks a payment the gateway refused. The payment is
// already Failed when Process returns it.
var ErrDeclined = errors.New("payment declined")

// Acquisition turns a buyer's payment intent into a durable payment and,
// on completion, applies the ownership side effects exactly once.
type Acquisition struct {
	payments PaymentStore
	catalog  Catalog
	users    UserSets
	gateway  Gateway
}

func NewAcquisition(payments PaymentStore, catalog Catalog, users UserSets, gateway Gateway) *Acquisition {
	return &Acquisition{payments: payments, catalog: catalog, users: users, gateway: gateway}
}

// Initiate validates a payment intent against the referenced property and
// persists it as Pending.
func (a *Acquisition) Initiate(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := a.catalog.Resolve(ctx, p.PropertyType, p.PropertyID); err != nil {
		return nil, err
	}

	p.Status = models.PaymentPending
	p.PaymentDate = time.Now()
	if err := a.payments.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Process is the checkout path: initiate, run the gateway, complete. A
// gateway refusal fails the payment and reports why.
func (a *Acquisition) Process(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	pending, err := a.Initiate(ctx, p)
	if err != nil {
		return nil, err
	}

	txnID, err := a.gateway.Authorize(ctx, pending)
	if err == nil {
		err = a.gateway.Capture(ctx, txnID)
	}
	if err != nil {
		if _, failErr := a.payments.FailIfPending(ctx, pending.ID); failErr != nil {
			log.Printf("Failed to mark payment %s as failed: %v", pending.ID.Hex(), failErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeclined, err)
	}

	return a.complete(ctx, pending.ID, txnID)
}

// Complete flips a pending payment to Completed and applies the side
// effects. Safe to call concurrently and to replay: the conditional
// transition in the store admits exactly one winner, and replays get
// store.ErrNotPending.
func (a *Acquisition) Complete(ctx context.Context, paymentID primitive.ObjectID) (*models.Payment, error) {
	return a.complete(ctx, paymentID, "")
}

func (a *Acquisition) complete(ctx context.Context, paymentID primitive.ObjectID, transactionID string) (*models.Payment, error) {
	payment, err := a.payments.CompleteIfPending(ctx, paymentID, transactionID)
	if err != nil {
		return nil, err
	}

	// This call won the Pending -> Completed transition, so it alone
	// applies the cross-entity effects.
	now := time.Now()
	if payment.PropertyType.IsProperty() && payment.PaymentPlan == models.PlanFull {
		if err := a.catalog.MarkSold(ctx, payment.PropertyType, payment.PropertyID, payment.UserID, now); err != nil {
			log.Printf("Payment %s completed but property %s/%s was not marked sold: %v",
				payment.ID.Hex(), payment.PropertyType, payment.PropertyID.Hex(), err)
			return payment, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}

	if err := a.users.AddToSet(ctx, payment.UserID, payment.PropertyType.PurchasedField(), payment.PropertyID); err != nil {
		log.Printf("Payment %s completed but user %s purchased set was not updated: %v",
			payment.ID.Hex(), payment.UserID.Hex(), err)
		return payment, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	return payment, nil
}

// ConvertToPlan turns an existing payment into an installment plan with
// one installment counted as paid, matching the admin plan-update flow.
func (a *Acquisition) ConvertToPlan(ctx context.Context, paymentID, userID primitive.ObjectID, totalInstallments int, nextPaymentDue time.Time) (*models.Payment, error) {
	details := models.InstallmentDetails{
		TotalInstallments: totalInstallments,
		InstallmentsPaid:  1,
		NextPaymentDue:    &nextPaymentDue,
	}
	if details.Fulfilled() {
		details.NextPaymentDue = nil
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return a.payments.SetPlan(ctx, paymentID, userID, details)
}

// MarkInstallment advances an installment plan by delta payments and
// recomputes the next due date. A fulfilled plan clears the due date but
// does not transfer ownership; the explicit admin completion step does
// that (see DESIGN.md).
func (a *Acquisition) MarkInstallment(ctx context.Context, paymentID, userID primitive.ObjectID, delta int, nextPaymentDue *time.Time) (*models.Payment, error) {
	if delta < 1 {
		return nil, models.Invalid("installment delta must be at least 1")
	}

	payment, err := a.payments.FindInstallmentForUser(ctx, paymentID, userID)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentFailed {
		return nil, store.ErrNotPending
	}
	if payment.InstallmentDetails == nil {
		return nil, models.Invalid("payment has no installment details")
	}

	details := *payment.InstallmentDetails
	details.InstallmentsPaid += delta
	if details.InstallmentsPaid > details.TotalInstallments {
		details.InstallmentsPaid = details.TotalInstallments
	}

	if details.Fulfilled() {
		details.NextPaymentDue = nil
	} else if nextPaymentDue != nil {
		details.NextPaymentDue = nextPaymentDue
	} else if details.NextPaymentDue != nil {
		due := details.NextPaymentDue.AddDate(0, 1, 0)
		details.NextPaymentDue = &due
	}

	if err := details.Validate(); err != nil {
		return nil, err
	}
	return a.payments.UpdateInstallments(ctx, paymentID, details)
}

// History returns the caller's payments, newest first.
func (a *Acquisition) History(ctx context.Context, userID primitive.ObjectID, q utils.PageQuery) ([]models.Payment, int64, error) {
	return a.payments.ListByUser(ctx, userID, q)
}

// Details returns a payment scoped to the requesting user; admins may
// read any payment.
func (a *Acquisition) Details(ctx context.Context, paymentID, userID primitive.ObjectID, isAdmin bool) (*models.Payment, error) {
	if isAdmin {
		return a.payments.FindByID(ctx, paymentID)
	}
	return a.payments.FindByIDForUser(ctx, paymentID, userID)
}

// Plans returns the caller's active installment plans.
func (a *Acquisition) Plans(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	return a.payments.ListPlansByUser(ctx, userID)
}

// Installment returns one installment payment scoped to its owner.
func (a *Acquisition) Installment(ctx context.Context, paymentID, userID primitive.ObjectID) (*models.Payment, error) {
	return a.payments.FindInstallmentForUser(ctx, paymentID, userID)
}
