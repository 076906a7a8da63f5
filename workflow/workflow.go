// Package workflow holds the business logic that spans more than one
// entity: the acquisition workflow turning payment intents into owned
// properties, service subscriptions, and the favorites ledger. Each
// workflow owns the narrow store contracts it needs so it can be tested
// against stubs.
package workflow

import (
	"context"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStore is the payment persistence contract.
type PaymentStore interface {
	Insert(ctx context.Context, p *models.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error)
	CompleteIfPending(ctx context.Context, id primitive.ObjectID, transactionID string) (*models.Payment, error)
	FailIfPending(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	SetPlan(ctx context.Context, id, userID primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error)
	UpdateInstallments(ctx context.Context, id primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error)
	FindInstallmentForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, q utils.PageQuery) ([]models.Payment, int64, error)
	ListPlansByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
}

// Catalog resolves polymorphic property references and applies ownership
// transfers.
type Catalog interface {
	Resolve(ctx context.Context, kind models.PropertyKind, id primitive.ObjectID) error
	MarkSold(ctx context.Context, kind models.PropertyKind, id, owner primitive.ObjectID, purchaseDate time.Time) error
}

// UserSets mutates the denormalized relationship arrays on User records.
type UserSets interface {
	AddToSet(ctx context.Context, userID primitive.ObjectID, field string, id primitive.ObjectID) error
	PullFromSet(ctx context.Context, userID primitive.ObjectID, field string, id primitive.ObjectID) error
}
