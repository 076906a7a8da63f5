package store

import (
	"context"
	"time"

	"github.com/estatehub/backend/config"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentStore struct {
	coll *mongo.Collection
}

func NewPaymentStore() *PaymentStore {
	return &PaymentStore{coll: config.PaymentCollection}
}

func (s *PaymentStore) Insert(ctx context.Context, p *models.Payment) error {
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	if p.PaymentDate.IsZero() {
		p.PaymentDate = now
	}
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

func (s *PaymentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// FindByIDForUser scopes the lookup to the owning user, so one user can
// never read another's payment.
func (s *PaymentStore) FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *PaymentStore) findOne(ctx context.Context, filter bson.M) (*models.Payment, error) {
	var p models.Payment
	err := s.coll.FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CompleteIfPending performs the one-way Pending -> Completed transition
// as a single conditional update. Exactly one concurrent caller observes
// the updated document; the rest get ErrNotPending (or ErrNotFound when
// the payment does not exist at all). Only the winner may apply the
// ownership side effects.
func (s *PaymentStore) CompleteIfPending(ctx context.Context, id primitive.ObjectID, transactionID string) (*models.Payment, error) {
	set := bson.M{
		"status":    models.PaymentCompleted,
		"updatedAt": time.Now(),
	}
	if transactionID != "" {
		set["transactionId"] = transactionID
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.PaymentPending},
		bson.M{"$set": set}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		if _, findErr := s.FindByID(ctx, id); findErr == nil {
			return nil, ErrNotPending
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FailIfPending is the terminal failure transition, same conditional
// shape as CompleteIfPending.
func (s *PaymentStore) FailIfPending(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.PaymentPending},
		bson.M{"$set": bson.M{"status": models.PaymentFailed, "updatedAt": time.Now()}},
		opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		if _, findErr := s.FindByID(ctx, id); findErr == nil {
			return nil, ErrNotPending
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPlan converts a payment to an installment plan.
func (s *PaymentStore) SetPlan(ctx context.Context, id, userID primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{
			"paymentPlan":        models.PlanInstallment,
			"installmentDetails": details,
			"updatedAt":          time.Now(),
		}}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateInstallments persists advanced installment progress.
func (s *PaymentStore) UpdateInstallments(ctx context.Context, id primitive.ObjectID, details models.InstallmentDetails) (*models.Payment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Payment
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "paymentPlan": models.PlanInstallment},
		bson.M{"$set": bson.M{
			"installmentDetails": details,
			"updatedAt":          time.Now(),
		}}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PaymentStore) list(ctx context.Context, filter bson.M, q utils.PageQuery) ([]models.Payment, int64, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "paymentDate", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, err
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (s *PaymentStore) ListByUser(ctx context.Context, userID primitive.ObjectID, q utils.PageQuery) ([]models.Payment, int64, error) {
	return s.list(ctx, bson.M{"userId": userID}, q)
}

func (s *PaymentStore) ListAll(ctx context.Context, q utils.PageQuery) ([]models.Payment, int64, error) {
	return s.list(ctx, bson.M{}, q)
}

// ListPlansByUser returns the user's non-failed installment plans.
func (s *PaymentStore) ListPlansByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	cursor, err := s.coll.Find(ctx, bson.M{
		"userId":      userID,
		"paymentPlan": models.PlanInstallment,
		"status":      bson.M{"$ne": models.PaymentFailed},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// AllByUser returns every payment of one user, newest first, for the
// admin user-details view.
func (s *PaymentStore) AllByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "paymentDate", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// FindInstallmentForUser fetches an installment payment scoped to its owner.
func (s *PaymentStore) FindInstallmentForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Payment, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID, "paymentPlan": models.PlanInstallment})
}

// Recent returns the newest payments for the admin dashboard.
func (s *PaymentStore) Recent(ctx context.Context, limit int64) ([]models.Payment, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "paymentDate", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *PaymentStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// TotalRevenue sums the amounts of Completed payments.
func (s *PaymentStore) TotalRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.PaymentCompleted}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
