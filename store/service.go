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

type ServiceStore struct {
	coll *mongo.Collection
}

func NewServiceStore() *ServiceStore {
	return &ServiceStore{coll: config.ServiceCollection}
}

func (s *ServiceStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var svc models.Service
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *ServiceStore) List(ctx context.Context, filter bson.M, q utils.PageQuery) ([]models.Service, int64, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: q.SortOrder}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, 0, err
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (s *ServiceStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	if len(ids) == 0 {
		return []models.Service{}, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *ServiceStore) Insert(ctx context.Context, svc *models.Service) error {
	svc.ID = primitive.NewObjectID()
	now := time.Now()
	svc.CreatedAt = now
	svc.UpdatedAt = now
	if svc.Status == "" {
		svc.Status = models.ServiceActive
	}
	_, err := s.coll.InsertOne(ctx, svc)
	return err
}

func (s *ServiceStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Service, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var svc models.Service
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&svc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *ServiceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddSubscriber adds the user to the service's subscriber set as a single
// conditional update: the $ne guard means only one of two concurrent
// subscribe calls can match, closing the check-then-act race.
func (s *ServiceStore) AddSubscriber(ctx context.Context, serviceID, userID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": serviceID, "subscribers": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"subscribers": userID},
			"$set":      bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, findErr := s.FindByID(ctx, serviceID); findErr != nil {
			return findErr
		}
		return ErrAlreadySubscribed
	}
	return nil
}

// RemoveSubscriber is the inverse conditional update.
func (s *ServiceStore) RemoveSubscriber(ctx context.Context, serviceID, userID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": serviceID, "subscribers": userID},
		bson.M{
			"$pull": bson.M{"subscribers": userID},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, findErr := s.FindByID(ctx, serviceID); findErr != nil {
			return findErr
		}
		return ErrNotSubscribed
	}
	return nil
}

func (s *ServiceStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}
