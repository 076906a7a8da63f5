package store

import (
	"context"
	"time"

	"github.com/estatehub/backend/config"
	"github.com/estatehub/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FavoriteStore struct {
	coll *mongo.Collection
}

func NewFavoriteStore() *FavoriteStore {
	return &FavoriteStore{coll: config.FavoriteCollection}
}

// Insert creates the favorite record. The unique compound index on
// (userId, propertyType, propertyId) makes this a single atomic
// insert-if-absent; a duplicate triple surfaces as ErrDuplicate.
func (s *FavoriteStore) Insert(ctx context.Context, f *models.Favorite) error {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now()
	_, err := s.coll.InsertOne(ctx, f)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// FindByIDForUser fetches a favorite scoped to its owner.
func (s *FavoriteStore) FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Favorite, error) {
	var f models.Favorite
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FavoriteStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProperty removes a user's favorite looked up by its triple.
func (s *FavoriteStore) DeleteByProperty(ctx context.Context, userID primitive.ObjectID, kind models.PropertyKind, propertyID primitive.ObjectID) (*models.Favorite, error) {
	var f models.Favorite
	err := s.coll.FindOneAndDelete(ctx, bson.M{
		"userId":       userID,
		"propertyType": kind,
		"propertyId":   propertyID,
	}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FavoriteStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	return s.listFilter(ctx, bson.M{"userId": userID})
}

func (s *FavoriteStore) ListByUserAndKind(ctx context.Context, userID primitive.ObjectID, kind models.PropertyKind) ([]models.Favorite, error) {
	return s.listFilter(ctx, bson.M{"userId": userID, "propertyType": kind})
}

func (s *FavoriteStore) listFilter(ctx context.Context, filter bson.M) ([]models.Favorite, error) {
	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var favorites []models.Favorite
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

// DeleteAllForProperty cascades a catalog deletion into the ledger.
func (s *FavoriteStore) DeleteAllForProperty(ctx context.Context, kind models.PropertyKind, propertyID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"propertyType": kind, "propertyId": propertyID})
	return err
}
