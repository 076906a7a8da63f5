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

// CollectionFor resolves a property kind to its collection. This is the
// single place the polymorphic discriminator is dispatched.
func CollectionFor(kind models.PropertyKind) *mongo.Collection {
	switch kind {
	case models.KindLand:
		return config.LandCollection
	case models.KindHouse:
		return config.HouseCollection
	case models.KindApartment:
		return config.ApartmentCollection
	case models.KindService:
		return config.ServiceCollection
	}
	return nil
}

// PropertyStore provides catalog access for one property kind.
type PropertyStore struct {
	kind models.PropertyKind
	coll *mongo.Collection
}

func NewPropertyStore(kind models.PropertyKind) *PropertyStore {
	return &PropertyStore{kind: kind, coll: CollectionFor(kind)}
}

func (s *PropertyStore) Kind() models.PropertyKind { return s.kind }

func (s *PropertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns a page of properties matching the filter plus the total
// match count.
func (s *PropertyStore) List(ctx context.Context, filter bson.M, q utils.PageQuery) ([]models.Property, int64, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: q.SortBy, Value: q.SortOrder}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, 0, err
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// FindByIDs fetches the given properties in one query, used by the
// favorites and portfolio read paths.
func (s *PropertyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var properties []models.Property
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, err
	}
	return properties, nil
}

func (s *PropertyStore) Insert(ctx context.Context, p *models.Property) error {
	p.ID = primitive.NewObjectID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.StatusAvailable
	}
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

// Update applies a partial update; callers strip protected fields first.
func (s *PropertyStore) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Property, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Property
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// MarkSold records a completed full-payment acquisition on the property.
func (s *PropertyStore) MarkSold(ctx context.Context, id, owner primitive.ObjectID, purchaseDate time.Time) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":       models.StatusSold,
		"owner":        owner,
		"purchaseDate": purchaseDate,
		"updatedAt":    time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PropertyStore) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.coll.CountDocuments(ctx, filter)
}

func (s *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
