package store

import (
	"context"
	"time"

	"github.com/estatehub/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Catalog resolves polymorphic property references across the four kind
// collections. It is the storage side of the acquisition workflow's
// Catalog contract.
type Catalog struct{}

func NewCatalog() *Catalog { return &Catalog{} }

// Resolve reports whether a record of the given kind exists.
func (c *Catalog) Resolve(ctx context.Context, kind models.PropertyKind, id primitive.ObjectID) error {
	coll := CollectionFor(kind)
	if coll == nil {
		return ErrNotFound
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSold transfers ownership of a purchasable property.
func (c *Catalog) MarkSold(ctx context.Context, kind models.PropertyKind, id, owner primitive.ObjectID, purchaseDate time.Time) error {
	if !kind.IsProperty() {
		return nil
	}
	res, err := CollectionFor(kind).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
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
