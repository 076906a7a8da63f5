package workflow

import (
	"context"

	"github.com/estatehub/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FavoriteRecords is the ledger-side favorites contract. Insert relies on
// the unique (user, type, property) index and returns store.ErrDuplicate
// for a repeated triple.
type FavoriteRecords interface {
	Insert(ctx context.Context, f *models.Favorite) error
	FindByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Favorite, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProperty(ctx context.Context, userID primitive.ObjectID, kind models.PropertyKind, propertyID primitive.ObjectID) (*models.Favorite, error)
}

// Favorites is the bookmarking ledger. The Favorite collection is the
// source of truth; the arrays on User are mirrors updated after the
// record write succeeds.
type Favorites struct {
	records FavoriteRecords
	catalog Catalog
	users   UserSets
}

func NewFavorites(records FavoriteRecords, catalog Catalog, users UserSets) *Favorites {
	return &Favorites{records: records, catalog: catalog, users: users}
}

// Add bookmarks a property for the user. Services cannot be favorited.
func (f *Favorites) Add(ctx context.Context, userID primitive.ObjectID, kind models.PropertyKind, propertyID primitive.ObjectID) (*models.Favorite, error) {
	if !kind.IsProperty() {
		return nil, models.Invalid("invalid property type %q", kind)
	}
	if err := f.catalog.Resolve(ctx, kind, propertyID); err != nil {
		return nil, err
	}

	fav := &models.Favorite{UserID: userID, PropertyType: kind, PropertyID: propertyID}
	if err := f.records.Insert(ctx, fav); err != nil {
		return nil, err
	}
	if err := f.users.AddToSet(ctx, userID, kind.FavoriteField(), propertyID); err != nil {
		return fav, err
	}
	return fav, nil
}

// Remove deletes a favorite by its id, scoped to the caller, and pulls
// the mirror entry.
func (f *Favorites) Remove(ctx context.Context, userID, favoriteID primitive.ObjectID) error {
	fav, err := f.records.FindByIDForUser(ctx, favoriteID, userID)
	if err != nil {
		return err
	}
	if err := f.records.Delete(ctx, fav.ID); err != nil {
		return err
	}
	return f.users.PullFromSet(ctx, userID, fav.PropertyType.FavoriteField(), fav.PropertyID)
}

// RemoveByProperty deletes a favorite looked up by its triple, used by
// the per-kind unfavorite routes.
func (f *Favorites) RemoveByProperty(ctx context.Context, userID primitive.ObjectID, kind models.PropertyKind, propertyID primitive.ObjectID) error {
	fav, err := f.records.DeleteByProperty(ctx, userID, kind, propertyID)
	if err != nil {
		return err
	}
	return f.users.PullFromSet(ctx, userID, fav.PropertyType.FavoriteField(), fav.PropertyID)
}
