package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is the source of truth for a user's bookmarks. The arrays on
// User are denormalized mirrors of these records.
type Favorite struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	PropertyType PropertyKind       `bson:"propertyType" json:"propertyType"`
	PropertyID   primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
