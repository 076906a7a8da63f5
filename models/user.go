package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone" json:"phone"`
	Password string             `bson:"password" json:"-"`
	Role     Role               `bson:"role" json:"role"`

	PurchasedLands      []primitive.ObjectID `bson:"purchasedLands" json:"purchasedLands"`
	PurchasedHouses     []primitive.ObjectID `bson:"purchasedHouses" json:"purchasedHouses"`
	PurchasedApartments []primitive.ObjectID `bson:"purchasedApartments" json:"purchasedApartments"`
	FavoriteLands       []primitive.ObjectID `bson:"favoriteLands" json:"favoriteLands"`
	FavoriteHouses      []primitive.ObjectID `bson:"favoriteHouses" json:"favoriteHouses"`
	FavoriteApartments  []primitive.ObjectID `bson:"favoriteApartments" json:"favoriteApartments"`
	SubscribedServices  []primitive.ObjectID `bson:"subscribedServices" json:"subscribedServices"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasSubscribed reports whether the user's denormalized set already
// references the given service.
func (u *User) HasSubscribed(serviceID primitive.ObjectID) bool {
	for _, id := range u.SubscribedServices {
		if id == serviceID {
			return true
		}
	}
	return false
}
