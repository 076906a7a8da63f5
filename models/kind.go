package models

// PropertyKind discriminates the collection a polymorphic property
// reference resolves against.
type PropertyKind string

const (
	KindLand      PropertyKind = "Land"
	KindHouse     PropertyKind = "House"
	KindApartment PropertyKind = "Apartment"
	KindService   PropertyKind = "Service"
)

func (k PropertyKind) Valid() bool {
	switch k {
	case KindLand, KindHouse, KindApartment, KindService:
		return true
	}
	return false
}

// IsProperty reports whether the kind is a purchasable property rather
// than a subscribable service.
func (k PropertyKind) IsProperty() bool {
	return k == KindLand || k == KindHouse || k == KindApartment
}

// PurchasedField returns the User document field that records completed
// acquisitions of this kind.
func (k PropertyKind) PurchasedField() string {
	switch k {
	case KindLand:
		return "purchasedLands"
	case KindHouse:
		return "purchasedHouses"
	case KindApartment:
		return "purchasedApartments"
	case KindService:
		return "subscribedServices"
	}
	return ""
}

// FavoriteField returns the User document field mirroring favorites of
// this kind. Services cannot be favorited.
func (k PropertyKind) FavoriteField() string {
	switch k {
	case KindLand:
		return "favoriteLands"
	case KindHouse:
		return "favoriteHouses"
	case KindApartment:
		return "favoriteApartments"
	}
	return ""
}
