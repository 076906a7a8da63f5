package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "Available"
	StatusSold      PropertyStatus = "Sold"
	StatusReserved  PropertyStatus = "Reserved"
	StatusForRent   PropertyStatus = "For Rent"
	StatusRented    PropertyStatus = "Rented"
)

// ValidFor reports whether the status is allowed for the given kind.
// Land has no rental statuses.
func (s PropertyStatus) ValidFor(kind PropertyKind) bool {
	switch s {
	case StatusAvailable, StatusSold, StatusReserved:
		return true
	case StatusForRent, StatusRented:
		return kind == KindHouse || kind == KindApartment
	}
	return false
}

// IsRental reports whether the status requires rent fields.
func (s PropertyStatus) IsRental() bool {
	return s == StatusForRent || s == StatusRented
}

type RentPeriod string

const (
	RentDaily   RentPeriod = "Daily"
	RentWeekly  RentPeriod = "Weekly"
	RentMonthly RentPeriod = "Monthly"
	RentYearly  RentPeriod = "Yearly"
)

func (p RentPeriod) Valid() bool {
	switch p {
	case RentDaily, RentWeekly, RentMonthly, RentYearly:
		return true
	}
	return false
}

type Landmark struct {
	Name     string `bson:"name" json:"name"`
	Distance string `bson:"distance" json:"distance"`
}

type Document struct {
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
}

// Property is the shared shape of Land, House and Apartment records.
// Kind-specific fields are optional and only populated for the kinds
// that carry them; each kind still lives in its own collection.
type Property struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Title           string              `bson:"title" json:"title"`
	Location        string              `bson:"location" json:"location"`
	Price           float64             `bson:"price" json:"price"`
	Size            string              `bson:"size" json:"size"`
	Status          PropertyStatus      `bson:"status" json:"status"`
	Images          []string            `bson:"images" json:"images"`
	Video           string              `bson:"video,omitempty" json:"video,omitempty"`
	BrochureURL     string              `bson:"brochureUrl,omitempty" json:"brochureUrl,omitempty"`
	PurchaseDate    *time.Time          `bson:"purchaseDate" json:"purchaseDate"`
	InspectionDates []time.Time         `bson:"inspectionDates,omitempty" json:"inspectionDates,omitempty"`
	Description     string              `bson:"description" json:"description"`
	Features        []string            `bson:"features,omitempty" json:"features,omitempty"`
	Landmarks       []Landmark          `bson:"landmarks,omitempty" json:"landmarks,omitempty"`
	Documents       []Document          `bson:"documents,omitempty" json:"documents,omitempty"`
	Owner           *primitive.ObjectID `bson:"owner" json:"owner"`

	// House and Apartment only.
	HouseType  string     `bson:"propertyType,omitempty" json:"propertyType,omitempty"`
	Bedrooms   int        `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms  int        `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	YearBuilt  int        `bson:"yearBuilt,omitempty" json:"yearBuilt,omitempty"`
	RentPrice  float64    `bson:"rentPrice,omitempty" json:"rentPrice,omitempty"`
	RentPeriod RentPeriod `bson:"rentPeriod,omitempty" json:"rentPeriod,omitempty"`

	// House only.
	Garage         bool `bson:"garage,omitempty" json:"garage,omitempty"`
	GarageCapacity int  `bson:"garageCapacity,omitempty" json:"garageCapacity,omitempty"`
	HasGarden      bool `bson:"hasGarden,omitempty" json:"hasGarden,omitempty"`
	HasPool        bool `bson:"hasPool,omitempty" json:"hasPool,omitempty"`

	// Apartment only.
	Floor           int    `bson:"floor,omitempty" json:"floor,omitempty"`
	Unit            string `bson:"unit,omitempty" json:"unit,omitempty"`
	HasBalcony      bool   `bson:"hasBalcony,omitempty" json:"hasBalcony,omitempty"`
	HasParkingSpace bool   `bson:"hasParkingSpace,omitempty" json:"hasParkingSpace,omitempty"`
	HasElevator     bool   `bson:"hasElevator,omitempty" json:"hasElevator,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

var houseTypes = map[string]bool{
	"Detached": true, "Semi-detached": true, "Terraced": true,
	"Bungalow": true, "Mansion": true, "Villa": true,
}

// Validate checks the fields required to create a property of the given
// kind, including the rule that rent fields are present exactly when the
// status is a rental status.
func (p *Property) Validate(kind PropertyKind) error {
	if p.Title == "" || p.Location == "" || p.Size == "" || p.Description == "" {
		return Invalid("title, location, size and description are required")
	}
	if p.Price <= 0 {
		return Invalid("price must be greater than zero")
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	if !p.Status.ValidFor(kind) {
		return Invalid("invalid status %q for %s", p.Status, kind)
	}
	switch kind {
	case KindHouse:
		if !houseTypes[p.HouseType] {
			return Invalid("invalid house type %q", p.HouseType)
		}
		if p.Bedrooms <= 0 || p.Bathrooms <= 0 {
			return Invalid("bedrooms and bathrooms are required")
		}
	case KindApartment:
		if p.Bedrooms <= 0 || p.Bathrooms <= 0 {
			return Invalid("bedrooms and bathrooms are required")
		}
		if p.Unit == "" {
			return Invalid("floor and unit are required")
		}
	}
	if p.Status.IsRental() {
		if p.RentPrice <= 0 {
			return Invalid("rentPrice is required when status is %q", p.Status)
		}
		if !p.RentPeriod.Valid() {
			return Invalid("rentPeriod is required when status is %q", p.Status)
		}
	}
	return nil
}
