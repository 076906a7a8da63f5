package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validHouse() *Property {
	return &Property{
		Title:       "Brookfield Villa",
		Location:    "Lekki Phase 1",
		Price:       95000000,
		Size:        "650 sqm",
		Status:      StatusAvailable,
		Description: "Six bedroom villa with a private pool",
		HouseType:   "Villa",
		Bedrooms:    6,
		Bathrooms:   7,
	}
}

func TestPropertyValidateRentRule(t *testing.T) {
	h := validHouse()
	h.Status = StatusForRent
	err := h.Validate(KindHouse)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rentPrice is required")

	h.RentPrice = 4500000
	err = h.Validate(KindHouse)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rentPeriod is required")

	h.RentPeriod = RentYearly
	require.NoError(t, h.Validate(KindHouse))
}

func TestPropertyValidateLandExcludesRentalStatuses(t *testing.T) {
	land := &Property{
		Title:       "Corner plot",
		Location:    "Epe",
		Price:       12000000,
		Size:        "900 sqm",
		Status:      StatusForRent,
		Description: "Fenced corner plot with C of O",
	}
	err := land.Validate(KindLand)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid status")

	land.Status = StatusAvailable
	require.NoError(t, land.Validate(KindLand))
}

func TestPropertyValidateDefaultsStatus(t *testing.T) {
	h := validHouse()
	h.Status = ""
	require.NoError(t, h.Validate(KindHouse))
	require.Equal(t, StatusAvailable, h.Status)
}

func TestPropertyValidateKindRequirements(t *testing.T) {
	h := validHouse()
	h.HouseType = "Castle"
	require.Error(t, h.Validate(KindHouse))

	apt := validHouse()
	apt.HouseType = ""
	require.Error(t, apt.Validate(KindApartment), "apartments need a unit")
	apt.Unit = "14B"
	apt.Floor = 14
	require.NoError(t, apt.Validate(KindApartment))
}

func TestPropertyKindFields(t *testing.T) {
	require.Equal(t, "purchasedLands", KindLand.PurchasedField())
	require.Equal(t, "purchasedHouses", KindHouse.PurchasedField())
	require.Equal(t, "purchasedApartments", KindApartment.PurchasedField())
	require.Equal(t, "subscribedServices", KindService.PurchasedField())

	require.Equal(t, "favoriteLands", KindLand.FavoriteField())
	require.Equal(t, "", KindService.FavoriteField())

	require.True(t, KindHouse.IsProperty())
	require.False(t, KindService.IsProperty())
	require.False(t, PropertyKind("Castle").Valid())
}
