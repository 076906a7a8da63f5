package controllers

import (
	"log"
	"net/http"

	"github.com/estatehub/backend/middleware"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
)

type portfolio struct {
	Lands      []models.Property `json:"lands"`
	Houses     []models.Property `json:"houses"`
	Apartments []models.Property `json:"apartments"`
	Services   []models.Service  `json:"services"`
}

// GetPortfolio returns everything the caller owns or subscribes to,
// grouped by kind, resolved from the user's purchased sets.
func GetPortfolio(lands, houses, apartments *store.PropertyStore, services *store.ServiceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		var p portfolio
		var err error
		p.Lands, err = lands.FindByIDs(r.Context(), user.PurchasedLands)
		if err == nil {
			p.Houses, err = houses.FindByIDs(r.Context(), user.PurchasedHouses)
		}
		if err == nil {
			p.Apartments, err = apartments.FindByIDs(r.Context(), user.PurchasedApartments)
		}
		if err == nil {
			p.Services, err = services.FindByIDs(r.Context(), user.SubscribedServices)
		}
		if err != nil {
			log.Printf("Error fetching portfolio for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching portfolio")
			return
		}

		total := len(p.Lands) + len(p.Houses) + len(p.Apartments) + len(p.Services)
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       p,
			TotalItems: &total,
		})
	}
}

// GetPortfolioByKind returns the caller's purchases of one property
// kind, paginated over the resolved details.
func GetPortfolioByKind(properties *store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		owned := user.PurchasedLands
		switch properties.Kind() {
		case models.KindHouse:
			owned = user.PurchasedHouses
		case models.KindApartment:
			owned = user.PurchasedApartments
		}

		all, err := properties.FindByIDs(r.Context(), owned)
		if err != nil {
			log.Printf("Error fetching purchased %s for %s: %v", properties.Kind(), user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching portfolio")
			return
		}

		q := utils.ParsePageQuery(r)
		page := paginateProperties(all, q)
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       page,
			Pagination: models.NewPagination(int64(len(all)), q.Page, q.Limit),
		})
	}
}
