package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/estatehub/backend/middleware"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/estatehub/backend/workflow"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type addFavoriteRequest struct {
	PropertyType models.PropertyKind `json:"propertyType"`
	PropertyID   string              `json:"propertyId"`
}

func AddFavorite(favorites *workflow.Favorites) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		var req addFavoriteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request data")
			return
		}
		propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid property ID format")
			return
		}

		fav, err := favorites.Add(r.Context(), user.ID, req.PropertyType, propertyID)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrDuplicate):
				utils.RespondError(w, http.StatusConflict, "Property already in favorites")
			case errors.Is(err, store.ErrNotFound):
				utils.RespondError(w, http.StatusNotFound, "Property not found")
			case isValidationError(err):
				utils.RespondValidationError(w, "Invalid favorite data", err)
			default:
				log.Printf("Error adding to favorites for %s: %v", user.ID.Hex(), err)
				utils.RespondError(w, http.StatusInternalServerError, "Error adding to favorites")
			}
			return
		}
		utils.RespondJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Property added to favorites successfully",
			Data:    fav,
		})
	}
}

func RemoveFavorite(favorites *workflow.Favorites) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		favoriteID, err := parseObjectID(r, "favoriteId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid favorite ID format")
			return
		}

		if err := favorites.Remove(r.Context(), user.ID, favoriteID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Favorite not found")
				return
			}
			log.Printf("Error removing favorite %s: %v", favoriteID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error removing from favorites")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Property removed from favorites successfully",
		})
	}
}

// RemoveFavoriteByProperty removes a favorite addressed by its
// (kind, propertyId) pair instead of the favorite id.
func RemoveFavoriteByProperty(favorites *workflow.Favorites, kind models.PropertyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		propertyID, err := parseObjectID(r, "propertyId")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid property ID format")
			return
		}

		if err := favorites.RemoveByProperty(r.Context(), user.ID, kind, propertyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Favorite not found")
				return
			}
			log.Printf("Error removing %s favorite %s: %v", kind, propertyID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error removing from favorites")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Property removed from favorites successfully",
		})
	}
}

type favoritesByKind struct {
	Lands      []models.Property `json:"lands"`
	Houses     []models.Property `json:"houses"`
	Apartments []models.Property `json:"apartments"`
}

// GetFavorites returns all of the caller's favorites grouped by kind,
// with full property details.
func GetFavorites(records *store.FavoriteStore, lands, houses, apartments *store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		favorites, err := records.ListByUser(r.Context(), user.ID)
		if err != nil {
			log.Printf("Error fetching favorites for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching user favorites")
			return
		}

		ids := map[models.PropertyKind][]primitive.ObjectID{}
		for _, fav := range favorites {
			ids[fav.PropertyType] = append(ids[fav.PropertyType], fav.PropertyID)
		}

		var grouped favoritesByKind
		grouped.Lands, err = lands.FindByIDs(r.Context(), ids[models.KindLand])
		if err == nil {
			grouped.Houses, err = houses.FindByIDs(r.Context(), ids[models.KindHouse])
		}
		if err == nil {
			grouped.Apartments, err = apartments.FindByIDs(r.Context(), ids[models.KindApartment])
		}
		if err != nil {
			log.Printf("Error fetching favorite properties for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching user favorites")
			return
		}

		total := len(grouped.Lands) + len(grouped.Houses) + len(grouped.Apartments)
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       grouped,
			TotalItems: &total,
		})
	}
}

// GetFavoritesByKind returns the caller's favorites of one kind,
// paginated over the resolved property details.
func GetFavoritesByKind(records *store.FavoriteStore, properties *store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		favorites, err := records.ListByUserAndKind(r.Context(), user.ID, properties.Kind())
		if err != nil {
			log.Printf("Error fetching %s favorites for %s: %v", properties.Kind(), user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching favorites")
			return
		}

		ids := make([]primitive.ObjectID, 0, len(favorites))
		for _, fav := range favorites {
			ids = append(ids, fav.PropertyID)
		}
		all, err := properties.FindByIDs(r.Context(), ids)
		if err != nil {
			log.Printf("Error fetching favorite %s details for %s: %v", properties.Kind(), user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching favorites")
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

func paginateProperties(all []models.Property, q utils.PageQuery) []models.Property {
	start := (q.Page - 1) * q.Limit
	if start >= len(all) {
		return []models.Property{}
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
