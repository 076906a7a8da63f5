package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const dashboardCacheKey = "admin:dashboard"
const dashboardCacheTTL = time.Minute

type dashboardCounts struct {
	Users      int64 `json:"users"`
	Lands      int64 `json:"lands"`
	Houses     int64 `json:"houses"`
	Apartments int64 `json:"apartments"`
	Services   int64 `json:"services"`
	Payments   int64 `json:"payments"`
}

type dashboard struct {
	Counts         dashboardCounts  `json:"counts"`
	TotalRevenue   float64          `json:"totalRevenue"`
	RecentPayments []models.Payment `json:"recentPayments"`
	RecentUsers    []models.User    `json:"recentUsers"`
}

// AdminStores bundles the read-side dependencies of the admin console.
type AdminStores struct {
	Users      *store.UserStore
	Lands      *store.PropertyStore
	Houses     *store.PropertyStore
	Apartments *store.PropertyStore
	Services   *store.ServiceStore
	Payments   *store.PaymentStore
}

// GetDashboard aggregates platform-wide totals for the admin console.
// The result is cached briefly since every widget on the console polls
// it.
func GetDashboard(stores AdminStores, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			cached, err := redisClient.Get(r.Context(), dashboardCacheKey).Result()
			if err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(cached))
				return
			}
			if err != redis.Nil {
				log.Printf("Redis dashboard cache read failed: %v", err)
			}
		}

		d, err := buildDashboard(r.Context(), stores)
		if err != nil {
			log.Printf("Error building admin dashboard: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching dashboard data")
			return
		}

		resp := models.APIResponse{Success: true, Data: d}
		if redisClient != nil {
			if body, err := json.Marshal(resp); err == nil {
				if err := redisClient.Set(r.Context(), dashboardCacheKey, body, dashboardCacheTTL).Err(); err != nil {
					log.Printf("Redis dashboard cache write failed: %v", err)
				}
			}
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

func buildDashboard(ctx context.Context, stores AdminStores) (*dashboard, error) {
	var d dashboard
	var err error

	if d.Counts.Users, err = stores.Users.Count(ctx); err != nil {
		return nil, err
	}
	if d.Counts.Lands, err = stores.Lands.Count(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if d.Counts.Houses, err = stores.Houses.Count(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if d.Counts.Apartments, err = stores.Apartments.Count(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if d.Counts.Services, err = stores.Services.Count(ctx); err != nil {
		return nil, err
	}
	if d.Counts.Payments, err = stores.Payments.Count(ctx); err != nil {
		return nil, err
	}
	if d.TotalRevenue, err = stores.Payments.TotalRevenue(ctx); err != nil {
		return nil, err
	}
	if d.RecentPayments, err = stores.Payments.Recent(ctx, 5); err != nil {
		return nil, err
	}
	if d.RecentUsers, err = stores.Users.Recent(ctx, 5); err != nil {
		return nil, err
	}
	return &d, nil
}

type statusBreakdown struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Sold      int64 `json:"sold"`
	Reserved  int64 `json:"reserved"`
	ForRent   int64 `json:"forRent"`
	Rented    int64 `json:"rented"`
}

type propertyStats struct {
	Lands      statusBreakdown `json:"lands"`
	Houses     statusBreakdown `json:"houses"`
	Apartments statusBreakdown `json:"apartments"`
}

// GetPropertyStats breaks the catalog down by status for each property
// kind.
func GetPropertyStats(lands, houses, apartments *store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stats propertyStats
		var err error

		stats.Lands, err = breakdownFor(r.Context(), lands)
		if err == nil {
			stats.Houses, err = breakdownFor(r.Context(), houses)
		}
		if err == nil {
			stats.Apartments, err = breakdownFor(r.Context(), apartments)
		}
		if err != nil {
			log.Printf("Error building property stats: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching property statistics")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: stats})
	}
}

func breakdownFor(ctx context.Context, properties *store.PropertyStore) (statusBreakdown, error) {
	var b statusBreakdown
	var err error

	if b.Total, err = properties.Count(ctx, bson.M{}); err != nil {
		return b, err
	}
	if b.Available, err = properties.Count(ctx, bson.M{"status": models.StatusAvailable}); err != nil {
		return b, err
	}
	if b.Sold, err = properties.Count(ctx, bson.M{"status": models.StatusSold}); err != nil {
		return b, err
	}
	if b.Reserved, err = properties.Count(ctx, bson.M{"status": models.StatusReserved}); err != nil {
		return b, err
	}
	if properties.Kind() != models.KindLand {
		if b.ForRent, err = properties.Count(ctx, bson.M{"status": models.StatusForRent}); err != nil {
			return b, err
		}
		if b.Rented, err = properties.Count(ctx, bson.M{"status": models.StatusRented}); err != nil {
			return b, err
		}
	}
	return b, nil
}

// adminUsers is the slice of the user store the user-management
// handlers touch, kept as an interface so they test against stubs.
type adminUsers interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.Role) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type propertyReader interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error)
}

type serviceReader interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error)
}

type paymentReader interface {
	AllByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Payment, error)
}

type userProperties struct {
	Lands      []models.Property `json:"lands"`
	Houses     []models.Property `json:"houses"`
	Apartments []models.Property `json:"apartments"`
	Services   []models.Service  `json:"services"`
}

type userDetails struct {
	User       *models.User     `json:"user"`
	Properties userProperties   `json:"properties"`
	Payments   []models.Payment `json:"payments"`
}

// GetUserDetails resolves one user together with everything they own,
// subscribe to and have paid for.
func GetUserDetails(users adminUsers, lands, houses, apartments propertyReader, services serviceReader, payments paymentReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		user, err := users.FindByID(r.Context(), id)
		if err == store.ErrNotFound {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			log.Printf("Error fetching user %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching user details")
			return
		}
		user.Password = ""

		details := userDetails{User: user}
		details.Properties.Lands, err = lands.FindByIDs(r.Context(), user.PurchasedLands)
		if err == nil {
			details.Properties.Houses, err = houses.FindByIDs(r.Context(), user.PurchasedHouses)
		}
		if err == nil {
			details.Properties.Apartments, err = apartments.FindByIDs(r.Context(), user.PurchasedApartments)
		}
		if err == nil {
			details.Properties.Services, err = services.FindByIDs(r.Context(), user.SubscribedServices)
		}
		if err == nil {
			details.Payments, err = payments.AllByUser(r.Context(), id)
		}
		if err != nil {
			log.Printf("Error resolving details for user %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching user details")
			return
		}

		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: details})
	}
}

// UpdateUserRole promotes or demotes a user.
func UpdateUserRole(users adminUsers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var req struct {
			Role models.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
			utils.RespondError(w, http.StatusBadRequest, "Invalid role")
			return
		}

		user, err := users.UpdateRole(r.Context(), id, req.Role)
		if err == store.ErrNotFound {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			log.Printf("Error updating role for user %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error updating user role")
			return
		}

		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "User role updated successfully",
			Data:    user,
		})
	}
}

// DeleteUser removes a user account.
func DeleteUser(users adminUsers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(mux.Vars(r)["userId"])
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		err = users.Delete(r.Context(), id)
		if err == store.ErrNotFound {
			utils.RespondError(w, http.StatusNotFound, "User not found")
			return
		}
		if err != nil {
			log.Printf("Error deleting user %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error deleting user")
			return
		}

		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "User deleted successfully",
		})
	}
}

// GetAllUsers lists registered users for the admin console, passwords
// projected out by the store.
func GetAllUsers(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := utils.ParsePageQuery(r)
		list, total, err := users.List(r.Context(), q)
		if err != nil {
			log.Printf("Error fetching users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching users")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       list,
			Pagination: models.NewPagination(total, q.Page, q.Limit),
		})
	}
}
