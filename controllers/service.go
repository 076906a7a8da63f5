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
	"go.mongodb.org/mongo-driver/bson"
)

// GetAllServices lists Active services, paginated.
func GetAllServices(services *store.ServiceStore) http.HandlerFunc {
	return listServices(services, bson.M{"status": models.ServiceActive})
}

// GetServicesByType lists Active services of one service type, backing
// the per-type routes.
func GetServicesByType(services *store.ServiceStore, serviceType models.ServiceType) http.HandlerFunc {
	return listServices(services, bson.M{"status": models.ServiceActive, "serviceType": serviceType})
}

func listServices(services *store.ServiceStore, filter bson.M) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := utils.ParsePageQuery(r)
		list, total, err := services.List(r.Context(), filter, q)
		if err != nil {
			log.Printf("Error fetching services: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching services")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       list,
			Pagination: models.NewPagination(total, q.Page, q.Limit),
		})
	}
}

func GetServiceDetails(services *store.ServiceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid service ID")
			return
		}

		service, err := services.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Service not found")
				return
			}
			log.Printf("Error fetching service %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching service details")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: service})
	}
}

func AddService(services *store.ServiceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var service models.Service
		if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := service.Validate(); err != nil {
			utils.RespondValidationError(w, "Invalid service data", err)
			return
		}
		service.Subscribers = nil

		if err := services.Insert(r.Context(), &service); err != nil {
			log.Printf("Error adding service: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error adding service")
			return
		}
		utils.RespondJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Service added successfully",
			Data:    service,
		})
	}
}

// protected fields a service update may never touch; the subscriber set
// only changes through the subscription workflow.
var protectedServiceFields = []string{"_id", "subscribers", "createdAt", "updatedAt"}

func EditService(services *store.ServiceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid service ID")
			return
		}

		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid update data")
			return
		}
		for _, f := range protectedServiceFields {
			delete(fields, f)
		}
		if len(fields) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No updatable fields provided")
			return
		}

		updated, err := services.Update(r.Context(), id, bson.M(fields))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Service not found")
				return
			}
			log.Printf("Error updating service %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error updating service")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Service updated successfully",
			Data:    updated,
		})
	}
}

// DeleteService removes a service and pulls it out of every user's
// subscribed set.
func DeleteService(services *store.ServiceStore, users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid service ID")
			return
		}

		if err := services.Delete(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Service not found")
				return
			}
			log.Printf("Error deleting service %s: %v", id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error deleting service")
			return
		}

		field := models.KindService.PurchasedField()
		if err := users.PullFromAllUsers(r.Context(), []string{field}, id); err != nil {
			log.Printf("Cascade pull of service %s from users failed: %v", id.Hex(), err)
		}

		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Service deleted successfully",
		})
	}
}

func SubscribeToService(subscriptions *workflow.Subscriptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid service ID")
			return
		}

		if err := subscriptions.Subscribe(r.Context(), id, user.ID); err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				utils.RespondError(w, http.StatusNotFound, "Service not found")
			case errors.Is(err, store.ErrAlreadySubscribed):
				utils.RespondError(w, http.StatusBadRequest, "Already subscribed to this service")
			default:
				log.Printf("Error subscribing user %s to service %s: %v", user.ID.Hex(), id.Hex(), err)
				utils.RespondError(w, http.StatusInternalServerError, "Error subscribing to service")
			}
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Successfully subscribed to service",
		})
	}
}

func UnsubscribeFromService(subscriptions *workflow.Subscriptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid service ID")
			return
		}

		if err := subscriptions.Unsubscribe(r.Context(), id, user.ID); err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				utils.RespondError(w, http.StatusNotFound, "Service not found")
			case errors.Is(err, store.ErrNotSubscribed):
				utils.RespondError(w, http.StatusBadRequest, "Not subscribed to this service")
			default:
				log.Printf("Error unsubscribing user %s from service %s: %v", user.ID.Hex(), id.Hex(), err)
				utils.RespondError(w, http.StatusInternalServerError, "Error unsubscribing from service")
			}
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Successfully unsubscribed from service",
		})
	}
}

// GetMyServices returns the services the caller is subscribed to.
func GetMyServices(services *store.ServiceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		list, err := services.FindByIDs(r.Context(), user.SubscribedServices)
		if err != nil {
			log.Printf("Error fetching subscribed services for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching subscribed services")
			return
		}
		total := len(list)
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       list,
			TotalItems: &total,
		})
	}
}
