package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const listCacheTTL = 10 * time.Minute

func parseObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)[name])
}

// ListProperties returns the Available listings of one kind, paginated,
// with a redis cache in front keyed by kind and query string.
func ListProperties(s *store.PropertyStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cacheKey := listCacheKey(s.Kind(), r.URL.Query())
		if redisClient != nil {
			if cached, err := redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(cached))
				return
			} else if err != redis.Nil {
				log.Printf("Redis GET error for key %s: %v", cacheKey, err)
			}
		}

		q := utils.ParsePageQuery(r)
		properties, total, err := s.List(r.Context(), bson.M{"status": models.StatusAvailable}, q)
		if err != nil {
			log.Printf("Error fetching %s listings: %v", s.Kind(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching properties")
			return
		}

		resp := models.APIResponse{
			Success:    true,
			Data:       properties,
			Pagination: models.NewPagination(total, q.Page, q.Limit),
		}
		body, err := json.Marshal(resp)
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to encode response")
			return
		}
		if redisClient != nil {
			if err := redisClient.Set(r.Context(), cacheKey, body, listCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache response for key %s: %v", cacheKey, err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}

// SearchProperties runs a case-insensitive match over title, location and
// description.
func SearchProperties(s *store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query == "" {
			utils.RespondError(w, http.StatusBadRequest, "Search query is required")
			return
		}

		regex := primitive.Regex{Pattern: query, Options: "i"}
		filter := bson.M{"$or": []bson.M{
			{"title": regex},
			{"location": regex},
			{"description": regex},
		}}

		q := utils.ParsePageQuery(r)
		properties, total, err := s.List(r.Context(), filter, q)
		if err != nil {
			log.Printf("Error searching %s listings: %v", s.Kind(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error searching properties")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success:    true,
			Data:       properties,
			Pagination: models.NewPagination(total, q.Page, q.Limit),
		})
	}
}

func GetProperty(s *store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid property ID")
			return
		}

		property, err := s.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Property not found")
				return
			}
			log.Printf("Error fetching %s %s: %v", s.Kind(), id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error fetching property")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: property})
	}
}

func CreateProperty(s *store.PropertyStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var property models.Property
		if err := json.NewDecoder(r.Body).Decode(&property); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := property.Validate(s.Kind()); err != nil {
			utils.RespondValidationError(w, "Invalid property data", err)
			return
		}
		property.Owner = nil
		property.PurchaseDate = nil

		if err := s.Insert(r.Context(), &property); err != nil {
			log.Printf("Insert failed for %s: %v", s.Kind(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create property")
			return
		}

		go invalidateListCache(redisClient, s.Kind())

		utils.RespondJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Property added successfully",
			Data:    property,
		})
	}
}

// protected fields an update may never touch; ownership only changes
// through the acquisition workflow.
var protectedPropertyFields = []string{"_id", "owner", "purchaseDate", "createdAt", "updatedAt"}

func UpdateProperty(s *store.PropertyStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid property ID")
			return
		}

		var fields map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid update data")
			return
		}
		for _, f := range protectedPropertyFields {
			delete(fields, f)
		}
		if len(fields) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No updatable fields provided")
			return
		}
		if status, ok := fields["status"].(string); ok {
			if !models.PropertyStatus(status).ValidFor(s.Kind()) {
				utils.RespondError(w, http.StatusBadRequest, "Invalid status value")
				return
			}
		}

		updated, err := s.Update(r.Context(), id, bson.M(fields))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Property not found")
				return
			}
			log.Printf("Update failed for %s %s: %v", s.Kind(), id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Update failed")
			return
		}

		go invalidateListCache(redisClient, s.Kind())

		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Property updated successfully",
			Data:    updated,
		})
	}
}

// DeleteProperty removes a listing and cascades: favorites referencing it
// are deleted and its id is pulled from every user's favorite and
// purchased sets.
func DeleteProperty(s *store.PropertyStore, favorites *store.FavoriteStore, users *store.UserStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseObjectID(r, "id")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid property ID")
			return
		}

		if err := s.Delete(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Property not found")
				return
			}
			log.Printf("Delete failed for %s %s: %v", s.Kind(), id.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Delete failed")
			return
		}

		if err := favorites.DeleteAllForProperty(r.Context(), s.Kind(), id); err != nil {
			log.Printf("Cascade delete of favorites for %s %s failed: %v", s.Kind(), id.Hex(), err)
		}
		fields := []string{s.Kind().PurchasedField(), s.Kind().FavoriteField()}
		if err := users.PullFromAllUsers(r.Context(), fields, id); err != nil {
			log.Printf("Cascade pull from users for %s %s failed: %v", s.Kind(), id.Hex(), err)
		}

		go invalidateListCache(redisClient, s.Kind())

		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Property deleted successfully",
		})
	}
}

func listCacheKey(kind models.PropertyKind, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "listings:" + strings.ToLower(string(kind)) + ":" + hex.EncodeToString(sum[:])
}

func invalidateListCache(redisClient *redis.Client, kind models.PropertyKind) {
	if redisClient == nil {
		return
	}
	ctx := context.Background()
	pattern := "listings:" + strings.ToLower(string(kind)) + ":*"

	var keysToDelete []string
	var cursor uint64
	for {
		keys, next, err := redisClient.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern %q: %v", pattern, err)
			return
		}
		keysToDelete = append(keysToDelete, keys...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error deleting %d cache keys for %q: %v", len(keysToDelete), pattern, err)
	}
}
