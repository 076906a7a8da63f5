package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/estatehub/backend/middleware"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func RegisterUser(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if req.Name == "" || req.Email == "" || req.Phone == "" || req.Password == "" {
			utils.RespondError(w, http.StatusBadRequest, "Name, email, phone and password are required")
			return
		}

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		user := &models.User{
			Name:     req.Name,
			Email:    req.Email,
			Phone:    req.Phone,
			Password: hashed,
			Role:     models.RoleUser,
		}
		if err := users.Insert(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				utils.RespondError(w, http.StatusConflict, "Email already exists")
				return
			}
			log.Printf("Error inserting user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		utils.RespondJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "User registered successfully",
			Data:    user,
		})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func LoginUser(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		user, err := users.FindByEmail(r.Context(), req.Email)
		if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
			utils.RespondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := utils.GenerateJWT(user.ID.Hex(), user.Role)
		if err != nil {
			log.Printf("Error generating JWT for %s: %v", user.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Expires:  time.Now().Add(24 * time.Hour),
		})
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Login successful",
			Data:    loginResponse{Token: token, User: user},
		})
	}
}

func GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: user})
	}
}

func UpdateProfile(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		fields := bson.M{}
		for _, k := range []string{"name", "phone", "email"} {
			if v, ok := body[k].(string); ok && v != "" {
				fields[k] = v
			}
		}
		if len(fields) == 0 {
			utils.RespondError(w, http.StatusBadRequest, "No updatable fields provided")
			return
		}

		updated, err := users.UpdateProfile(r.Context(), user.ID, fields)
		if err != nil {
			log.Printf("Error updating profile for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error updating profile")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Profile updated successfully",
			Data:    updated,
		})
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func ChangePassword(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := middleware.UserFrom(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Authentication required. Please login.")
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NewPassword == "" {
			utils.RespondError(w, http.StatusBadRequest, "Current and new password are required")
			return
		}
		if !utils.CheckPasswordHash(req.CurrentPassword, user.Password) {
			utils.RespondError(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}

		hashed, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Error changing password")
			return
		}
		if err := users.UpdatePassword(r.Context(), user.ID, hashed); err != nil {
			log.Printf("Error changing password for %s: %v", user.ID.Hex(), err)
			utils.RespondError(w, http.StatusInternalServerError, "Error changing password")
			return
		}
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Password changed successfully",
		})
	}
}

// LogoutUser denylists the caller's token for its remaining lifetime so a
// logged-out token cannot be replayed.
func LogoutUser(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, _ := r.Context().Value(middleware.TokenKey).(string)
		if token != "" && redisClient != nil {
			ttl := 24 * time.Hour
			if claims, err := utils.ValidateJWT(token); err == nil && claims.ExpiresAt > 0 {
				ttl = time.Until(time.Unix(claims.ExpiresAt, 0))
			}
			if ttl > 0 {
				if err := redisClient.Set(r.Context(), middleware.DenylistPrefix+token, "1", ttl).Err(); err != nil {
					log.Printf("Failed to denylist token: %v", err)
				}
			}
		}

		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
		utils.RespondJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Logged out successfully",
		})
	}
}
