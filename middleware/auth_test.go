package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/utils"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testJWTKey = "middleware-test-key"

type fakeResolver struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeResolver) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func okHandler() (http.Handler, *bool) {
	called := false
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}), &called
}

func expiredToken(t *testing.T, userID string) string {
	t.Helper()
	claims := utils.Claims{
		UserID: userID,
		Role:   models.RoleUser,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Hour).Unix(),
			IssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTKey))
	require.NoError(t, err)
	return signed
}

func TestAuth(t *testing.T) {
	utils.SetJWTKey(testJWTKey)

	userID := primitive.NewObjectID()
	adminID := primitive.NewObjectID()
	resolver := &fakeResolver{users: map[primitive.ObjectID]*models.User{
		userID:  {ID: userID, Role: models.RoleUser},
		adminID: {ID: adminID, Role: models.RoleAdmin},
	}}

	userToken, err := utils.GenerateJWT(userID.Hex(), models.RoleUser)
	require.NoError(t, err)
	adminToken, err := utils.GenerateJWT(adminID.Hex(), models.RoleAdmin)
	require.NoError(t, err)
	ghostToken, err := utils.GenerateJWT(primitive.NewObjectID().Hex(), models.RoleUser)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		cookie     string
		admin      bool
		wantStatus int
	}{
		{name: "no token", wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer " + expiredToken(t, userID.Hex()), wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + ghostToken, wantStatus: http.StatusNotFound},
		{name: "valid bearer", header: "Bearer " + userToken, wantStatus: http.StatusOK},
		{name: "valid cookie", cookie: userToken, wantStatus: http.StatusOK},
		{name: "user on admin route", header: "Bearer " + userToken, admin: true, wantStatus: http.StatusForbidden},
		{name: "admin on admin route", header: "Bearer " + adminToken, admin: true, wantStatus: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := inner
			if tc.admin {
				handler = AdminOnly(handler)
			}
			handler = Auth(resolver, nil)(handler)

			req := httptest.NewRequest(http.MethodGet, "/api/portfolio", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, tc.wantStatus == http.StatusOK, *called)
		})
	}
}

func TestAuthResolvesRoleFromRecord(t *testing.T) {
	utils.SetJWTKey(testJWTKey)

	userID := primitive.NewObjectID()
	// Token claims admin but the stored record was demoted.
	resolver := &fakeResolver{users: map[primitive.ObjectID]*models.User{
		userID: {ID: userID, Role: models.RoleUser},
	}}
	token, err := utils.GenerateJWT(userID.Hex(), models.RoleAdmin)
	require.NoError(t, err)

	inner, called := okHandler()
	handler := Auth(resolver, nil)(AdminOnly(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, *called)
}

func TestUserFrom(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := UserFrom(req)
	require.False(t, ok)

	req = req.WithContext(context.WithValue(req.Context(), UserKey, user))
	got, ok := UserFrom(req)
	require.True(t, ok)
	require.Equal(t, user, got)
}
