package routes

import (
	"github.com/estatehub/backend/controllers"
	"github.com/estatehub/backend/middleware"
	"github.com/estatehub/backend/models"
	"github.com/estatehub/backend/store"
	"github.com/estatehub/backend/workflow"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

// Deps carries everything the route table wires into handlers.
type Deps struct {
	Users      *store.UserStore
	Lands      *store.PropertyStore
	Houses     *store.PropertyStore
	Apartments *store.PropertyStore
	Services   *store.ServiceStore
	Payments   *store.PaymentStore
	Favorites  *store.FavoriteStore

	Acquisition   *workflow.Acquisition
	Subscriptions *workflow.Subscriptions
	Bookmarks     *workflow.Favorites

	Redis *redis.Client
}

func Routes(router *mux.Router, d Deps) {
	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(d.Users)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(d.Users)).Methods("POST")

	// Public catalog reads
	for kind, s := range map[string]*store.PropertyStore{
		"lands":      d.Lands,
		"houses":     d.Houses,
		"apartments": d.Apartments,
	} {
		router.HandleFunc("/api/"+kind, controllers.ListProperties(s, d.Redis)).Methods("GET")
		router.HandleFunc("/api/"+kind+"/search", controllers.SearchProperties(s)).Methods("GET")
		router.HandleFunc("/api/"+kind+"/{id}", controllers.GetProperty(s)).Methods("GET")
	}

	// Public service reads
	router.HandleFunc("/api/services", controllers.GetAllServices(d.Services)).Methods("GET")
	for slug, t := range map[string]models.ServiceType{
		"estate-management":    models.ServiceEstateManagement,
		"architectural-design": models.ServiceArchitecturalDesign,
		"property-valuation":   models.ServicePropertyValuation,
		"legal-consultation":   models.ServiceLegalConsultation,
	} {
		router.HandleFunc("/api/services/"+slug, controllers.GetServicesByType(d.Services, t)).Methods("GET")
	}
	// Hex-constrained so the fixed service paths above and my-services
	// below never collide with it.
	router.HandleFunc("/api/services/{id:[0-9a-fA-F]{24}}", controllers.GetServiceDetails(d.Services)).Methods("GET")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.Auth(d.Users, d.Redis))

	// Profile routes
	authenticated.HandleFunc("/auth/profile", controllers.GetProfile()).Methods("GET")
	authenticated.HandleFunc("/auth/profile", controllers.UpdateProfile(d.Users)).Methods("PUT")
	authenticated.HandleFunc("/auth/change-password", controllers.ChangePassword(d.Users)).Methods("POST")
	authenticated.HandleFunc("/auth/logout", controllers.LogoutUser(d.Redis)).Methods("POST")

	// Service subscription routes; my-services before {id} reads
	authenticated.HandleFunc("/services/my-services", controllers.GetMyServices(d.Services)).Methods("GET")
	authenticated.HandleFunc("/services/subscribe/{id}", controllers.SubscribeToService(d.Subscriptions)).Methods("POST")
	authenticated.HandleFunc("/services/subscribe/{id}", controllers.UnsubscribeFromService(d.Subscriptions)).Methods("DELETE")

	// Payment routes; fixed paths registered before {paymentId}
	authenticated.HandleFunc("/payments/process", controllers.ProcessPayment(d.Acquisition)).Methods("POST")
	authenticated.HandleFunc("/payments/history", controllers.GetPaymentHistory(d.Acquisition)).Methods("GET")
	authenticated.HandleFunc("/payments/plan", controllers.GetPaymentPlan(d.Acquisition)).Methods("GET")
	authenticated.HandleFunc("/payments/installments/{paymentId}", controllers.GetInstallmentDetails(d.Acquisition)).Methods("GET")
	authenticated.HandleFunc("/payments/installments/{paymentId}/pay", controllers.PayInstallment(d.Acquisition)).Methods("POST")
	authenticated.HandleFunc("/payments/{paymentId}", controllers.GetPaymentDetails(d.Acquisition)).Methods("GET")

	// Favorites routes
	authenticated.HandleFunc("/favorites", controllers.AddFavorite(d.Bookmarks)).Methods("POST")
	authenticated.HandleFunc("/favorites", controllers.GetFavorites(d.Favorites, d.Lands, d.Houses, d.Apartments)).Methods("GET")
	authenticated.HandleFunc("/favorites/lands", controllers.GetFavoritesByKind(d.Favorites, d.Lands)).Methods("GET")
	authenticated.HandleFunc("/favorites/houses", controllers.GetFavoritesByKind(d.Favorites, d.Houses)).Methods("GET")
	authenticated.HandleFunc("/favorites/apartments", controllers.GetFavoritesByKind(d.Favorites, d.Apartments)).Methods("GET")
	authenticated.HandleFunc("/favorites/lands/{propertyId}", controllers.RemoveFavoriteByProperty(d.Bookmarks, models.KindLand)).Methods("DELETE")
	authenticated.HandleFunc("/favorites/houses/{propertyId}", controllers.RemoveFavoriteByProperty(d.Bookmarks, models.KindHouse)).Methods("DELETE")
	authenticated.HandleFunc("/favorites/apartments/{propertyId}", controllers.RemoveFavoriteByProperty(d.Bookmarks, models.KindApartment)).Methods("DELETE")
	authenticated.HandleFunc("/favorites/{favoriteId}", controllers.RemoveFavorite(d.Bookmarks)).Methods("DELETE")

	// Portfolio routes
	authenticated.HandleFunc("/portfolio", controllers.GetPortfolio(d.Lands, d.Houses, d.Apartments, d.Services)).Methods("GET")
	authenticated.HandleFunc("/portfolio/lands", controllers.GetPortfolioByKind(d.Lands)).Methods("GET")
	authenticated.HandleFunc("/portfolio/houses", controllers.GetPortfolioByKind(d.Houses)).Methods("GET")
	authenticated.HandleFunc("/portfolio/apartments", controllers.GetPortfolioByKind(d.Apartments)).Methods("GET")

	// Admin-only routes
	admin := authenticated.NewRoute().Subrouter()
	admin.Use(middleware.AdminOnly)

	for kind, s := range map[string]*store.PropertyStore{
		"lands":      d.Lands,
		"houses":     d.Houses,
		"apartments": d.Apartments,
	} {
		admin.HandleFunc("/"+kind, controllers.CreateProperty(s, d.Redis)).Methods("POST")
		admin.HandleFunc("/"+kind+"/{id}", controllers.UpdateProperty(s, d.Redis)).Methods("PUT")
		admin.HandleFunc("/"+kind+"/{id}", controllers.DeleteProperty(s, d.Favorites, d.Users, d.Redis)).Methods("DELETE")
	}

	admin.HandleFunc("/services", controllers.AddService(d.Services)).Methods("POST")
	admin.HandleFunc("/services/{id}", controllers.EditService(d.Services)).Methods("PUT")
	admin.HandleFunc("/services/{id}", controllers.DeleteService(d.Services, d.Users)).Methods("DELETE")

	admin.HandleFunc("/payments", controllers.AddPayment(d.Acquisition)).Methods("POST")
	admin.HandleFunc("/payments", controllers.GetAllPayments(d.Payments)).Methods("GET")
	admin.HandleFunc("/payments/plan/{userId}", controllers.UpdatePaymentPlan(d.Acquisition)).Methods("PUT")
	admin.HandleFunc("/payments/{paymentId}/complete", controllers.MarkPaymentCompleted(d.Acquisition)).Methods("PATCH")

	adminStores := controllers.AdminStores{
		Users:      d.Users,
		Lands:      d.Lands,
		Houses:     d.Houses,
		Apartments: d.Apartments,
		Services:   d.Services,
		Payments:   d.Payments,
	}
	admin.HandleFunc("/admin/dashboard", controllers.GetDashboard(adminStores, d.Redis)).Methods("GET")
	admin.HandleFunc("/admin/stats", controllers.GetPropertyStats(d.Lands, d.Houses, d.Apartments)).Methods("GET")
	admin.HandleFunc("/admin/users", controllers.GetAllUsers(d.Users)).Methods("GET")
	admin.HandleFunc("/admin/users/{userId}", controllers.GetUserDetails(d.Users, d.Lands, d.Houses, d.Apartments, d.Services, d.Payments)).Methods("GET")
	admin.HandleFunc("/admin/users/{userId}/role", controllers.UpdateUserRole(d.Users)).Methods("PUT")
	admin.HandleFunc("/admin/users/{userId}", controllers.DeleteUser(d.Users)).Methods("DELETE")
}
