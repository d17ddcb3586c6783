package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"storefront/auth"
	"storefront/notification"
	"storefront/product"
	"storefront/provider"
	"storefront/storage"
)

// RouterDeps holds all dependencies needed by the router. Notifications
// may be nil when FCM is not configured.
type RouterDeps struct {
	Tokens        *auth.TokenService
	Auth          *auth.Service
	Products      *product.Service
	Providers     *provider.Service
	Notifications *notification.Service
	Files         *storage.FileStore
	CORSOrigins   []string
}

// NewRouter creates the chi router with middleware and all routes. The
// authentication middleware only enriches requests; access decisions live
// on the route groups.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(Authenticate(deps.Tokens, deps.Auth))

	authHandler := NewAuthHandler(deps.Auth)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/google/login", authHandler.GoogleLogin)
		r.Post("/register", authHandler.Register)
	})

	productHandler := NewProductHandler(deps.Products, deps.Files)
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(auth.RoleAdmin))
			r.Post("/", productHandler.Create)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
			r.Post("/{id}/image", productHandler.UploadImage)
		})
	})

	providerHandler := NewProviderHandler(deps.Providers, deps.Files)
	r.Route("/api/v1/providers", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/", providerHandler.List)
			r.Get("/{id}", providerHandler.Get)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(auth.RoleAdmin))
			r.Post("/", providerHandler.Create)
			r.Put("/{id}", providerHandler.Update)
			r.Delete("/{id}", providerHandler.Delete)
			r.Post("/{id}/image", providerHandler.UploadImage)
		})
	})

	if deps.Notifications != nil {
		notificationHandler := NewNotificationHandler(deps.Notifications)
		r.Route("/api/v1/notifications", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(auth.RoleAdmin))
				r.Post("/device", notificationHandler.SendToDevice)
				r.Post("/topic", notificationHandler.SendToTopic)
				r.Post("/multicast", notificationHandler.SendMulticast)
			})
			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Post("/subscriptions", notificationHandler.Subscribe)
				r.Delete("/subscriptions", notificationHandler.Unsubscribe)
			})
		})
	}

	if deps.Files != nil {
		fs := http.StripPrefix("/images/", http.FileServer(http.Dir(deps.Files.BaseDir())))
		r.Get("/images/*", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Cache-Control", "max-age=3600")
			fs.ServeHTTP(w, req)
		})
	}

	return r
}
