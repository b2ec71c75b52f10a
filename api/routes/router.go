package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftline/cartengine/api/backend"
	"github.com/craftline/cartengine/api/controllers"
	"github.com/craftline/cartengine/api/middleware"
	"github.com/craftline/cartengine/pkg/config"
	"github.com/craftline/cartengine/pkg/logger"
)

// NewRouter builds the dev backend's HTTP surface. The paths mirror the
// production storefront API the engine is written against.
func NewRouter(cfg *config.Config, logg *logger.Logger, store *backend.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(store, logg))
		r.Get("/{productId}", controllers.ProductDetail(store, logg))
	})

	r.Get("/uploads/*", serveUpload(store))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(store, logg))
			r.Post("/items", controllers.CartAddItem(store, logg))
			r.Put("/{lineId}", controllers.CartUpdateQuantity(store, logg))
			r.Delete("/{lineId}", controllers.CartDeleteLine(store, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(store, logg))
			r.Post("/", controllers.OrderCreate(store, logg))
		})

		r.Post("/upload-image", controllers.UploadImage(store, cfg.Media, logg))
	})

	return r
}

func serveUpload(store *backend.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := store.Upload(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}
}
