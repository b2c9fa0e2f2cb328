package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/bookheaven/internal/middleware"
	"github.com/mmeshcher/bookheaven/internal/response"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса BookHeaven.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(h.metrics.Middleware)
	r.Use(custommiddleware.CORS(h.corsOrigin))
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-in", h.SignIn)

		r.Get("/book/get-all-book", h.GetAllBooks)
		r.Get("/get-recent-book", h.GetRecentBooks)
		r.Get("/get-book-by-id/{id}", h.GetBookByID)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/get-user-information", h.GetUserInformation)
			r.Put("/update-address", h.UpdateAddress)
			r.Put("/update-password", h.UpdatePassword)
			r.Put("/update-email", h.UpdateEmail)

			r.Put("/add-to-cart", h.AddToCart)
			r.Put("/remove-book-from-cart", h.RemoveFromCart)
			r.Get("/get-user-cart", h.GetUserCart)

			r.Put("/add-book-to-favourite", h.AddFavourite)
			r.Put("/remove-book-from-favourite", h.RemoveFavourite)
			r.Get("/get-favourite-books", h.GetFavouriteBooks)

			r.Post("/place-order", h.PlaceOrder)
			r.Get("/get-order-history", h.GetOrderHistory)

			r.Group(func(r chi.Router) {
				r.Use(custommiddleware.AdminOnly(h.service, h.logger))

				r.Post("/add-book", h.AddBook)
				r.Put("/update-book", h.UpdateBook)
				r.Delete("/delete-book", h.DeleteBook)

				r.Get("/get-all-orders", h.GetAllOrders)
				r.Put("/update-status/{id}", h.UpdateStatus)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	return r
}
