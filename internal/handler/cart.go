package handler

import (
	"net/http"

	"github.com/mmeshcher/bookheaven/internal/response"
)

// AddToCart добавляет книгу из заголовка bookid в корзину текущего пользователя.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	bookID, ok := bookIDFromHeader(w, r)
	if !ok {
		return
	}

	added, err := h.service.AddToCart(r.Context(), userID, bookID)
	if err != nil {
		h.writeError(w, r, "add to cart", err)
		return
	}

	if !added {
		response.Success(w, "Book is already in cart")
		return
	}
	response.Message(w, http.StatusOK, "Book added to cart")
}

// RemoveFromCart убирает книгу из корзины. Отсутствующая в корзине книга не считается ошибкой.
func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	bookID, ok := bookIDFromHeader(w, r)
	if !ok {
		return
	}

	if _, err := h.service.RemoveFromCart(r.Context(), userID, bookID); err != nil {
		h.writeError(w, r, "remove from cart", err)
		return
	}

	response.Message(w, http.StatusOK, "Book removed from cart")
}

// GetUserCart возвращает корзину текущего пользователя, начиная с последней добавленной книги.
func (h *Handler) GetUserCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "get cart", err)
		return
	}

	response.JSON(w, http.StatusOK, struct {
		Status string  `json:"status"`
		Data   any     `json:"data"`
		Total  float64 `json:"total"`
	}{
		Status: response.StatusSuccess,
		Data:   cart.Books,
		Total:  cart.Total,
	})
}

// AddFavourite добавляет книгу из заголовка bookid в избранное.
func (h *Handler) AddFavourite(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	bookID, ok := bookIDFromHeader(w, r)
	if !ok {
		return
	}

	added, err := h.service.AddFavourite(r.Context(), userID, bookID)
	if err != nil {
		h.writeError(w, r, "add favourite", err)
		return
	}

	if !added {
		response.Message(w, http.StatusOK, "Book is already in favourites")
		return
	}
	response.Message(w, http.StatusOK, "Book added to favourites")
}

// RemoveFavourite убирает книгу из избранного.
func (h *Handler) RemoveFavourite(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	bookID, ok := bookIDFromHeader(w, r)
	if !ok {
		return
	}

	if _, err := h.service.RemoveFavourite(r.Context(), userID, bookID); err != nil {
		h.writeError(w, r, "remove favourite", err)
		return
	}

	response.Message(w, http.StatusOK, "Book removed from favourites")
}

// GetFavouriteBooks возвращает избранные книги текущего пользователя.
func (h *Handler) GetFavouriteBooks(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	books, err := h.service.GetFavourites(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "get favourites", err)
		return
	}

	response.Data(w, books)
}
