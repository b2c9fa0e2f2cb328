package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/response"
)

type bookRequest struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Language    string  `json:"language"`
	Image       string  `json:"image"`
}

func (req bookRequest) toModel() *model.Book {
	return &model.Book{
		URL:         req.URL,
		Title:       req.Title,
		Author:      req.Author,
		Price:       req.Price,
		Description: req.Description,
		Language:    req.Language,
		Image:       req.Image,
	}
}

// AddBook добавляет книгу в каталог. Доступно только администратору.
func (h *Handler) AddBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := h.service.CreateBook(r.Context(), req.toModel())
	if err != nil {
		h.writeError(w, r, "add book", err)
		return
	}

	response.DataMessage(w, "Book added successfully", b)
}

// UpdateBook обновляет карточку книги из заголовка bookid. Доступно только администратору.
func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromHeader(w, r)
	if !ok {
		return
	}

	var req bookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.UpdateBook(r.Context(), bookID, req.toModel()); err != nil {
		h.writeError(w, r, "update book", err)
		return
	}

	response.Message(w, http.StatusOK, "Book updated successfully")
}

// DeleteBook удаляет книгу из заголовка bookid. Доступно только администратору.
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromHeader(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteBook(r.Context(), bookID); err != nil {
		h.writeError(w, r, "delete book", err)
		return
	}

	response.Message(w, http.StatusOK, "Book deleted successfully")
}

// GetAllBooks возвращает каталог, начиная с самых новых книг.
func (h *Handler) GetAllBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		h.writeError(w, r, "list books", err)
		return
	}

	response.Data(w, books)
}

// GetRecentBooks возвращает самые новые книги. Количество задаётся параметром limit.
func (h *Handler) GetRecentBooks(w http.ResponseWriter, r *http.Request) {
	n := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			response.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		n = v
	}

	books, err := h.service.ListRecentBooks(r.Context(), n)
	if err != nil {
		h.writeError(w, r, "list recent books", err)
		return
	}

	response.Data(w, books)
}

// GetBookByID возвращает книгу по идентификатору из пути.
func (h *Handler) GetBookByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, "get book", err)
		return
	}

	response.Data(w, b)
}
