// Package handler содержит HTTP-обработчики API книжного магазина BookHeaven.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/metrics"
	"github.com/mmeshcher/bookheaven/internal/middleware"
	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/repository"
	"github.com/mmeshcher/bookheaven/internal/response"
	"github.com/mmeshcher/bookheaven/internal/service"
	"github.com/mmeshcher/bookheaven/internal/validation"
)

const (
	bookIDHeader         = "bookid"
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"

	maxBodyBytes = 1 << 20
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	SignUp(ctx context.Context, in service.SignUpInput) (string, error)
	SignIn(ctx context.Context, username, password string) (*service.Session, error)
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateAddress(ctx context.Context, userID, address string) error
	UpdateEmail(ctx context.Context, userID, email string) error
	UpdatePassword(ctx context.Context, userID, current, next string) error

	ListBooks(ctx context.Context) ([]model.Book, error)
	ListRecentBooks(ctx context.Context, n int) ([]model.Book, error)
	GetBook(ctx context.Context, id string) (*model.Book, error)
	CreateBook(ctx context.Context, b *model.Book) (*model.Book, error)
	UpdateBook(ctx context.Context, id string, b *model.Book) error
	DeleteBook(ctx context.Context, id string) error

	AddToCart(ctx context.Context, userID, bookID string) (bool, error)
	RemoveFromCart(ctx context.Context, userID, bookID string) (bool, error)
	GetCart(ctx context.Context, userID string) (*model.CartView, error)
	AddFavourite(ctx context.Context, userID, bookID string) (bool, error)
	RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error)
	GetFavourites(ctx context.Context, userID string) ([]model.Book, error)

	PlaceOrder(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error)
	OrderHistory(ctx context.Context, userID string) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (*model.Order, error)
}

// Handler реализует HTTP-обработчики API сервиса BookHeaven.
type Handler struct {
	service        Service
	logger         *zap.Logger
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	corsOrigin     string
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger, auth *middleware.AuthMiddleware, m *metrics.Metrics, corsOrigin string) *Handler {
	return &Handler{
		service:        s,
		logger:         logger,
		authMiddleware: auth,
		metrics:        m,
		corsOrigin:     corsOrigin,
	}
}

// decodeJSON читает тело запроса в dst. Пустое или некорректное тело считается ошибкой клиента.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication token required")
		return "", false
	}
	return userID, true
}

func bookIDFromHeader(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(bookIDHeader))
	if id == "" {
		response.Error(w, http.StatusBadRequest, "bookid header is required")
		return "", false
	}
	return id, true
}

// writeError переводит доменную ошибку в HTTP-статус. Неизвестные ошибки логируются и отдаются как 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var vErr *validation.Error

	switch {
	case errors.As(err, &vErr):
		response.Error(w, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, repository.ErrUsernameTaken):
		response.Error(w, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, repository.ErrEmailTaken):
		response.Error(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrWrongPassword):
		response.Error(w, http.StatusBadRequest, "Current password is incorrect")
	case errors.Is(err, service.ErrEmptyOrder):
		response.Error(w, http.StatusBadRequest, "Order must contain at least one book")
	case errors.Is(err, service.ErrInvalidStatus):
		response.Error(w, http.StatusBadRequest, "Invalid order status")
	case errors.Is(err, repository.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrBookNotFound):
		response.Error(w, http.StatusNotFound, "Book not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		response.Error(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrIllegalTransition):
		response.Error(w, http.StatusConflict, "Status transition is not allowed")
	case errors.Is(err, repository.ErrStatusConflict):
		response.Error(w, http.StatusConflict, "Order status was changed by another request")
	case errors.Is(err, repository.ErrCheckoutKeyConflict):
		response.Error(w, http.StatusConflict, "Idempotency key is already in use")
	default:
		fields := []zap.Field{zap.Error(err), zap.String("op", op)}
		if userID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
			fields = append(fields, zap.String("userID", userID))
		}
		h.logger.Error("request failed", fields...)
		response.Error(w, http.StatusInternalServerError, "")
	}
}
