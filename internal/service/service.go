// Package service реализует бизнес-логику книжного магазина BookHeaven.
package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bookheaven/internal/metrics"
	"github.com/mmeshcher/bookheaven/internal/model"
)

var (
	// ErrInvalidCredentials возвращается при неверном логине или пароле.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword возвращается, если текущий пароль при смене пароля указан неверно.
	ErrWrongPassword = errors.New("current password is incorrect")
	// ErrEmptyOrder возвращается при оформлении заказа без позиций.
	ErrEmptyOrder = errors.New("order has no line items")
	// ErrInvalidStatus возвращается для неизвестного статуса заказа.
	ErrInvalidStatus = errors.New("unknown order status")
	// ErrIllegalTransition возвращается, если переход между статусами заказа запрещён.
	ErrIllegalTransition = errors.New("illegal order status transition")
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error

	CreateUser(ctx context.Context, u *model.User) (string, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUserAddress(ctx context.Context, id, address string) error
	UpdateUserEmail(ctx context.Context, id, email string) error
	UpdateUserPassword(ctx context.Context, id string, hash []byte) error

	CreateBook(ctx context.Context, b *model.Book) (string, error)
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id string) error
	GetBook(ctx context.Context, id string) (*model.Book, error)
	ListBooks(ctx context.Context, limit int) ([]model.Book, error)

	AddToCart(ctx context.Context, userID, bookID string) (bool, error)
	RemoveFromCart(ctx context.Context, userID, bookID string) (bool, error)
	GetCartBooks(ctx context.Context, userID string) ([]model.Book, error)

	AddFavourite(ctx context.Context, userID, bookID string) (bool, error)
	RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error)
	GetFavouriteBooks(ctx context.Context, userID string) ([]model.Book, error)

	PlaceOrder(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus) error
}

// BookCache описывает кэш чтений каталога.
type BookCache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
	Delete(ctx context.Context, keys ...string)
}

// TokenIssuer выпускает токены доступа.
type TokenIssuer interface {
	IssueToken(userID string, role model.Role) (string, error)
}

// Service содержит бизнес-логику сервиса BookHeaven.
type Service struct {
	repo     Repository
	tokens   TokenIssuer
	cache    BookCache
	metrics  *metrics.Metrics
	logger   *zap.Logger
	hashCost int

	// dummyHash сравнивается с паролем, если пользователь не найден,
	// чтобы время ответа не выдавало существование логина.
	dummyHash []byte
}

// Option настраивает Service.
type Option func(*Service)

// WithCache подключает кэш каталога.
func WithCache(c BookCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger задаёт логгер сервиса.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService создаёт новый сервис с указанным репозиторием и выпускающим токены компонентом.
func NewService(repo Repository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		tokens:   tokens,
		logger:   zap.NewNop(),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("bookheaven-dummy-password"), s.hashCost)
	return s
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

func (s *Service) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest)
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache != nil {
		s.cache.Set(ctx, key, value)
	}
}

func (s *Service) cacheDelete(ctx context.Context, keys ...string) {
	if s.cache != nil {
		s.cache.Delete(ctx, keys...)
	}
}
