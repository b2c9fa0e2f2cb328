// Package seed наполняет хранилище начальными данными: учётной записью администратора и стартовым каталогом.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/repository"
	"github.com/mmeshcher/bookheaven/internal/service"
)

//go:embed books.json
var starterCatalog []byte

// Admin описывает учётную запись администратора по умолчанию.
var Admin = service.SignUpInput{
	Username: "admin",
	Email:    "admin@bookstore.com",
	Password: "admin123",
	Address:  "Admin Address",
}

// ErrAdminEmailInUse возвращается, если почта администратора занята другой учётной записью.
var ErrAdminEmailInUse = errors.New("admin email is used by another account")

// Accounts создаёт учётные записи администраторов.
type Accounts interface {
	CreateAdmin(ctx context.Context, in service.SignUpInput) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Catalog читает и пополняет каталог.
type Catalog interface {
	ListBooks(ctx context.Context) ([]model.Book, error)
	CreateBook(ctx context.Context, b *model.Book) (*model.Book, error)
}

// CreateAdmin создаёт администратора. Если логин уже занят, возвращает created = false без ошибки.
// Хранилище может сообщить о занятой почте раньше, чем о занятом логине, поэтому при ErrEmailTaken
// логин проверяется отдельно: если его нет, почта занята чужой записью и возвращается ErrAdminEmailInUse.
func CreateAdmin(ctx context.Context, accounts Accounts, in service.SignUpInput, logger *zap.Logger) (bool, error) {
	id, err := accounts.CreateAdmin(ctx, in)
	switch {
	case errors.Is(err, repository.ErrUsernameTaken):
		logger.Info("admin user already exists", zap.String("username", in.Username))
		return false, nil
	case errors.Is(err, repository.ErrEmailTaken):
		return adminByUsername(ctx, accounts, in, logger)
	case err != nil:
		return false, fmt.Errorf("create admin: %w", err)
	}

	logger.Info("admin user created", zap.String("username", in.Username), zap.String("id", id))
	return true, nil
}

func adminByUsername(ctx context.Context, accounts Accounts, in service.SignUpInput, logger *zap.Logger) (bool, error) {
	u, err := accounts.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.Error("admin email is taken by another account",
			zap.String("username", in.Username), zap.String("email", in.Email))
		return false, fmt.Errorf("%w: %s", ErrAdminEmailInUse, in.Email)
	}
	if err != nil {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	logger.Info("admin user already exists", zap.String("username", u.Username))
	return false, nil
}

type bookEntry struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Language    string  `json:"language"`
	Image       string  `json:"image"`
}

// StarterBooks возвращает встроенный стартовый каталог.
func StarterBooks() ([]model.Book, error) {
	var entries []bookEntry
	if err := sonic.Unmarshal(starterCatalog, &entries); err != nil {
		return nil, fmt.Errorf("decode starter catalog: %w", err)
	}

	books := make([]model.Book, 0, len(entries))
	for _, e := range entries {
		books = append(books, model.Book{
			URL:         e.URL,
			Title:       e.Title,
			Author:      e.Author,
			Price:       e.Price,
			Description: e.Description,
			Language:    e.Language,
			Image:       e.Image,
		})
	}
	return books, nil
}

// SeedBooks добавляет книги, названий которых ещё нет в каталоге, и возвращает число добавленных.
func SeedBooks(ctx context.Context, catalog Catalog, books []model.Book, logger *zap.Logger) (int, error) {
	existing, err := catalog.ListBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	titles := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		titles[strings.ToLower(strings.TrimSpace(b.Title))] = struct{}{}
	}

	added := 0
	for i := range books {
		key := strings.ToLower(strings.TrimSpace(books[i].Title))
		if _, ok := titles[key]; ok {
			logger.Info("book skipped, already exists", zap.String("title", books[i].Title))
			continue
		}

		b := books[i]
		if _, err := catalog.CreateBook(ctx, &b); err != nil {
			return added, fmt.Errorf("add book %q: %w", books[i].Title, err)
		}
		titles[key] = struct{}{}
		added++
		logger.Info("book added", zap.String("title", books[i].Title))
	}

	return added, nil
}
