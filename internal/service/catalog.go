package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/cache"
	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/validation"
)

// DefaultRecentBooks — количество книг в подборке новинок по умолчанию.
const DefaultRecentBooks = 4

// ListBooks возвращает весь каталог, начиная с самых новых книг.
func (s *Service) ListBooks(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if s.cacheGet(ctx, cache.KeyAllBooks, &books) {
		return books, nil
	}

	books, err := s.repo.ListBooks(ctx, 0)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cache.KeyAllBooks, books)
	return books, nil
}

// ListRecentBooks возвращает n самых новых книг. n <= 0 означает значение по умолчанию.
func (s *Service) ListRecentBooks(ctx context.Context, n int) ([]model.Book, error) {
	if n <= 0 {
		n = DefaultRecentBooks
	}

	cacheable := n == DefaultRecentBooks
	var books []model.Book
	if cacheable && s.cacheGet(ctx, cache.KeyRecentBooks, &books) {
		return books, nil
	}

	books, err := s.repo.ListBooks(ctx, n)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.cacheSet(ctx, cache.KeyRecentBooks, books)
	}
	return books, nil
}

// GetBook возвращает книгу по идентификатору.
func (s *Service) GetBook(ctx context.Context, id string) (*model.Book, error) {
	var b model.Book
	if s.cacheGet(ctx, cache.KeyBook(id), &b) {
		return &b, nil
	}

	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cache.KeyBook(id), book)
	return book, nil
}

// CreateBook добавляет книгу в каталог и возвращает сохранённую запись.
func (s *Service) CreateBook(ctx context.Context, b *model.Book) (*model.Book, error) {
	if err := validation.ValidateBook(b); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateBook(ctx, b)
	if err != nil {
		return nil, err
	}

	s.invalidateCatalog(ctx)
	s.logger.Info("book created", zap.String("bookID", id), zap.String("title", b.Title))

	return s.repo.GetBook(ctx, id)
}

// UpdateBook заменяет карточку книги с идентификатором id.
func (s *Service) UpdateBook(ctx context.Context, id string, b *model.Book) error {
	if err := validation.ValidateBook(b); err != nil {
		return err
	}

	updated := *b
	updated.ID = id
	if err := s.repo.UpdateBook(ctx, &updated); err != nil {
		return err
	}

	s.invalidateCatalog(ctx, cache.KeyBook(id))
	return nil
}

// DeleteBook удаляет книгу из каталога. Заказы с этой книгой сохраняются.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}

	s.invalidateCatalog(ctx, cache.KeyBook(id))
	s.logger.Info("book deleted", zap.String("bookID", id))
	return nil
}

func (s *Service) invalidateCatalog(ctx context.Context, extra ...string) {
	keys := append([]string{cache.KeyAllBooks, cache.KeyRecentBooks}, extra...)
	s.cacheDelete(ctx, keys...)
}
