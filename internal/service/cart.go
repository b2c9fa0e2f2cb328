package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/mmeshcher/bookheaven/internal/model"
)

const (
	listCart       = "cart"
	listFavourites = "favourites"
)

// AddToCart добавляет книгу в корзину. Возвращает false, если книга уже была в корзине.
func (s *Service) AddToCart(ctx context.Context, userID, bookID string) (bool, error) {
	added, err := s.repo.AddToCart(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	s.metrics.ListMutation(listCart, "add", added)
	return added, nil
}

// RemoveFromCart убирает книгу из корзины. Отсутствие книги в корзине не считается ошибкой.
func (s *Service) RemoveFromCart(ctx context.Context, userID, bookID string) (bool, error) {
	removed, err := s.repo.RemoveFromCart(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	s.metrics.ListMutation(listCart, "remove", removed)
	return removed, nil
}

// GetCart возвращает корзину, начиная с последней добавленной книги, вместе с итоговой суммой.
func (s *Service) GetCart(ctx context.Context, userID string) (*model.CartView, error) {
	books, err := s.repo.GetCartBooks(ctx, userID)
	if err != nil {
		return nil, err
	}

	books = lo.Reverse(books)
	total := lo.SumBy(books, func(b model.Book) int64 { return b.PriceCents() })

	return &model.CartView{
		Books: books,
		Total: model.PriceFromCents(total),
	}, nil
}

// AddFavourite добавляет книгу в избранное. Возвращает false, если книга уже была в избранном.
func (s *Service) AddFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	added, err := s.repo.AddFavourite(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	s.metrics.ListMutation(listFavourites, "add", added)
	return added, nil
}

// RemoveFavourite убирает книгу из избранного.
func (s *Service) RemoveFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	removed, err := s.repo.RemoveFavourite(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	s.metrics.ListMutation(listFavourites, "remove", removed)
	return removed, nil
}

// GetFavourites возвращает избранные книги в порядке добавления.
func (s *Service) GetFavourites(ctx context.Context, userID string) ([]model.Book, error) {
	return s.repo.GetFavouriteBooks(ctx, userID)
}
