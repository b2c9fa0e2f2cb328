package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mmeshcher/bookheaven/internal/model"
)

// PlaceOrder оформляет заказ: по одному заказу на каждую книгу из bookIDs.
// Повторные идентификаторы схлопываются. Пустой checkoutKey заменяется случайным,
// повтор ключа тем же пользователем возвращает заказы первого вызова (replayed = true).
func (s *Service) PlaceOrder(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error) {
	ids := lo.Uniq(lo.Filter(bookIDs, func(id string, _ int) bool {
		return strings.TrimSpace(id) != ""
	}))
	if len(ids) == 0 {
		return nil, false, ErrEmptyOrder
	}

	checkoutKey = strings.TrimSpace(checkoutKey)
	if checkoutKey == "" {
		checkoutKey = uuid.NewString()
	}

	books := make(map[string]*model.Book, len(ids))
	for _, id := range ids {
		b, err := s.repo.GetBook(ctx, id)
		if err != nil {
			return nil, false, fmt.Errorf("line item %s: %w", id, err)
		}
		books[id] = b
	}

	orders, replayed, err := s.repo.PlaceOrder(ctx, userID, checkoutKey, ids)
	if err != nil {
		return nil, false, err
	}

	for i := range orders {
		if orders[i].Book == nil {
			orders[i].Book = books[orders[i].BookID]
		}
	}

	if replayed {
		s.logger.Info("checkout replayed", zap.String("userID", userID), zap.String("checkoutKey", checkoutKey))
		return orders, true, nil
	}

	s.metrics.OrdersPlaced(len(orders))
	s.logger.Info("order placed",
		zap.String("userID", userID),
		zap.String("checkoutKey", checkoutKey),
		zap.Int("items", len(orders)),
	)
	return orders, false, nil
}

// OrderHistory возвращает заказы пользователя, начиная с самых новых.
func (s *Service) OrderHistory(ctx context.Context, userID string) ([]model.Order, error) {
	return s.repo.GetOrdersByUser(ctx, userID)
}

// ListAllOrders возвращает все заказы всех пользователей, начиная с самых новых.
func (s *Service) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.GetAllOrders(ctx)
}

// UpdateOrderStatus переводит заказ в новый статус, если переход разрешён.
// Повторная установка текущего статуса ничего не меняет.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID, status string) (*model.Order, error) {
	next := model.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Заказы без статуса считаются только что оформленными.
	current := o.Status
	if current == "" {
		current = model.OrderStatusPlaced
	}

	if current == next {
		return o, nil
	}
	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, next)
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, o.Status, next); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("orderID", orderID),
		zap.String("from", string(current)),
		zap.String("to", string(next)),
	)

	return s.repo.GetOrder(ctx, orderID)
}
