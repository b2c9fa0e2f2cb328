package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/repository"
)

func TestPlaceOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	uid := signUp(t, svc, "reader1")
	b1 := addBook(t, svc, "B1", 2.99)
	b2 := addBook(t, svc, "B2", 4.99)
	b3 := addBook(t, svc, "B3", 1.00)

	for _, id := range []string{b1, b2, b3} {
		_, err := svc.AddToCart(ctx, uid, id)
		require.NoError(t, err)
	}

	orders, replayed, err := svc.PlaceOrder(ctx, uid, "", []string{b1, b2, b1, ""})
	require.NoError(t, err)
	assert.False(t, replayed)
	require.Len(t, orders, 2)
	for _, o := range orders {
		assert.Equal(t, model.OrderStatusPlaced, o.Status)
		require.NotNil(t, o.Book)
		assert.NotEmpty(t, o.CheckoutKey)
	}

	cart, err := svc.GetCart(ctx, uid)
	require.NoError(t, err)
	require.Len(t, cart.Books, 1)
	assert.Equal(t, b3, cart.Books[0].ID)

	u, err := svc.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, u.Orders, 2)

	history, err := svc.OrderHistory(ctx, uid)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, orders[1].ID, history[0].ID)
}

func TestPlaceOrder_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	uid := signUp(t, svc, "reader1")
	b1 := addBook(t, svc, "B1", 1)

	first, replayed, err := svc.PlaceOrder(ctx, uid, "checkout-1", []string{b1})
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := svc.PlaceOrder(ctx, uid, "checkout-1", []string{b1})
	require.NoError(t, err)
	assert.True(t, replayed)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	history, err := svc.OrderHistory(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPlaceOrder_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	uid := signUp(t, svc, "reader1")
	b1 := addBook(t, svc, "B1", 1)

	_, _, err := svc.PlaceOrder(ctx, uid, "", nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, _, err = svc.PlaceOrder(ctx, uid, "", []string{" "})
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, _, err = svc.PlaceOrder(ctx, uid, "", []string{b1, "missing"})
	assert.ErrorIs(t, err, repository.ErrBookNotFound)

	history, err := svc.OrderHistory(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPlaceOrder_StoreFailure(t *testing.T) {
	repo := repository.NewMemoryRepository()
	boom := errors.New("tx aborted")
	svc := NewService(&failingRepo{Repository: repo, err: boom}, stubTokens{})

	bookID, err := repo.CreateBook(context.Background(), &model.Book{URL: "https://x.io", Title: "T", Author: "A", Language: "English"})
	require.NoError(t, err)

	_, _, err = svc.PlaceOrder(context.Background(), "user", "", []string{bookID})
	assert.ErrorIs(t, err, boom)
}

func TestListAllOrders(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u1 := signUp(t, svc, "reader1")
	u2 := signUp(t, svc, "reader2")
	b1 := addBook(t, svc, "B1", 1)

	_, _, err := svc.PlaceOrder(ctx, u1, "", []string{b1})
	require.NoError(t, err)
	_, _, err = svc.PlaceOrder(ctx, u2, "", []string{b1})
	require.NoError(t, err)

	all, err := svc.ListAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].User)
	assert.Equal(t, "reader2", all[0].User.Username)
	require.NotNil(t, all[0].Book)
}

func TestUpdateOrderStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	uid := signUp(t, svc, "reader1")
	b1 := addBook(t, svc, "B1", 1)
	orders, _, err := svc.PlaceOrder(ctx, uid, "", []string{b1})
	require.NoError(t, err)
	id := orders[0].ID

	_, err = svc.UpdateOrderStatus(ctx, id, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateOrderStatus(ctx, id, "delivered")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = svc.UpdateOrderStatus(ctx, "missing", "shipped")
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)

	o, err := svc.UpdateOrderStatus(ctx, id, " Shipped ")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, o.Status)

	o, err = svc.UpdateOrderStatus(ctx, id, "shipped")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, o.Status)

	o, err = svc.UpdateOrderStatus(ctx, id, "delivered")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, o.Status)

	_, err = svc.UpdateOrderStatus(ctx, id, "cancelled")
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

// conflictRepo имитирует параллельное изменение статуса между чтением и записью.
type conflictRepo struct {
	Repository
}

func (conflictRepo) UpdateOrderStatus(context.Context, string, model.OrderStatus, model.OrderStatus) error {
	return repository.ErrStatusConflict
}

func TestUpdateOrderStatus_Conflict(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := NewService(conflictRepo{Repository: repo}, stubTokens{})
	ctx := context.Background()

	uid, err := repo.CreateUser(ctx, &model.User{Username: "reader1", Email: "r@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	bid, err := repo.CreateBook(ctx, &model.Book{URL: "https://x.io", Title: "T", Author: "A", Language: "English"})
	require.NoError(t, err)
	orders, _, err := repo.PlaceOrder(ctx, uid, "k", []string{bid})
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, orders[0].ID, "shipped")
	assert.ErrorIs(t, err, repository.ErrStatusConflict)
}

// deletingRepo удаляет книгу между проверкой позиций заказа и его оформлением.
type deletingRepo struct {
	*repository.MemoryRepository
	bookID string
}

func (r deletingRepo) PlaceOrder(ctx context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error) {
	if err := r.MemoryRepository.DeleteBook(ctx, r.bookID); err != nil {
		return nil, false, err
	}
	return r.MemoryRepository.PlaceOrder(ctx, userID, checkoutKey, bookIDs)
}

func TestPlaceOrder_BookDeletedDuringCheckout(t *testing.T) {
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	uid, err := repo.CreateUser(ctx, &model.User{Username: "reader1", Email: "r@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	keep, err := repo.CreateBook(ctx, &model.Book{URL: "https://x.io/1", Title: "Keep", Author: "A", Language: "English"})
	require.NoError(t, err)
	gone, err := repo.CreateBook(ctx, &model.Book{URL: "https://x.io/2", Title: "Gone", Author: "A", Language: "English"})
	require.NoError(t, err)
	_, err = repo.AddToCart(ctx, uid, keep)
	require.NoError(t, err)

	svc := NewService(deletingRepo{MemoryRepository: repo, bookID: gone}, stubTokens{})

	_, _, err = svc.PlaceOrder(ctx, uid, "k", []string{keep, gone})
	require.ErrorIs(t, err, repository.ErrBookNotFound)

	history, err := repo.GetOrdersByUser(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, history)

	cart, err := repo.GetCartBooks(ctx, uid)
	require.NoError(t, err)
	require.Len(t, cart, 1)
	assert.Equal(t, keep, cart[0].ID)

	orders, replayed, err := repo.PlaceOrder(ctx, uid, "k", []string{keep})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Len(t, orders, 1)
}
