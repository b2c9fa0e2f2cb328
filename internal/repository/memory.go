package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/bookheaven/internal/model"
)

type memUser struct {
	user model.User
	seq  int64
}

type memBook struct {
	book model.Book
	seq  int64
}

type memOrder struct {
	order model.Order
	seq   int64
}

type memCheckout struct {
	userID   string
	orderIDs []string
}

// MemoryRepository хранит данные в памяти процесса. Используется для локального запуска и тестов.
type MemoryRepository struct {
	mu        sync.RWMutex
	seq       int64
	now       func() time.Time
	users     map[string]*memUser
	books     map[string]*memBook
	orders    map[string]*memOrder
	checkouts map[string]memCheckout
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:       time.Now,
		users:     make(map[string]*memUser),
		books:     make(map[string]*memBook),
		orders:    make(map[string]*memOrder),
		checkouts: make(map[string]memCheckout),
	}
}

func (r *MemoryRepository) nextSeq() int64 {
	r.seq++
	return r.seq
}

// Close ничего не делает и нужен для совместимости с другими хранилищами.
func (r *MemoryRepository) Close() error {
	return nil
}

func copyUser(u model.User) *model.User {
	u.PasswordHash = slices.Clone(u.PasswordHash)
	u.Favourites = slices.Clone(u.Favourites)
	u.Cart = slices.Clone(u.Cart)
	u.Orders = slices.Clone(u.Orders)
	return &u
}

// CreateUser создаёт нового пользователя.
func (r *MemoryRepository) CreateUser(_ context.Context, u *model.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.user.Username == u.Username {
			return "", fmt.Errorf("%w: %s", ErrUsernameTaken, u.Username)
		}
		if existing.user.Email == u.Email {
			return "", fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
		}
	}

	now := r.now()
	stored := *copyUser(*u)
	stored.ID = uuid.NewString()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Favourites == nil {
		stored.Favourites = []string{}
	}
	if stored.Cart == nil {
		stored.Cart = []string{}
	}
	if stored.Orders == nil {
		stored.Orders = []string{}
	}

	r.users[stored.ID] = &memUser{user: stored, seq: r.nextSeq()}
	return stored.ID, nil
}

// GetUserByID возвращает пользователя по идентификатору.
func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return copyUser(u.user), nil
}

// GetUserByUsername возвращает пользователя по логину.
func (r *MemoryRepository) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.user.Username == username {
			return copyUser(u.user), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryRepository) updateUser(id string, fn func(u *model.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if err := fn(&u.user); err != nil {
		return err
	}
	u.user.UpdatedAt = r.now()
	return nil
}

// UpdateUserAddress обновляет адрес доставки пользователя.
func (r *MemoryRepository) UpdateUserAddress(_ context.Context, id, address string) error {
	return r.updateUser(id, func(u *model.User) error {
		u.Address = address
		return nil
	})
}

// UpdateUserEmail обновляет адрес электронной почты, если он не занят другим пользователем.
func (r *MemoryRepository) UpdateUserEmail(_ context.Context, id, email string) error {
	return r.updateUser(id, func(u *model.User) error {
		for otherID, other := range r.users {
			if otherID != id && other.user.Email == email {
				return fmt.Errorf("%w: %s", ErrEmailTaken, email)
			}
		}
		u.Email = email
		return nil
	})
}

// UpdateUserPassword сохраняет новый хеш пароля.
func (r *MemoryRepository) UpdateUserPassword(_ context.Context, id string, hash []byte) error {
	return r.updateUser(id, func(u *model.User) error {
		u.PasswordHash = slices.Clone(hash)
		return nil
	})
}

// CreateBook добавляет книгу в каталог.
func (r *MemoryRepository) CreateBook(_ context.Context, b *model.Book) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	stored := *b
	stored.ID = uuid.NewString()
	stored.Price = model.PriceFromCents(b.PriceCents())
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r.books[stored.ID] = &memBook{book: stored, seq: r.nextSeq()}
	return stored.ID, nil
}

// UpdateBook обновляет карточку книги.
func (r *MemoryRepository) UpdateBook(_ context.Context, b *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.books[b.ID]
	if !ok {
		return ErrBookNotFound
	}

	updated := *b
	updated.Price = model.PriceFromCents(b.PriceCents())
	updated.CreatedAt = existing.book.CreatedAt
	updated.UpdatedAt = r.now()
	existing.book = updated
	return nil
}

// DeleteBook удаляет книгу из каталога и из корзин и избранного пользователей.
// Заказы с этой книгой сохраняются.
func (r *MemoryRepository) DeleteBook(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)

	for _, u := range r.users {
		u.user.Cart = slices.DeleteFunc(u.user.Cart, func(v string) bool { return v == id })
		u.user.Favourites = slices.DeleteFunc(u.user.Favourites, func(v string) bool { return v == id })
	}
	return nil
}

// GetBook возвращает книгу по идентификатору.
func (r *MemoryRepository) GetBook(_ context.Context, id string) (*model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	book := b.book
	return &book, nil
}

// ListBooks возвращает книги, начиная с самых новых. limit <= 0 означает все книги.
func (r *MemoryRepository) ListBooks(_ context.Context, limit int) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*memBook, 0, len(r.books))
	for _, b := range r.books {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].book.CreatedAt.Equal(all[j].book.CreatedAt) {
			return all[i].book.CreatedAt.After(all[j].book.CreatedAt)
		}
		return all[i].seq > all[j].seq
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	res := make([]model.Book, 0, len(all))
	for _, b := range all {
		res = append(res, b.book)
	}
	return res, nil
}

func (r *MemoryRepository) addRef(userID, bookID string, list func(u *model.User) *[]string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}
	if _, ok := r.books[bookID]; !ok {
		return false, ErrBookNotFound
	}

	refs := list(&u.user)
	if slices.Contains(*refs, bookID) {
		return false, nil
	}
	*refs = append(*refs, bookID)
	u.user.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryRepository) removeRef(userID, bookID string, list func(u *model.User) *[]string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}

	refs := list(&u.user)
	idx := slices.Index(*refs, bookID)
	if idx < 0 {
		return false, nil
	}
	*refs = slices.Delete(*refs, idx, idx+1)
	u.user.UpdatedAt = r.now()
	return true, nil
}

func (r *MemoryRepository) resolveBooks(userID string, list func(u *model.User) *[]string) ([]model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	refs := *list(&u.user)
	res := make([]model.Book, 0, len(refs))
	for _, id := range refs {
		if b, ok := r.books[id]; ok {
			res = append(res, b.book)
		}
	}
	return res, nil
}

func cartOf(u *model.User) *[]string       { return &u.Cart }
func favouritesOf(u *model.User) *[]string { return &u.Favourites }

// AddToCart добавляет книгу в корзину. Возвращает false, если книга уже была в корзине.
func (r *MemoryRepository) AddToCart(_ context.Context, userID, bookID string) (bool, error) {
	return r.addRef(userID, bookID, cartOf)
}

// RemoveFromCart удаляет книгу из корзины. Возвращает false, если книги в корзине не было.
func (r *MemoryRepository) RemoveFromCart(_ context.Context, userID, bookID string) (bool, error) {
	return r.removeRef(userID, bookID, cartOf)
}

// GetCartBooks возвращает книги корзины в порядке добавления.
func (r *MemoryRepository) GetCartBooks(_ context.Context, userID string) ([]model.Book, error) {
	return r.resolveBooks(userID, cartOf)
}

// AddFavourite добавляет книгу в избранное. Возвращает false, если книга уже была в избранном.
func (r *MemoryRepository) AddFavourite(_ context.Context, userID, bookID string) (bool, error) {
	return r.addRef(userID, bookID, favouritesOf)
}

// RemoveFavourite удаляет книгу из избранного.
func (r *MemoryRepository) RemoveFavourite(_ context.Context, userID, bookID string) (bool, error) {
	return r.removeRef(userID, bookID, favouritesOf)
}

// GetFavouriteBooks возвращает избранные книги в порядке добавления.
func (r *MemoryRepository) GetFavouriteBooks(_ context.Context, userID string) ([]model.Book, error) {
	return r.resolveBooks(userID, favouritesOf)
}

// PlaceOrder атомарно создаёт по заказу на каждую книгу, добавляет их в историю пользователя и
// убирает купленные книги из корзины. Повторный вызов с тем же ключом возвращает уже созданные заказы.
func (r *MemoryRepository) PlaceOrder(_ context.Context, userID, checkoutKey string, bookIDs []string) ([]model.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, false, ErrUserNotFound
	}

	if c, ok := r.checkouts[checkoutKey]; ok {
		if c.userID != userID {
			return nil, false, ErrCheckoutKeyConflict
		}
		res := make([]model.Order, 0, len(c.orderIDs))
		for _, id := range c.orderIDs {
			res = append(res, r.orders[id].order)
		}
		return res, true, nil
	}

	for _, bookID := range bookIDs {
		if _, ok := r.books[bookID]; !ok {
			return nil, false, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
		}
	}

	now := r.now()
	res := make([]model.Order, 0, len(bookIDs))
	ids := make([]string, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		o := model.Order{
			ID:          uuid.NewString(),
			UserID:      userID,
			BookID:      bookID,
			Status:      model.OrderStatusPlaced,
			CheckoutKey: checkoutKey,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.orders[o.ID] = &memOrder{order: o, seq: r.nextSeq()}
		res = append(res, o)
		ids = append(ids, o.ID)
	}

	u.user.Orders = append(u.user.Orders, ids...)
	u.user.Cart = slices.DeleteFunc(u.user.Cart, func(v string) bool { return slices.Contains(bookIDs, v) })
	u.user.UpdatedAt = now
	r.checkouts[checkoutKey] = memCheckout{userID: userID, orderIDs: ids}

	return res, false, nil
}

func (r *MemoryRepository) resolveOrder(o *memOrder, withUser bool) model.Order {
	order := o.order
	if b, ok := r.books[order.BookID]; ok {
		book := b.book
		order.Book = &book
	}
	if withUser {
		if u, ok := r.users[order.UserID]; ok {
			user := copyUser(u.user)
			user.PasswordHash = nil
			order.User = user
		}
	}
	return order
}

func (r *MemoryRepository) sortedOrders(filter func(o *memOrder) bool, withUser bool) []model.Order {
	selected := make([]*memOrder, 0)
	for _, o := range r.orders {
		if filter(o) {
			selected = append(selected, o)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		if !selected[i].order.CreatedAt.Equal(selected[j].order.CreatedAt) {
			return selected[i].order.CreatedAt.After(selected[j].order.CreatedAt)
		}
		return selected[i].seq > selected[j].seq
	})

	res := make([]model.Order, 0, len(selected))
	for _, o := range selected {
		res = append(res, r.resolveOrder(o, withUser))
	}
	return res
}

// GetOrdersByUser возвращает заказы пользователя, начиная с самых новых.
func (r *MemoryRepository) GetOrdersByUser(_ context.Context, userID string) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.users[userID]; !ok {
		return nil, ErrUserNotFound
	}
	return r.sortedOrders(func(o *memOrder) bool { return o.order.UserID == userID }, false), nil
}

// GetAllOrders возвращает все заказы с книгами и покупателями, начиная с самых новых.
func (r *MemoryRepository) GetAllOrders(_ context.Context) ([]model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedOrders(func(*memOrder) bool { return true }, true), nil
}

// GetOrder возвращает заказ по идентификатору.
func (r *MemoryRepository) GetOrder(_ context.Context, id string) (*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	order := r.resolveOrder(o, false)
	return &order, nil
}

// UpdateOrderStatus меняет статус заказа, если текущий статус равен from.
func (r *MemoryRepository) UpdateOrderStatus(_ context.Context, id string, from, to model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	if o.order.Status != from {
		return ErrStatusConflict
	}
	o.order.Status = to
	o.order.UpdatedAt = r.now()
	return nil
}
