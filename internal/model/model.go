// Package model содержит доменные сущности книжного магазина BookHeaven.
package model

import (
	"math"
	"time"
)

// DefaultAvatar используется, если пользователь не загрузил собственный аватар.
const DefaultAvatar = "https://cdn-icons-png.flaticon.com/128/3177/3177440.png"

// Role описывает роль пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User представляет зарегистрированного покупателя или администратора.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Address      string    `json:"address"`
	Role         Role      `json:"role"`
	Avatar       string    `json:"avatar"`
	Favourites   []string  `json:"favourite"`
	Cart         []string  `json:"cart"`
	Orders       []string  `json:"orders"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Book описывает позицию каталога.
type Book struct {
	ID          string    `json:"_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PriceCents переводит цену в копейки для хранения.
func (b *Book) PriceCents() int64 {
	return int64(math.Round(b.Price * 100))
}

// PriceFromCents переводит сохранённую цену в копейках обратно в денежное значение.
func PriceFromCents(cents int64) float64 {
	return float64(cents) / 100
}

// OrderStatus описывает состояние заказа.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:  {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered, OrderStatusCancelled},
}

// Valid сообщает, является ли статус одним из известных.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, что из статуса больше нет переходов.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo проверяет, разрешён ли переход из текущего статуса в next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order описывает покупку одной книги одним пользователем.
type Order struct {
	ID          string      `json:"_id"`
	UserID      string      `json:"-"`
	BookID      string      `json:"-"`
	Status      OrderStatus `json:"status"`
	CheckoutKey string      `json:"-"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`

	// Book и User заполняются при чтении, если связанные записи ещё существуют.
	Book *Book `json:"book,omitempty"`
	User *User `json:"user,omitempty"`
}

// CartView содержит корзину пользователя, начиная с последней добавленной книги.
type CartView struct {
	Books []Book  `json:"books"`
	Total float64 `json:"total"`
}
