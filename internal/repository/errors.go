// Package repository содержит реализации хранилищ пользователей, каталога и заказов.
package repository

import "errors"

var (
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken возвращается при попытке создать пользователя с уже существующим логином.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken возвращается, если адрес электронной почты уже принадлежит другому пользователю.
	ErrEmailTaken = errors.New("email already exists")
	// ErrBookNotFound возвращается, если книга не найдена в каталоге.
	ErrBookNotFound = errors.New("book not found")
	// ErrOrderNotFound возвращается, если заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrStatusConflict возвращается, если статус заказа изменился параллельно.
	ErrStatusConflict = errors.New("order status changed concurrently")
	// ErrCheckoutKeyConflict возвращается, если ключ идемпотентности уже использован другим пользователем.
	ErrCheckoutKeyConflict = errors.New("checkout key already used by another user")
)
