// Package validation содержит функции валидации входных данных.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mmeshcher/bookheaven/internal/model"
)

const (
	// MinUsernameLength — минимальная длина логина при регистрации.
	MinUsernameLength = 4
	// MinPasswordLength — минимальная длина пароля при регистрации.
	MinPasswordLength = 5
	// MinNewPasswordLength — минимальная длина нового пароля при его смене.
	MinNewPasswordLength = 6
	// MaxBookPrice — верхняя граница цены книги, при которой цена в копейках помещается в int64.
	MaxBookPrice = 1_000_000_000_000
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Error описывает нарушение правила валидации конкретного поля.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func check(field string, value any, tag, message string) error {
	if err := validate.Var(value, tag); err != nil {
		return &Error{Field: field, Message: message}
	}
	return nil
}

// ValidateSignUp проверяет данные регистрации нового пользователя.
func ValidateSignUp(username, email, password, address string) error {
	if err := check("username", strings.TrimSpace(username), fmt.Sprintf("required,min=%d", MinUsernameLength),
		fmt.Sprintf("Username length should be at least %d characters", MinUsernameLength)); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := check("password", password, fmt.Sprintf("required,min=%d", MinPasswordLength),
		fmt.Sprintf("Password length should be at least %d characters", MinPasswordLength)); err != nil {
		return err
	}
	return ValidateAddress(address)
}

// ValidateEmail проверяет формат адреса электронной почты.
func ValidateEmail(email string) error {
	return check("email", strings.TrimSpace(email), "required,email", "A valid email is required")
}

// ValidateAddress проверяет, что адрес доставки не пустой.
func ValidateAddress(address string) error {
	return check("address", strings.TrimSpace(address), "required", "Address is required")
}

// ValidateNewPassword проверяет новый пароль при смене.
func ValidateNewPassword(password string) error {
	return check("newPassword", password, fmt.Sprintf("required,min=%d", MinNewPasswordLength),
		fmt.Sprintf("Password must be at least %d characters long", MinNewPasswordLength))
}

// ValidateBook проверяет карточку книги перед сохранением в каталоге.
func ValidateBook(b *model.Book) error {
	if b == nil {
		return &Error{Field: "book", Message: "Book is required"}
	}

	checks := []struct {
		field   string
		value   any
		tag     string
		message string
	}{
		{"url", b.URL, "required,http_url", "A valid purchase url is required"},
		{"title", strings.TrimSpace(b.Title), "required", "Title is required"},
		{"author", strings.TrimSpace(b.Author), "required", "Author is required"},
		{"price", b.Price, fmt.Sprintf("gte=0,lte=%d", MaxBookPrice),
			fmt.Sprintf("Price must be between 0 and %d", MaxBookPrice)},
		{"language", strings.TrimSpace(b.Language), "required", "Language is required"},
		{"image", b.Image, "omitempty,http_url", "Image must be a valid url"},
	}

	for _, c := range checks {
		if err := check(c.field, c.value, c.tag, c.message); err != nil {
			return err
		}
	}

	return nil
}
