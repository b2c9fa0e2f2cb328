package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmeshcher/bookheaven/internal/model"
	"github.com/mmeshcher/bookheaven/internal/repository"
	"github.com/mmeshcher/bookheaven/internal/validation"
)

// SignUpInput содержит данные регистрации.
type SignUpInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
}

// Session описывает результат успешного входа.
type Session struct {
	ID    string     `json:"id"`
	Role  model.Role `json:"role"`
	Token string     `json:"token"`
}

// SignUp регистрирует нового пользователя с ролью user и возвращает его идентификатор.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (string, error) {
	return s.register(ctx, in, model.RoleUser)
}

// CreateAdmin регистрирует пользователя с ролью admin.
func (s *Service) CreateAdmin(ctx context.Context, in SignUpInput) (string, error) {
	return s.register(ctx, in, model.RoleAdmin)
}

func (s *Service) register(ctx context.Context, in SignUpInput, role model.Role) (string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)

	if err := validation.ValidateSignUp(in.Username, in.Email, in.Password, in.Address); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.CreateUser(ctx, &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      in.Address,
		Role:         role,
		Avatar:       model.DefaultAvatar,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("user registered", zap.String("userID", id), zap.String("role", string(role)))
	return id, nil
}

// SignIn проверяет логин и пароль и выпускает токен доступа.
// Неизвестный логин и неверный пароль неразличимы для вызывающего.
func (s *Service) SignIn(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(u.ID, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &Session{ID: u.ID, Role: u.Role, Token: token}, nil
}

// GetUser возвращает профиль пользователя.
func (s *Service) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// GetUserByUsername возвращает профиль пользователя по логину без хеша пароля.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	u.PasswordHash = nil
	return u, nil
}

// UpdateAddress обновляет адрес доставки.
func (s *Service) UpdateAddress(ctx context.Context, userID, address string) error {
	address = strings.TrimSpace(address)
	if err := validation.ValidateAddress(address); err != nil {
		return err
	}
	return s.repo.UpdateUserAddress(ctx, userID, address)
}

// UpdateEmail обновляет адрес электронной почты, если он не занят другим пользователем.
func (s *Service) UpdateEmail(ctx context.Context, userID, email string) error {
	email = strings.TrimSpace(email)
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}
	return s.repo.UpdateUserEmail(ctx, userID, email)
}

// UpdatePassword меняет пароль после проверки текущего.
func (s *Service) UpdatePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(current)); err != nil {
		return ErrWrongPassword
	}

	if err := validation.ValidateNewPassword(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdateUserPassword(ctx, userID, hash)
}
