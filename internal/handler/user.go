package handler

import (
	"net/http"

	"github.com/mmeshcher/bookheaven/internal/response"
	"github.com/mmeshcher/bookheaven/internal/service"
)

// SignUp регистрирует нового пользователя.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpInput
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.service.SignUp(r.Context(), req); err != nil {
		h.writeError(w, r, "sign up", err)
		return
	}

	response.Message(w, http.StatusOK, "Sign-up successful")
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignIn проверяет учётные данные и возвращает токен доступа.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		response.Error(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	sess, err := h.service.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, "sign in", err)
		return
	}

	response.JSON(w, http.StatusOK, sess)
}

// GetUserInformation возвращает профиль текущего пользователя без хеша пароля.
func (h *Handler) GetUserInformation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "get user", err)
		return
	}

	response.JSON(w, http.StatusOK, u)
}

type updateAddressRequest struct {
	Address string `json:"address"`
}

// UpdateAddress обновляет адрес доставки текущего пользователя.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req updateAddressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.UpdateAddress(r.Context(), userID, req.Address); err != nil {
		h.writeError(w, r, "update address", err)
		return
	}

	response.Message(w, http.StatusOK, "Address updated successfully")
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdatePassword меняет пароль текущего пользователя.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req updatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		response.Error(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	if err := h.service.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(w, r, "update password", err)
		return
	}

	response.Message(w, http.StatusOK, "Password updated successfully")
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

// UpdateEmail меняет адрес электронной почты текущего пользователя.
func (h *Handler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req updateEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.UpdateEmail(r.Context(), userID, req.Email); err != nil {
		h.writeError(w, r, "update email", err)
		return
	}

	response.Message(w, http.StatusOK, "Email updated successfully")
}
