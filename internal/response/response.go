// Package response содержит хелперы для формирования JSON-ответов API.
package response

import (
	"encoding/json"
	"net/http"
)

// StatusSuccess — значение поля status в успешных ответах с данными.
const StatusSuccess = "Success"

type messageBody struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

type dataBody struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// JSON сериализует v в тело ответа с указанным статусом.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Data отправляет успешный ответ с данными.
func Data(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, dataBody{Status: StatusSuccess, Data: data})
}

// DataMessage отправляет успешный ответ с сообщением и данными.
func DataMessage(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, dataBody{Status: StatusSuccess, Message: message, Data: data})
}

// Message отправляет ответ с текстовым сообщением.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, messageBody{Message: message})
}

// Success отправляет успешный ответ со статусом и сообщением.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, messageBody{Status: StatusSuccess, Message: message})
}

// Error отправляет ответ об ошибке. Для 5xx текст заменяется общим сообщением.
func Error(w http.ResponseWriter, status int, message string) {
	if status >= http.StatusInternalServerError {
		message = "Internal Server Error"
	}
	Message(w, status, message)
}
