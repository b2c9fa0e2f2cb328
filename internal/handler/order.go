package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/mmeshcher/bookheaven/internal/response"
)

type lineItem struct {
	ID string `json:"_id"`
}

type placeOrderRequest struct {
	Order []lineItem `json:"order"`
}

// PlaceOrder оформляет заказ на книги из тела запроса.
// Необязательный заголовок Idempotency-Key защищает от повторного оформления.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	bookIDs := lo.Map(req.Order, func(item lineItem, _ int) string { return item.ID })

	orders, replayed, err := h.service.PlaceOrder(r.Context(), userID, r.Header.Get(idempotencyKeyHeader), bookIDs)
	if err != nil {
		h.writeError(w, r, "place order", err)
		return
	}

	if replayed {
		w.Header().Set(replayedHeader, "true")
	}
	response.DataMessage(w, "Order placed successfully", orders)
}

// GetOrderHistory возвращает заказы текущего пользователя, начиная с самых новых.
func (h *Handler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	orders, err := h.service.OrderHistory(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, "order history", err)
		return
	}

	response.Data(w, orders)
}

// GetAllOrders возвращает все заказы магазина. Доступно только администратору.
func (h *Handler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAllOrders(r.Context())
	if err != nil {
		h.writeError(w, r, "list all orders", err)
		return
	}

	response.Data(w, orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus переводит заказ из пути в статус из тела запроса. Доступно только администратору.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.service.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeError(w, r, "update order status", err)
		return
	}

	response.DataMessage(w, "Status updated successfully", o)
}
