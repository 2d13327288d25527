package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/http/respond"
	"github.com/hongminglow/storefront-be/internal/order"
	"github.com/hongminglow/storefront-be/internal/storage"
)

// OrderHandler places and lists the caller's orders. Routes must sit behind RequireAuth.
type OrderHandler struct {
	orders *order.Service
	log    logrus.FieldLogger
}

func NewOrderHandler(svc *order.Service, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{orders: svc, log: log}
}

func (h *OrderHandler) Register(r *mux.Router) {
	r.HandleFunc("/orders", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/order/{cartId}", h.handlePlace).Methods(http.MethodPost)
	r.HandleFunc("/order/{orderId}", h.handleGet).Methods(http.MethodGet)
}

func (h *OrderHandler) handlePlace(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.PlaceOrder(r.Context(), userID, mux.Vars(r)["cartId"])
	if err != nil {
		switch {
		case errors.Is(err, order.ErrCartNotFound):
			respond.Error(w, http.StatusNotFound, "Cart not found!")
			return
		case errors.Is(err, storage.ErrVersionConflict):
			respond.Error(w, http.StatusConflict, "Cart was modified concurrently, please retry")
			return
		}
		h.log.WithError(err).WithField("user_id", userID).Error("place order")
		respond.Error(w, http.StatusInternalServerError, "Error placing order")
		return
	}
	respond.JSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	orders, err := h.orders.ListOrders(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("list orders")
		respond.Error(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	respond.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(r.Context(), userID, mux.Vars(r)["orderId"])
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respond.Error(w, http.StatusNotFound, "Order not found!")
			return
		}
		h.log.WithError(err).WithField("user_id", userID).Error("get order")
		respond.Error(w, http.StatusInternalServerError, "Error fetching order")
		return
	}
	respond.JSON(w, http.StatusOK, o)
}
