package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/cart"
	"github.com/hongminglow/storefront-be/internal/http/respond"
	"github.com/hongminglow/storefront-be/internal/middleware"
	"github.com/hongminglow/storefront-be/internal/models/dto"
	"github.com/hongminglow/storefront-be/internal/storage"
)

// CartHandler exposes the caller's cart. Routes must sit behind RequireAuth.
type CartHandler struct {
	carts *cart.Service
	log   logrus.FieldLogger
}

func NewCartHandler(svc *cart.Service, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{carts: svc, log: log}
}

func (h *CartHandler) Register(r *mux.Router) {
	r.HandleFunc("/cart", h.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/cart/add", h.handleAdd).Methods(http.MethodPost)
	r.HandleFunc("/cart/update/{productId}", h.handleUpdate).Methods(http.MethodPatch, http.MethodPost)
	r.HandleFunc("/cart/remove/{productId}", h.handleRemove).Methods(http.MethodDelete, http.MethodPost)
}

func (h *CartHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	c, err := h.carts.GetCart(r.Context(), userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("get cart")
		respond.Error(w, http.StatusInternalServerError, "Error fetching cart")
		return
	}
	// A user without a cart gets JSON null.
	respond.JSON(w, http.StatusOK, c)
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.carts.AddItem(r.Context(), userID, cart.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Title:     req.Title,
		Image:     req.Image,
	})
	if err != nil {
		h.writeError(w, userID, err, "Error Adding to Cart")
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respond.Error(w, http.StatusBadRequest, "quantity is required")
		return
	}
	c, err := h.carts.UpdateItem(r.Context(), userID, mux.Vars(r)["productId"], *req.Quantity)
	if err != nil {
		h.writeError(w, userID, err, "Error updating Cart Item")
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	c, err := h.carts.RemoveItem(r.Context(), userID, mux.Vars(r)["productId"])
	if err != nil {
		h.writeError(w, userID, err, "Error deleting Cart Item")
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

func (h *CartHandler) writeError(w http.ResponseWriter, userID string, err error, fallback string) {
	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		respond.Error(w, http.StatusNotFound, "Cart not found!")
	case errors.Is(err, cart.ErrItemNotFound):
		respond.Error(w, http.StatusNotFound, "Item not found!")
	case errors.Is(err, cart.ErrValidation):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrCartLocked):
		respond.Error(w, http.StatusConflict, "Cart is being checked out")
	case errors.Is(err, storage.ErrVersionConflict):
		respond.Error(w, http.StatusConflict, "Cart was modified concurrently, please retry")
	default:
		h.log.WithError(err).WithField("user_id", userID).Error("cart mutation")
		respond.Error(w, http.StatusInternalServerError, fallback)
	}
}

// callerID extracts the authenticated user id placed by RequireAuth.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok || p.UserID == "" {
		respond.Error(w, http.StatusUnauthorized, "Access denied, token required")
		return "", false
	}
	return p.UserID, true
}
