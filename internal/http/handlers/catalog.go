package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hongminglow/storefront-be/internal/catalog"
	"github.com/hongminglow/storefront-be/internal/http/respond"
)

// CatalogHandler serves public category and product reads.
type CatalogHandler struct {
	catalog *catalog.Service
	log     logrus.FieldLogger
}

func NewCatalogHandler(svc *catalog.Service, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: svc, log: log}
}

func (h *CatalogHandler) Register(r *mux.Router) {
	r.HandleFunc("/categories", h.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/products/{categoryId}", h.handleProducts).Methods(http.MethodGet)
	r.HandleFunc("/product/{id}", h.handleProduct).Methods(http.MethodGet)
}

func (h *CatalogHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list categories")
		respond.Error(w, http.StatusInternalServerError, "Error fetching categories")
		return
	}
	respond.JSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProductsByCategory(r.Context(), mux.Vars(r)["categoryId"])
	if err != nil {
		if errors.Is(err, catalog.ErrNoProducts) {
			respond.Error(w, http.StatusNotFound, "No products found for the given category ID")
			return
		}
		h.log.WithError(err).Error("list products")
		respond.Error(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	respond.JSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respond.Error(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.WithError(err).Error("get product")
		respond.Error(w, http.StatusInternalServerError, "Error fetching products")
		return
	}
	respond.JSON(w, http.StatusOK, product)
}
