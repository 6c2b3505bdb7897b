package products

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/veo1/online-marketplace/app/respond"
	"github.com/veo1/online-marketplace/models"
)

type Product struct {
	ID          uint    `json:"id"`
	OwnerID     uint    `json:"owner_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
}

type ProductProvider interface {
	Create(ctx context.Context, userID uint, in Input) (*models.Product, error)
	List(ctx context.Context, userID uint) ([]models.Product, error)
	Get(ctx context.Context, productID uint) (*models.Product, error)
	Rename(ctx context.Context, productID uint, name string) (*models.Product, error)
	Delete(ctx context.Context, productID uint) error
}

type ProductHandler struct {
	svc ProductProvider
	log *slog.Logger
}

func NewProductHandler(svc ProductProvider, log *slog.Logger) *ProductHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProductHandler{
		svc: svc,
		log: log,
	}
}

// Register mounts the product routes. With legacy set, the old GET-only
// mutation routes are mounted as well.
func (h *ProductHandler) Register(r chi.Router, legacy bool) {
	r.Post("/users/{userId}/products", h.HandleCreate)
	r.Get("/users/{userId}/products", h.HandleList)
	r.Get("/products/{productId}", h.HandleGet)
	r.Patch("/products/{productId}", h.HandleUpdate)
	r.Delete("/products/{productId}", h.HandleDelete)

	if legacy {
		r.Get("/create/{userId}", h.HandleCreate)
		r.Get("/get/{userId}", h.HandleList)
		r.Get("/update/{productId}", h.HandleUpdate)
		r.Get("/delete/{productId}", h.HandleDelete)
	}
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", "Invalid user id")
	if !ok {
		return
	}

	var input Input
	if !decodeOptional(w, r, &input) {
		return
	}

	product, err := h.svc.Create(r.Context(), userID, input)
	if err != nil {
		h.fail(w, err, "Failed to create product")
		return
	}

	respond.JSON(w, http.StatusCreated, toProduct(*product))
}

func (h *ProductHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId", "Invalid user id")
	if !ok {
		return
	}

	res, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.fail(w, err, "Failed to retrieve products")
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = toProduct(p)
	}

	respond.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "Invalid product id")
	if !ok {
		return
	}

	product, err := h.svc.Get(r.Context(), productID)
	if err != nil {
		h.fail(w, err, "Failed to retrieve product")
		return
	}

	respond.JSON(w, http.StatusOK, toProduct(*product))
}

func (h *ProductHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "Invalid product id")
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if !decodeOptional(w, r, &input) {
		return
	}

	product, err := h.svc.Rename(r.Context(), productID, input.Name)
	if err != nil {
		h.fail(w, err, "Failed to update product")
		return
	}

	respond.JSON(w, http.StatusOK, toProduct(*product))
}

func (h *ProductHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productId", "Invalid product id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), productID); err != nil {
		h.fail(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fail maps not-found errors to 404 and anything else to 500 with a fixed message.
func (h *ProductHandler) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, models.ErrUserNotFound):
		respond.Error(w, http.StatusNotFound, "User not found")
	case errors.Is(err, models.ErrProductNotFound):
		respond.Error(w, http.StatusNotFound, "Product not found")
	default:
		h.log.Error(message, "error", err)
		respond.Error(w, http.StatusInternalServerError, message)
	}
}

func toProduct(p models.Product) Product {
	return Product{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.Round(2).InexactFloat64(),
		Category:    p.Category,
	}
}

func pathID(w http.ResponseWriter, r *http.Request, param, message string) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 0)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, message)
		return 0, false
	}
	return uint(id), true
}

// decodeOptional decodes a JSON body into v. An absent or empty body leaves v untouched.
// Anything after the first JSON value other than whitespace is rejected.
func decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return true
	}
	if err == nil {
		if extra := dec.Decode(&json.RawMessage{}); !errors.Is(extra, io.EOF) {
			err = errors.New("unexpected data after JSON body")
		}
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
