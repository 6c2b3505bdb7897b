package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/veo1/online-marketplace/models"
)

// Values used when a request leaves a field out.
const (
	DefaultName        = "Product Title"
	DefaultDescription = "Product Description"
	DefaultCategory    = "Electronics"
	DefaultRename      = "New Title"
)

var DefaultPrice = decimal.RequireFromString("99.99")

type ProductStore interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetByOwner(ctx context.Context, ownerID uint) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	UpdateName(ctx context.Context, product *models.Product, name string) error
	Delete(ctx context.Context, product *models.Product) error
}

type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// ListCache stores per-user product lists under a version number.
// Invalidate bumps the version, so a list read from the store before the bump
// and written afterwards lands under a version nobody reads again.
// GetList returns an error on a miss.
type ListCache interface {
	Version(ctx context.Context, userID uint) (int64, error)
	GetList(ctx context.Context, userID uint, version int64) ([]models.Product, error)
	SetList(ctx context.Context, userID uint, version int64, products []models.Product) error
	Invalidate(ctx context.Context, userID uint) error
}

// Input carries the optional fields of a create request.
type Input struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    string           `json:"category"`
}

func (in Input) withDefaults() Input {
	if in.Name == "" {
		in.Name = DefaultName
	}
	if in.Description == "" {
		in.Description = DefaultDescription
	}
	if in.Price == nil {
		price := DefaultPrice
		in.Price = &price
	}
	if in.Category == "" {
		in.Category = DefaultCategory
	}
	return in
}

// Service performs the product operations against the store.
type Service struct {
	products ProductStore
	users    UserFinder
	cache    ListCache
	log      *slog.Logger
}

// NewService wires the service. cache may be nil.
func NewService(products ProductStore, users UserFinder, cache ListCache, log *slog.Logger) *Service {
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		products: products,
		users:    users,
		cache:    cache,
		log:      log,
	}
}

// Create adds a product owned by userID. Nothing is written when the user does not exist.
func (s *Service) Create(ctx context.Context, userID uint, in Input) (*models.Product, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find owner %d: %w", userID, err)
	}

	in = in.withDefaults()
	product := &models.Product{
		OwnerID:     user.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Category:    in.Category,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product for user %d: %w", userID, err)
	}

	s.invalidate(ctx, user.ID)
	s.log.Info("product created", "product_id", product.ID, "owner_id", user.ID)
	return product, nil
}

// List returns the user's products, serving from the cache when possible.
func (s *Service) List(ctx context.Context, userID uint) ([]models.Product, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find owner %d: %w", userID, err)
	}

	// The version must be read before the store.
	version, verr := s.cache.Version(ctx, user.ID)
	if verr == nil {
		if cached, err := s.cache.GetList(ctx, user.ID, version); err == nil {
			return cached, nil
		}
	}

	products, err := s.products.GetByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list products of user %d: %w", userID, err)
	}

	if verr != nil {
		return products, nil
	}
	if err := s.cache.SetList(ctx, user.ID, version, products); err != nil {
		s.log.Warn("failed to cache product list", "owner_id", user.ID, "error", err)
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, productID uint) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", productID, err)
	}
	return product, nil
}

// Rename overwrites the product name and leaves every other field alone.
// An empty name means DefaultRename.
func (s *Service) Rename(ctx context.Context, productID uint, name string) (*models.Product, error) {
	if name == "" {
		name = DefaultRename
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", productID, err)
	}

	if err := s.products.UpdateName(ctx, product, name); err != nil {
		return nil, fmt.Errorf("rename product %d: %w", productID, err)
	}
	product.Name = name

	s.invalidate(ctx, product.OwnerID)
	return product, nil
}

// Delete removes the product permanently.
func (s *Service) Delete(ctx context.Context, productID uint) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("find product %d: %w", productID, err)
	}

	if err := s.products.Delete(ctx, product); err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}

	s.invalidate(ctx, product.OwnerID)
	s.log.Info("product deleted", "product_id", product.ID, "owner_id", product.OwnerID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, ownerID uint) {
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.log.Warn("failed to invalidate product list", "owner_id", ownerID, "error", err)
	}
}

var errNoCache = errors.New("cache disabled")

type noCache struct{}

func (noCache) Version(context.Context, uint) (int64, error) { return 0, errNoCache }
func (noCache) GetList(context.Context, uint, int64) ([]models.Product, error) {
	return nil, errNoCache
}
func (noCache) SetList(context.Context, uint, int64, []models.Product) error { return nil }
func (noCache) Invalidate(context.Context, uint) error { return nil }
