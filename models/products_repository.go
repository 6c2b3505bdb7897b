package models

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type ProductsRepository struct {
	db *gorm.DB
}

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// GetByOwner returns every product owned by the user, oldest first.
func (r *ProductsRepository) GetByOwner(ctx context.Context, ownerID uint) ([]Product, error) {
	products := []Product{}
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) Create(ctx context.Context, product *Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdateName writes only the name column of product.
func (r *ProductsRepository) UpdateName(ctx context.Context, product *Product, name string) error {
	res := r.db.WithContext(ctx).Model(product).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes the product row permanently.
func (r *ProductsRepository) Delete(ctx context.Context, product *Product) error {
	res := r.db.WithContext(ctx).Delete(&Product{}, product.ID)
	if res.Error != nil {
		return res.Error
	}
	// A concurrent delete already removed it.
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
