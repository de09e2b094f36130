package repository

import (
	"context"
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/catalog/entity"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// CatalogRepository holds the four reference-data collections. They share
// the same load-all / get / upsert / set-active access pattern.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListListings(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.CatalogListing, int64, error) {
	var items []entity.CatalogListing
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CatalogListing{})
	if filters["active"] == "true" {
		query = query.Where("active = true")
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR variant ILIKE ? OR color ILIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	err := query.Order("title ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *CatalogRepository) GetListing(ctx context.Context, id string) (*entity.CatalogListing, error) {
	var item entity.CatalogListing
	if err := r.first(ctx, &item, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) SaveListing(ctx context.Context, item *entity.CatalogListing) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *CatalogRepository) ListCustomers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Customer, int64, error) {
	var items []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if filters["active"] == "true" {
		query = query.Where("active = true")
	}
	if routeID := filters["route_id"]; routeID != "" {
		query = query.Where("route_id = ?", routeID)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR phone ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	err := query.Order("name ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *CatalogRepository) GetCustomer(ctx context.Context, id string) (*entity.Customer, error) {
	var item entity.Customer
	if err := r.first(ctx, &item, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) SaveCustomer(ctx context.Context, item *entity.Customer) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *CatalogRepository) ListRoutes(ctx context.Context, activeOnly bool) ([]entity.Route, error) {
	var items []entity.Route
	query := r.db.WithContext(ctx).Model(&entity.Route{})
	if activeOnly {
		query = query.Where("active = true")
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) GetRoute(ctx context.Context, id string) (*entity.Route, error) {
	var item entity.Route
	if err := r.first(ctx, &item, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) SaveRoute(ctx context.Context, item *entity.Route) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *CatalogRepository) ListLocalities(ctx context.Context, routeID string, activeOnly bool) ([]entity.Locality, error) {
	var items []entity.Locality
	query := r.db.WithContext(ctx).Model(&entity.Locality{})
	if routeID != "" {
		query = query.Where("route_id = ?", routeID)
	}
	if activeOnly {
		query = query.Where("active = true")
	}
	err := query.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *CatalogRepository) GetLocality(ctx context.Context, id string) (*entity.Locality, error) {
	var item entity.Locality
	if err := r.first(ctx, &item, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) SaveLocality(ctx context.Context, item *entity.Locality) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *CatalogRepository) first(ctx context.Context, dest interface{}, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
