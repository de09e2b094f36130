package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"gorm.io/gorm"
)

// OrderRepository owns the order aggregate. Writes are whole-record saves
// with last-write-wins semantics; this is a single-operator tool and carries
// no optimistic-concurrency token.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindAll lists orders with basic filters and pagination.
func (r *OrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	var items []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if routeID := filters["route_id"]; routeID != "" {
		query = query.Where("route_id = ?", routeID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Packages").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads one order with items and packages.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Packages", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// Update saves the order header only (rollups, status, planned packages).
func (r *OrderRepository) Update(ctx context.Context, o *entity.Order) error {
	return r.db.WithContext(ctx).Omit("Items", "Packages").Save(o).Error
}

// ReplaceItems rewrites the entire items array of an order in one
// transaction, matching the aggregate's whole-array replace semantics.
func (r *OrderRepository) ReplaceItems(ctx context.Context, orderID string, items []entity.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// FindItemByID loads one line item.
func (r *OrderRepository) FindItemByID(ctx context.Context, itemID string) (*entity.OrderItem, error) {
	var item entity.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item *entity.OrderItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *OrderRepository) CreatePackage(ctx context.Context, pkg *entity.PackageRecord) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *OrderRepository) FindPackageByID(ctx context.Context, pkgID string) (*entity.PackageRecord, error) {
	var pkg entity.PackageRecord
	err := r.db.WithContext(ctx).Where("id = ?", pkgID).First(&pkg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pkg, nil
}

func (r *OrderRepository) UpdatePackage(ctx context.Context, pkg *entity.PackageRecord) error {
	return r.db.WithContext(ctx).Save(pkg).Error
}

// UpdateStatusGuard flips status only when the stored value still matches
// the expected one, so two racing sessions cannot both win a transition.
func (r *OrderRepository) UpdateStatusGuard(ctx context.Context, orderID, fromStatus, toStatus string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, fromStatus).
		Updates(map[string]interface{}{"status": toStatus, "updated_at": time.Now()})
	return res.RowsAffected, res.Error
}

// GenerateCode produces the next order code, ORD-{year}-{4 digits}.
func (r *OrderRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("ORD-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "ORD-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("ORD-%s-%04d", year, seq), nil
}
