package repository

import (
	"context"
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound = errors.New("record not found")
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) DB() *gorm.DB {
	return r.db
}

func (r *InventoryRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryItem, int64, error) {
	var items []entity.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryItem{})

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("title ILIKE ? OR variant ILIKE ? OR color ILIKE ?", like, like, like)
	}
	if filters["in_stock"] == "true" {
		query = query.Where("available_qty > 0")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("updated_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) Upsert(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "variant", "color", "supplier_id", "product_ref", "unit_cost", "price_public", "image_url", "updated_at"}),
	}).Create(item).Error
}

// MovementExists reports whether a movement with the given idempotency key
// was already applied. Runs on the supplied tx so the check participates in
// the caller's transaction.
func (r *InventoryRepository) MovementExists(tx *gorm.DB, idempotencyKey string) (bool, error) {
	var count int64
	err := tx.Model(&entity.InventoryMovement{}).
		Where("idempotency_key = ?", idempotencyKey).
		Count(&count).Error
	return count > 0, err
}

func (r *InventoryRepository) ListMovements(ctx context.Context, itemID string, page, pageSize int) ([]entity.InventoryMovement, int64, error) {
	var items []entity.InventoryMovement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryMovement{}).Where("item_id = ?", itemID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}
