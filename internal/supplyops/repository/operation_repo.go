package repository

import (
	"context"
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OperationRepository struct {
	db *gorm.DB
}

func NewOperationRepository(db *gorm.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

func (r *OperationRepository) FindByID(ctx context.Context, id string) (*entity.SupplierOperation, error) {
	var op entity.SupplierOperation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (r *OperationRepository) FindByOrder(ctx context.Context, orderID string) ([]entity.SupplierOperation, error) {
	var items []entity.SupplierOperation
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// FindAll lists the procurement worklist, filterable by supplier, status and
// order.
func (r *OperationRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SupplierOperation, int64, error) {
	var items []entity.SupplierOperation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SupplierOperation{})

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if orderID := filters["order_id"]; orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

func (r *OperationRepository) Create(ctx context.Context, op *entity.SupplierOperation) error {
	return r.db.WithContext(ctx).Create(op).Error
}

func (r *OperationRepository) Update(ctx context.Context, op *entity.SupplierOperation) error {
	return r.db.WithContext(ctx).Save(op).Error
}

// UpdateTx transactionally runs fn over a row-locked operation. fn mutates
// the row in place; the result is saved before commit. Used for the staged
// receive where the marker check-and-set must be atomic.
func (r *OperationRepository) UpdateTx(ctx context.Context, id string, fn func(op *entity.SupplierOperation) error) (*entity.SupplierOperation, error) {
	var result *entity.SupplierOperation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var op entity.SupplierOperation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&op).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := fn(&op); err != nil {
			return err
		}
		if err := tx.Save(&op).Error; err != nil {
			return err
		}
		result = &op
		return nil
	})
	return result, err
}
