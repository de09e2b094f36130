package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidQty = errors.New("quantity must be positive")
)

type InventoryService struct {
	repo   *repository.InventoryRepository
	logger *zap.Logger
}

func NewInventoryService(repo *repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{repo: repo, logger: logger}
}

func (s *InventoryService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryItem, int64, error) {
	return s.repo.FindAll(ctx, page, pageSize, filters)
}

func (s *InventoryService) Get(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *InventoryService) ListMovements(ctx context.Context, itemID string, page, pageSize int) ([]entity.InventoryMovement, int64, error) {
	return s.repo.ListMovements(ctx, itemID, page, pageSize)
}

// InboundRequest receives stock into an item, creating the item record on
// first sight. Safe to retry with the same idempotency key.
type InboundRequest struct {
	ItemID     string  `json:"item_id"`
	Title      string  `json:"title"`
	Variant    string  `json:"variant"`
	Color      string  `json:"color"`
	SupplierID *string `json:"supplier_id"`
	ProductRef string  `json:"product_ref"`
	Qty        int     `json:"qty" binding:"required,gt=0"`
	UnitCost   float64 `json:"unit_cost"`

	IdempotencyKey string `json:"idempotency_key" binding:"required"`
	OperatorID     string `json:"-"`
}

// ReceiveInbound applies an inbound receipt exactly once per idempotency
// key. A repeat with a key already in the ledger is a silent no-op.
func (s *InventoryService) ReceiveInbound(ctx context.Context, req InboundRequest) error {
	if req.Qty <= 0 {
		return ErrInvalidQty
	}
	itemID := req.ItemID
	if itemID == "" {
		supplierID := ""
		if req.SupplierID != nil {
			supplierID = *req.SupplierID
		}
		itemID = entity.SyntheticItemID(supplierID, req.ProductRef, req.Variant, req.Color)
	}

	return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.MovementExists(tx, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if applied {
			s.logger.Debug("inbound already applied", zap.String("idempotency_key", req.IdempotencyKey))
			return nil
		}

		var item entity.InventoryItem
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", itemID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = entity.InventoryItem{
				ID:         itemID,
				Title:      req.Title,
				Variant:    req.Variant,
				Color:      req.Color,
				SupplierID: req.SupplierID,
				ProductRef: req.ProductRef,
				UnitCost:   req.UnitCost,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create inventory item: %w", err)
			}
		} else if err != nil {
			return err
		}

		item.AvailableQty += req.Qty
		if err := tx.Model(&entity.InventoryItem{}).
			Where("id = ?", itemID).
			Updates(map[string]interface{}{
				"available_qty": item.AvailableQty,
				"updated_at":    time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.Create(&entity.InventoryMovement{
			ID:             uuid.New().String()[:32],
			ItemID:         itemID,
			Type:           entity.MovementTypeInbound,
			Qty:            req.Qty,
			IdempotencyKey: req.IdempotencyKey,
			CreatedBy:      req.OperatorID,
		}).Error
	})
}

// ReserveRequest moves stock from available to reserved for one order line.
type ReserveRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	Qty         int    `json:"qty" binding:"required,gt=0"`
	OrderID     string `json:"order_id" binding:"required"`
	OrderItemID string `json:"order_item_id"`

	IdempotencyKey string `json:"idempotency_key" binding:"required"`
	OperatorID     string `json:"-"`
}

// ReserveStock reserves stock for an order, exactly once per idempotency
// key. Available stock is floored at zero; a reservation larger than the
// on-hand count still records the full reserved quantity.
func (s *InventoryService) ReserveStock(ctx context.Context, req ReserveRequest) error {
	if req.Qty <= 0 {
		return ErrInvalidQty
	}

	return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.MovementExists(tx, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if applied {
			s.logger.Debug("reservation already applied", zap.String("idempotency_key", req.IdempotencyKey))
			return nil
		}

		var item entity.InventoryItem
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", req.ItemID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		available := item.AvailableQty - req.Qty
		if available < 0 {
			available = 0
		}
		if err := tx.Model(&entity.InventoryItem{}).
			Where("id = ?", req.ItemID).
			Updates(map[string]interface{}{
				"available_qty": available,
				"reserved_qty":  item.ReservedQty + req.Qty,
				"updated_at":    time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.Create(&entity.InventoryMovement{
			ID:             uuid.New().String()[:32],
			ItemID:         req.ItemID,
			Type:           entity.MovementTypeReserve,
			Qty:            req.Qty,
			OrderID:        &req.OrderID,
			OrderItemID:    &req.OrderItemID,
			IdempotencyKey: req.IdempotencyKey,
			CreatedBy:      req.OperatorID,
		}).Error
	})
}

// ReleaseRequest returns a reservation to available stock, e.g. when an
// order is cancelled.
type ReleaseRequest struct {
	ItemID  string `json:"item_id" binding:"required"`
	Qty     int    `json:"qty" binding:"required,gt=0"`
	OrderID string `json:"order_id"`

	IdempotencyKey string `json:"idempotency_key" binding:"required"`
	OperatorID     string `json:"-"`
}

func (s *InventoryService) ReleaseStock(ctx context.Context, req ReleaseRequest) error {
	if req.Qty <= 0 {
		return ErrInvalidQty
	}

	return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.MovementExists(tx, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		var item entity.InventoryItem
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", req.ItemID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		reserved := item.ReservedQty - req.Qty
		if reserved < 0 {
			reserved = 0
		}
		if err := tx.Model(&entity.InventoryItem{}).
			Where("id = ?", req.ItemID).
			Updates(map[string]interface{}{
				"available_qty": item.AvailableQty + req.Qty,
				"reserved_qty":  reserved,
				"updated_at":    time.Now(),
			}).Error; err != nil {
			return err
		}

		var orderID *string
		if req.OrderID != "" {
			orderID = &req.OrderID
		}
		return tx.Create(&entity.InventoryMovement{
			ID:             uuid.New().String()[:32],
			ItemID:         req.ItemID,
			Type:           entity.MovementTypeRelease,
			Qty:            req.Qty,
			OrderID:        orderID,
			IdempotencyKey: req.IdempotencyKey,
			CreatedBy:      req.OperatorID,
		}).Error
	})
}

// AdjustRequest corrects on-hand stock after a physical count.
type AdjustRequest struct {
	ItemID string `json:"item_id"`
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required"`

	IdempotencyKey string `json:"idempotency_key"`
	OperatorID     string `json:"-"`
}

func (s *InventoryService) Adjust(ctx context.Context, req AdjustRequest) error {
	if req.Delta == 0 {
		return ErrInvalidQty
	}
	key := req.IdempotencyKey
	if key == "" {
		key = "adjust_" + uuid.New().String()
	}

	return s.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.MovementExists(tx, key)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		var item entity.InventoryItem
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", req.ItemID).
			First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		available := item.AvailableQty + req.Delta
		if available < 0 {
			available = 0
		}
		if err := tx.Model(&entity.InventoryItem{}).
			Where("id = ?", req.ItemID).
			Updates(map[string]interface{}{
				"available_qty": available,
				"updated_at":    time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.Create(&entity.InventoryMovement{
			ID:             uuid.New().String()[:32],
			ItemID:         req.ItemID,
			Type:           entity.MovementTypeAdjust,
			Qty:            req.Delta,
			IdempotencyKey: key,
			Reason:         req.Reason,
			CreatedBy:      req.OperatorID,
		}).Error
	})
}

// UpsertItemRequest creates or edits an item's descriptive fields.
type UpsertItemRequest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title" binding:"required"`
	Variant     string  `json:"variant"`
	Color       string  `json:"color"`
	SupplierID  *string `json:"supplier_id"`
	ProductRef  string  `json:"product_ref"`
	UnitCost    float64 `json:"unit_cost"`
	PricePublic float64 `json:"price_public"`
	ImageURL    string  `json:"image_url"`
}

func (s *InventoryService) UpsertItem(ctx context.Context, req UpsertItemRequest) (*entity.InventoryItem, error) {
	id := req.ID
	if id == "" {
		supplierID := ""
		if req.SupplierID != nil {
			supplierID = *req.SupplierID
		}
		id = entity.SyntheticItemID(supplierID, req.ProductRef, req.Variant, req.Color)
	}

	item := &entity.InventoryItem{
		ID:          id,
		Title:       req.Title,
		Variant:     req.Variant,
		Color:       req.Color,
		SupplierID:  req.SupplierID,
		ProductRef:  req.ProductRef,
		UnitCost:    req.UnitCost,
		PricePublic: req.PricePublic,
		ImageURL:    req.ImageURL,
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to upsert inventory item: %w", err)
	}
	return s.repo.FindByID(ctx, id)
}
