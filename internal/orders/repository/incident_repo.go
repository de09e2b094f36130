package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"gorm.io/gorm"
)

// IncidentRepository owns the incident sub-collection and keeps the order
// header rollups consistent with it.
type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) FindByID(ctx context.Context, id string) (*entity.Incident, error) {
	var inc entity.Incident
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inc, nil
}

// FindByOrder lists an order's incidents, open first, newest first.
func (r *IncidentRepository) FindByOrder(ctx context.Context, orderID string) ([]entity.Incident, error) {
	var items []entity.Incident
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("status ASC, created_at DESC").
		Find(&items).Error
	return items, err
}

// CreateWithRollup inserts the incident and recomputes the order's
// denormalized rollups from the incident table in the same transaction.
// The caller's view of the counts is never trusted.
func (r *IncidentRepository) CreateWithRollup(ctx context.Context, inc *entity.Incident) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inc).Error; err != nil {
			return err
		}
		return recomputeRollups(tx, inc.OrderID)
	})
}

// UpdateWithRollup saves incident changes and recomputes the rollups.
func (r *IncidentRepository) UpdateWithRollup(ctx context.Context, inc *entity.Incident) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inc).Error; err != nil {
			return err
		}
		return recomputeRollups(tx, inc.OrderID)
	})
}

// recomputeRollups rebuilds open_incidents / has_high_incident /
// last_incident_at from the authoritative incident rows.
func recomputeRollups(tx *gorm.DB, orderID string) error {
	var openCount int64
	if err := tx.Model(&entity.Incident{}).
		Where("order_id = ? AND status = ?", orderID, entity.IncidentStatusOpen).
		Count(&openCount).Error; err != nil {
		return err
	}

	var highCount int64
	if err := tx.Model(&entity.Incident{}).
		Where("order_id = ? AND status = ? AND severity = ?",
			orderID, entity.IncidentStatusOpen, entity.IncidentSeverityHigh).
		Count(&highCount).Error; err != nil {
		return err
	}

	now := time.Now()
	return tx.Model(&entity.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"open_incidents":    openCount,
			"has_high_incident": highCount > 0,
			"last_incident_at":  now,
			"updated_at":        now,
		}).Error
}
