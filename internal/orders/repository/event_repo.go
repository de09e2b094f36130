package repository

import (
	"context"
	"time"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventRepository is the append-only order timeline.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, ev *entity.TimelineEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

// Log writes a timeline entry and bumps the order's last_event_at. It is
// expected to run inside the caller's transaction when tx is non-nil.
func (r *EventRepository) Log(ctx context.Context, tx *gorm.DB, orderID, operatorID, action, fromStatus, toStatus, content string, metadata entity.JSONB) error {
	if tx == nil {
		tx = r.db.WithContext(ctx)
	}
	ev := &entity.TimelineEvent{
		ID:         uuid.New().String()[:32],
		OrderID:    orderID,
		Action:     action,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Content:    content,
		Metadata:   metadata,
		OperatorID: operatorID,
		CreatedAt:  time.Now(),
	}
	if err := tx.Create(ev).Error; err != nil {
		return err
	}
	return tx.Model(&entity.Order{}).
		Where("id = ?", orderID).
		Update("last_event_at", ev.CreatedAt).Error
}

// FindByOrder returns the order's timeline newest first, paginated.
func (r *EventRepository) FindByOrder(ctx context.Context, orderID string, page, pageSize int) ([]entity.TimelineEvent, int64, error) {
	var items []entity.TimelineEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.TimelineEvent{}).Where("order_id = ?", orderID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}
