package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const summaryCacheKey = "dashboard:summary"
const summaryCacheTTL = 30 * time.Second

// DashboardService serves the back-office landing counters.
type DashboardService struct {
	db     *gorm.DB
	rdb    *redis.Client
	logger *zap.Logger
}

func NewDashboardService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{db: db, rdb: rdb, logger: logger}
}

// Summary is the cross-module rollup for the landing page.
type Summary struct {
	OrdersByStatus      map[string]int `json:"orders_by_status"`
	OpenIncidents       map[string]int `json:"open_incidents_by_severity"`
	OperationsByStage   map[string]int `json:"operations_by_stage"`
	OrdersWithIncidents int            `json:"orders_with_open_incidents"`
	GeneratedAt         time.Time      `json:"generated_at"`
}

// GetSummary returns the rollup, served from a short redis cache so the
// landing page does not hammer the database.
func (s *DashboardService) GetSummary(ctx context.Context) (*Summary, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, summaryCacheKey).Result(); err == nil {
			var summary Summary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	summary := &Summary{
		OrdersByStatus:    map[string]int{},
		OpenIncidents:     map[string]int{},
		OperationsByStage: map[string]int{},
		GeneratedAt:       time.Now(),
	}

	type kv struct {
		Key   string
		Count int
	}

	var rows []kv
	if err := s.db.WithContext(ctx).Raw(
		`SELECT status AS key, COUNT(*) AS count FROM orders GROUP BY status`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		summary.OrdersByStatus[r.Key] = r.Count
	}

	rows = nil
	if err := s.db.WithContext(ctx).Raw(
		`SELECT severity AS key, COUNT(*) AS count FROM order_incidents WHERE status = 'open' GROUP BY severity`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		summary.OpenIncidents[r.Key] = r.Count
	}

	rows = nil
	if err := s.db.WithContext(ctx).Raw(
		`SELECT status AS key, COUNT(*) AS count FROM supplier_operations GROUP BY status`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		summary.OperationsByStage[r.Key] = r.Count
	}

	var withIncidents int
	if err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM orders WHERE open_incidents > 0`).Scan(&withIncidents).Error; err != nil {
		return nil, err
	}
	summary.OrdersWithIncidents = withIncidents

	if s.rdb != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.rdb.Set(ctx, summaryCacheKey, data, summaryCacheTTL).Err(); err != nil {
				s.logger.Debug("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}
