package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid state value")
	ErrPackageClosed     = errors.New("package no longer accepts changes")
)

// EventPublisher pushes order changes to connected clients.
type EventPublisher interface {
	PublishOrderUpdate(orderID string, payload interface{})
}

type OrderService struct {
	repos     *repository.Repositories
	db        *gorm.DB
	logger    *zap.Logger
	publisher EventPublisher
}

func NewOrderService(repos *repository.Repositories, db *gorm.DB, logger *zap.Logger, publisher EventPublisher) *OrderService {
	return &OrderService{repos: repos, db: db, logger: logger, publisher: publisher}
}

func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	return s.repos.Order.FindAll(ctx, page, pageSize, filters)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.repos.Order.FindByID(ctx, id)
}

type OrderItemRequest struct {
	ID           string  `json:"id"`
	Title        string  `json:"title" binding:"required"`
	Variant      string  `json:"variant"`
	Color        string  `json:"color"`
	Quantity     int     `json:"quantity" binding:"required,gt=0"`
	Source       string  `json:"source"`
	SupplierID   *string `json:"supplier_id"`
	ProductID    *string `json:"product_id"`
	InventoryID  *string `json:"inventory_id"`
	PricePublic  float64 `json:"price_public"`
	PriceCost    float64 `json:"price_cost"`
	PriceClienta float64 `json:"price_clienta"`
}

type CreateOrderRequest struct {
	CustomerID *string            `json:"customer_id"`
	RouteID    *string            `json:"route_id"`
	Notes      string             `json:"notes"`
	Items      []OrderItemRequest `json:"items"`
}

// CreateOrder opens a draft order. Item reseller prices default to the
// standard markdown off the public price when not supplied.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest, userID string) (*entity.Order, []string, error) {
	code, err := s.repos.Order.GenerateCode(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate order code: %w", err)
	}

	order := &entity.Order{
		ID:         uuid.New().String()[:32],
		Code:       code,
		CustomerID: req.CustomerID,
		RouteID:    req.RouteID,
		Status:     entity.OrderStatusDraft,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}

	items, warnings := s.buildItems(order.ID, req.Items)
	order.Items = items

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, order.ID, userID, "create", "", entity.OrderStatusDraft,
		fmt.Sprintf("Pedido %s creado", code), nil); err != nil {
		s.logger.Warn("failed to log order creation", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.publish(order.ID, "created")
	return order, warnings, nil
}

func (s *OrderService) buildItems(orderID string, reqs []OrderItemRequest) ([]entity.OrderItem, []string) {
	var items []entity.OrderItem
	var warnings []string
	for i, r := range reqs {
		source := r.Source
		if source == "" {
			source = entity.ItemSourceCatalog
		}
		priceClienta := r.PriceClienta
		if priceClienta == 0 {
			priceClienta = entity.ResellerPrice(r.PricePublic)
		}
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}
		item := entity.OrderItem{
			ID:                id,
			OrderID:           orderID,
			Title:             r.Title,
			Variant:           r.Variant,
			Color:             r.Color,
			Quantity:          r.Quantity,
			Source:            source,
			ConfirmationState: entity.ConfirmationPending,
			SupplierID:        r.SupplierID,
			ProductID:         r.ProductID,
			InventoryID:       r.InventoryID,
			PricePublic:       r.PricePublic,
			PriceCost:         r.PriceCost,
			PriceClienta:      priceClienta,
			SortOrder:         i,
		}
		if item.MarginBelowCost() {
			warnings = append(warnings, fmt.Sprintf("%s: precio de reventa por debajo del costo", item.Title))
		}
		items = append(items, item)
	}
	return items, warnings
}

// UpdateStatus applies a validated lifecycle transition. The legality check
// lives here, not in callers; the compare-and-swap guard makes a stale
// transition a no-op instead of a silent overwrite.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, toStatus, userID string) (*entity.Order, error) {
	order, err := s.repos.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !entity.CanTransition(order.Status, toStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, toStatus)
	}

	affected, err := s.repos.Order.UpdateStatusGuard(ctx, orderID, order.Status, toStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: order changed concurrently", ErrInvalidTransition)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "status_change", order.Status, toStatus, "", nil); err != nil {
		s.logger.Warn("failed to log status change", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "status_change")
	return s.repos.Order.FindByID(ctx, orderID)
}

// UpdateItems replaces the whole item list. Last write wins; there is no
// concurrency token on the aggregate.
func (s *OrderService) UpdateItems(ctx context.Context, orderID string, reqs []OrderItemRequest, userID string) (*entity.Order, []string, error) {
	order, err := s.repos.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if entity.IsTerminalStatus(order.Status) {
		return nil, nil, fmt.Errorf("%w: order is %s", ErrInvalidState, order.Status)
	}

	items, warnings := s.buildItems(orderID, reqs)
	if err := s.repos.Order.ReplaceItems(ctx, orderID, items); err != nil {
		return nil, nil, fmt.Errorf("failed to replace items: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "items_update", "", "",
		fmt.Sprintf("%d productos", len(items)), nil); err != nil {
		s.logger.Warn("failed to log item update", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "items_update")
	updated, err := s.repos.Order.FindByID(ctx, orderID)
	return updated, warnings, err
}

type ItemConfirmationRequest struct {
	ConfirmationState string `json:"confirmation_state" binding:"required"`
	ConfirmedQty      int    `json:"confirmed_qty"`
}

// UpdateItemConfirmation records the confirm-existences outcome for one
// item. The confirmed quantity is clamped to [0, quantity] here so the
// invariant holds regardless of what the caller sends.
func (s *OrderService) UpdateItemConfirmation(ctx context.Context, orderID, itemID string, req ItemConfirmationRequest, userID string) (*entity.OrderItem, error) {
	switch req.ConfirmationState {
	case entity.ConfirmationPending, entity.ConfirmationConfirmed, entity.ConfirmationOutOfStock, entity.ConfirmationSubstitute:
	default:
		return nil, fmt.Errorf("%w: confirmation_state %q", ErrInvalidState, req.ConfirmationState)
	}

	item, err := s.repos.Order.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OrderID != orderID {
		return nil, repository.ErrNotFound
	}

	item.ConfirmationState = req.ConfirmationState
	item.ConfirmedQty = ClampConfirmedQty(item, req.ConfirmedQty)
	if req.ConfirmationState == entity.ConfirmationOutOfStock {
		item.ConfirmedQty = 0
	}

	if err := s.repos.Order.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item confirmation: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "item_confirm", "", "",
		fmt.Sprintf("%s: %s (%d)", item.Title, item.ConfirmationState, item.ConfirmedQty), nil); err != nil {
		s.logger.Warn("failed to log item confirmation", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "item_confirm")
	return item, nil
}

// SetPlannedPackages declares how many parcels the order will ship in.
func (s *OrderService) SetPlannedPackages(ctx context.Context, orderID string, planned int, userID string) (*entity.Order, error) {
	if planned < 1 {
		return nil, fmt.Errorf("%w: planned_packages must be positive", ErrInvalidState)
	}
	order, err := s.repos.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.PlannedPackages = &planned
	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to set planned packages: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "planned_packages", "", "",
		fmt.Sprintf("%d paquetes planificados", planned), nil); err != nil {
		s.logger.Warn("failed to log planned packages", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "planned_packages")
	return order, nil
}

type AssemblePackageRequest struct {
	ItemIDs   []string `json:"item_ids" binding:"required,min=1"`
	AmountDue *float64 `json:"amount_due"`
}

// AssemblePackage closes a new parcel around a set of confirmed items.
func (s *OrderService) AssemblePackage(ctx context.Context, orderID string, req AssemblePackageRequest, userID string) (*entity.PackageRecord, error) {
	order, err := s.repos.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	valid := make(map[string]bool)
	for _, it := range order.Items {
		if it.ConfirmationState == entity.ConfirmationConfirmed || it.ConfirmationState == entity.ConfirmationSubstitute {
			valid[it.ID] = true
		}
	}
	assigned := make(map[string]bool)
	for _, pkg := range order.Packages {
		if pkg.State == entity.PackageStateReturned {
			continue
		}
		for _, id := range pkg.ItemIDs {
			assigned[id] = true
		}
	}
	for _, id := range req.ItemIDs {
		if !valid[id] {
			return nil, fmt.Errorf("%w: item %s is not a confirmed item of this order", ErrInvalidState, id)
		}
		if assigned[id] {
			return nil, fmt.Errorf("%w: item %s is already assigned to a package", ErrInvalidState, id)
		}
	}

	total := len(order.Packages) + 1
	if order.PlannedPackages != nil && *order.PlannedPackages > total {
		total = *order.PlannedPackages
	}

	pkg := &entity.PackageRecord{
		ID:            uuid.New().String()[:32],
		OrderID:       orderID,
		Sequence:      len(order.Packages) + 1,
		TotalPackages: total,
		State:         entity.PackageStateAssembled,
		ItemIDs:       entity.StringArray(req.ItemIDs),
		AmountDue:     req.AmountDue,
	}
	if err := s.repos.Order.CreatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "package_assemble", "", "",
		fmt.Sprintf("Paquete %d con %d productos", pkg.Sequence, len(req.ItemIDs)),
		entity.JSONB{"package_id": pkg.ID}); err != nil {
		s.logger.Warn("failed to log package assembly", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "package_assemble")
	return pkg, nil
}

// UpdatePackageState moves a parcel through its own small state machine.
func (s *OrderService) UpdatePackageState(ctx context.Context, orderID, packageID, toState, userID string) (*entity.PackageRecord, error) {
	pkg, err := s.repos.Order.FindPackageByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.OrderID != orderID {
		return nil, repository.ErrNotFound
	}

	if !entity.CanPackageTransition(pkg.State, toState) {
		return nil, fmt.Errorf("%w: package %s -> %s", ErrInvalidTransition, pkg.State, toState)
	}

	fromState := pkg.State
	pkg.State = toState
	if toState == entity.PackageStateDelivered {
		now := time.Now()
		pkg.DeliveredAt = &now
	}
	if err := s.repos.Order.UpdatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to update package: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "package_state", fromState, toState,
		fmt.Sprintf("Paquete %d", pkg.Sequence), entity.JSONB{"package_id": pkg.ID}); err != nil {
		s.logger.Warn("failed to log package state", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "package_state")
	return pkg, nil
}

type DeliveryPaymentRequest struct {
	PackageID string  `json:"package_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required,gt=0"`
}

// RegisterDeliveryPayment records the amount collected on a delivered parcel.
func (s *OrderService) RegisterDeliveryPayment(ctx context.Context, orderID string, req DeliveryPaymentRequest, userID string) (*entity.PackageRecord, error) {
	pkg, err := s.repos.Order.FindPackageByID(ctx, req.PackageID)
	if err != nil {
		return nil, err
	}
	if pkg.OrderID != orderID {
		return nil, repository.ErrNotFound
	}
	if pkg.State != entity.PackageStateDelivered {
		return nil, fmt.Errorf("%w: package is %s, expected delivered", ErrInvalidState, pkg.State)
	}

	pkg.AmountDue = &req.Amount
	if err := s.repos.Order.UpdatePackage(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to register payment: %w", err)
	}

	if err := s.repos.Event.Log(ctx, nil, orderID, userID, "delivery_payment", "", "",
		fmt.Sprintf("Pago de entrega registrado: %.2f", req.Amount),
		entity.JSONB{"package_id": pkg.ID, "amount": req.Amount}); err != nil {
		s.logger.Warn("failed to log delivery payment", zap.String("order_id", orderID), zap.Error(err))
	}

	s.publish(orderID, "delivery_payment")
	return pkg, nil
}

func (s *OrderService) ListEvents(ctx context.Context, orderID string, page, pageSize int) ([]entity.TimelineEvent, int64, error) {
	return s.repos.Event.FindByOrder(ctx, orderID, page, pageSize)
}

func (s *OrderService) publish(orderID, action string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishOrderUpdate(orderID, map[string]string{"order_id": orderID, "action": action})
}
