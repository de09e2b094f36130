package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	inventoryentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/entity"
	invservice "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/inventory/service"
	ordersentity "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
	ordersrepo "github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/repository"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidTransition = errors.New("invalid pipeline transition")
	ErrAlreadyReceived   = errors.New("operation already received")
)

// InventoryGateway is the slice of the inventory store the reconciler
// needs. Both calls must be idempotent per key.
type InventoryGateway interface {
	ReceiveInbound(ctx context.Context, req invservice.InboundRequest) error
	ReserveStock(ctx context.Context, req invservice.ReserveRequest) error
}

// ReconcilerService bridges confirmed supplier-sourced order items to the
// procurement worklist and, on receipt, runs the staged compensating
// sequence against inventory.
type ReconcilerService struct {
	repos      *repository.Repositories
	orderRepos *ordersrepo.Repositories
	inventory  InventoryGateway
	logger     *zap.Logger
}

func NewReconcilerService(repos *repository.Repositories, orderRepos *ordersrepo.Repositories, inventory InventoryGateway, logger *zap.Logger) *ReconcilerService {
	return &ReconcilerService{
		repos:      repos,
		orderRepos: orderRepos,
		inventory:  inventory,
		logger:     logger,
	}
}

// UpsertFromConfirmedOrder materializes one procurement line per confirmed
// supplier-sourced item. Existing rows keep their pipeline status and
// allocation fields, so re-running after partial progress never regresses.
func (s *ReconcilerService) UpsertFromConfirmedOrder(ctx context.Context, orderID string) ([]entity.SupplierOperation, error) {
	order, err := s.orderRepos.Order.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var result []entity.SupplierOperation
	for _, item := range order.Items {
		if item.Source == ordersentity.ItemSourceInventory {
			continue
		}
		if item.SupplierID == nil || *item.SupplierID == "" {
			continue
		}
		if item.ConfirmationState != ordersentity.ConfirmationConfirmed {
			continue
		}

		opID := entity.OperationID(order.ID, item.ID)
		existing, err := s.repos.Operation.FindByID(ctx, opID)
		switch {
		case err == nil:
			existing.Title = item.Title
			existing.Variant = item.Variant
			existing.Color = item.Color
			existing.Quantity = item.ConfirmedQty
			existing.SupplierID = *item.SupplierID
			if err := s.repos.Operation.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to update operation %s: %w", opID, err)
			}
			result = append(result, *existing)

		case errors.Is(err, repository.ErrNotFound):
			op := entity.SupplierOperation{
				ID:          opID,
				OrderID:     order.ID,
				OrderItemID: item.ID,
				SupplierID:  *item.SupplierID,
				Title:       item.Title,
				Variant:     item.Variant,
				Color:       item.Color,
				Quantity:    item.ConfirmedQty,
				Status:      entity.OperationStatusToPickup,
			}
			if err := s.repos.Operation.Create(ctx, &op); err != nil {
				return nil, fmt.Errorf("failed to create operation %s: %w", opID, err)
			}
			result = append(result, op)

		default:
			return nil, err
		}
	}
	return result, nil
}

func (s *ReconcilerService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SupplierOperation, int64, error) {
	return s.repos.Operation.FindAll(ctx, page, pageSize, filters)
}

func (s *ReconcilerService) Get(ctx context.Context, id string) (*entity.SupplierOperation, error) {
	return s.repos.Operation.FindByID(ctx, id)
}

func (s *ReconcilerService) ListByOrder(ctx context.Context, orderID string) ([]entity.SupplierOperation, error) {
	return s.repos.Operation.FindByOrder(ctx, orderID)
}

// AdvanceStatus moves a line one step forward through the pickup pipeline.
// Receiving goes through ReceiveAndAllocate; asking for received on an
// already-received line is an idempotent no-op.
func (s *ReconcilerService) AdvanceStatus(ctx context.Context, opID, toStatus string) (*entity.SupplierOperation, error) {
	op, err := s.repos.Operation.FindByID(ctx, opID)
	if err != nil {
		return nil, err
	}

	if op.Status == entity.OperationStatusReceived {
		if toStatus == entity.OperationStatusReceived {
			return op, nil
		}
		return nil, ErrAlreadyReceived
	}
	if toStatus == entity.OperationStatusReceived {
		return nil, fmt.Errorf("%w: receiving requires the allocate endpoint", ErrInvalidTransition)
	}
	if !entity.CanOperationTransition(op.Status, toStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, op.Status, toStatus)
	}

	fromStatus := op.Status
	op.Status = toStatus
	if err := s.repos.Operation.Update(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to advance operation: %w", err)
	}

	if err := s.orderRepos.Event.Log(ctx, nil, op.OrderID, "", "operation_advance", fromStatus, toStatus,
		fmt.Sprintf("Operación %s: %s -> %s", op.Title, fromStatus, toStatus), nil); err != nil {
		s.logger.Warn("failed to log operation advance", zap.String("operation_id", op.ID), zap.Error(err))
	}

	if err := s.SyncOrderStatus(ctx, op.OrderID); err != nil {
		s.logger.Warn("order status sync failed", zap.String("order_id", op.OrderID), zap.Error(err))
	}
	return op, nil
}

// ReceiveAndAllocate performs the staged receive: mark started, apply the
// inbound receipt and the order reservation against inventory, mark
// finished. Each stage re-checks its own marker, so a crash or retry
// between stages repeats only the stages that did not complete. External
// effects of completed stages are never rolled back.
func (s *ReconcilerService) ReceiveAndAllocate(ctx context.Context, opID, idempotencyRoot, operatorID string) (*entity.SupplierOperation, error) {
	root := idempotencyRoot
	if root == "" {
		root = opID
	}
	txKey := entity.TxMarkerKey(root)
	finalKey := entity.FinalMarkerKey(root)

	op, err := s.repos.Operation.UpdateTx(ctx, opID, func(op *entity.SupplierOperation) error {
		if !op.HasMarker(txKey) {
			op.SetMarker(txKey, time.Now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A completed root makes the whole retry a no-op: no external calls.
	if op.HasMarker(finalKey) {
		return op, nil
	}

	itemID := ""
	if op.InventoryItemID != nil {
		itemID = *op.InventoryItemID
	}
	if itemID == "" {
		productRef := op.OrderItemID
		itemID = inventoryentity.SyntheticItemID(op.SupplierID, productRef, op.Variant, op.Color)
	}

	// Zero-quantity lines skip both inventory stages and finalize directly.
	if op.Quantity > 0 {
		supplierID := op.SupplierID
		if err := s.inventory.ReceiveInbound(ctx, invservice.InboundRequest{
			ItemID:         itemID,
			Title:          op.Title,
			Variant:        op.Variant,
			Color:          op.Color,
			SupplierID:     &supplierID,
			ProductRef:     op.OrderItemID,
			Qty:            op.Quantity,
			IdempotencyKey: "inbound_" + root,
			OperatorID:     operatorID,
		}); err != nil {
			return nil, fmt.Errorf("inbound receipt failed: %w", err)
		}
	}

	if op.Quantity > 0 {
		if err := s.inventory.ReserveStock(ctx, invservice.ReserveRequest{
			ItemID:         itemID,
			Qty:            op.Quantity,
			OrderID:        op.OrderID,
			OrderItemID:    op.OrderItemID,
			IdempotencyKey: "reserve_" + root,
			OperatorID:     operatorID,
		}); err != nil {
			return nil, fmt.Errorf("reservation failed: %w", err)
		}
	}

	op, err = s.repos.Operation.UpdateTx(ctx, opID, func(op *entity.SupplierOperation) error {
		if op.HasMarker(finalKey) {
			return nil
		}
		op.Status = entity.OperationStatusReceived
		op.InventoryItemID = &itemID
		op.ReceivedToInventory = op.Quantity > 0
		op.ReservationApplied = op.Quantity > 0
		op.ReceivedQty = op.Quantity
		op.ReservedQtyForOrder = op.Quantity
		op.SetMarker(finalKey, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.SyncOrderStatus(ctx, op.OrderID); err != nil {
		s.logger.Warn("order status sync failed", zap.String("order_id", op.OrderID), zap.Error(err))
	}
	return op, nil
}

// SyncOrderStatus recomputes the order's inbound marker from its operation
// rows. Orders at received_qa or later, or in an exception state, are never
// touched.
func (s *ReconcilerService) SyncOrderStatus(ctx context.Context, orderID string) error {
	order, err := s.orderRepos.Order.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if ordersentity.IsStatusLocked(order.Status) {
		return nil
	}

	ops, err := s.repos.Operation.FindByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return nil
	}

	allReceived := true
	anyInTransit := false
	for _, op := range ops {
		if op.Status != entity.OperationStatusReceived {
			allReceived = false
		}
		if op.Status == entity.OperationStatusInTransit {
			anyInTransit = true
		}
	}

	target := ordersentity.OrderStatusSupplierRequested
	if allReceived {
		target = ordersentity.OrderStatusReceivedQA
	} else if anyInTransit {
		target = ordersentity.OrderStatusInTransit
	}

	if order.Status == target {
		return nil
	}
	// Sync moves only among the inbound markers, always forward.
	if ordersentity.StatusRank(target) < ordersentity.StatusRank(order.Status) {
		return nil
	}

	affected, err := s.orderRepos.Order.UpdateStatusGuard(ctx, orderID, order.Status, target)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}

	if err := s.orderRepos.Event.Log(ctx, nil, orderID, "", "status_sync", order.Status, target,
		"Sincronizado desde operaciones de proveedor", nil); err != nil {
		s.logger.Warn("failed to log status sync", zap.String("order_id", orderID), zap.Error(err))
	}
	return nil
}
