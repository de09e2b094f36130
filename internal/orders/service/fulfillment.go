package service

import (
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/orders/entity"
)

// Pure helpers over the order aggregate. No persistence here; the action
// checklist and the confirm-existences flow are built on these.

// ConfirmedPieces sums the confirmed quantity over items marked confirmed
// or substitute.
func ConfirmedPieces(items []entity.OrderItem) int {
	total := 0
	for _, it := range items {
		if it.ConfirmationState == entity.ConfirmationConfirmed || it.ConfirmationState == entity.ConfirmationSubstitute {
			total += it.ConfirmedQty
		}
	}
	return total
}

// OutOfStockPieces sums the requested quantity over items marked out of stock.
func OutOfStockPieces(items []entity.OrderItem) int {
	total := 0
	for _, it := range items {
		if it.ConfirmationState == entity.ConfirmationOutOfStock {
			total += it.Quantity
		}
	}
	return total
}

// PendingPieces sums the requested quantity over items still pending.
func PendingPieces(items []entity.OrderItem) int {
	total := 0
	for _, it := range items {
		if it.ConfirmationState == "" || it.ConfirmationState == entity.ConfirmationPending {
			total += it.Quantity
		}
	}
	return total
}

// AllResolved reports whether every item carries a non-pending confirmation
// state. Vacuously true for an empty item list.
func AllResolved(items []entity.OrderItem) bool {
	for _, it := range items {
		if it.ConfirmationState == "" || it.ConfirmationState == entity.ConfirmationPending {
			return false
		}
	}
	return true
}

// MaxConfirmable is the largest confirmed_qty an operator may enter for an
// item. Inventory-backed items are capped by available stock.
func MaxConfirmable(item *entity.OrderItem, availableStock int) int {
	if item.Source != entity.ItemSourceInventory {
		return item.Quantity
	}
	if availableStock < item.Quantity {
		if availableStock < 0 {
			return 0
		}
		return availableStock
	}
	return item.Quantity
}

// ClampConfirmedQty forces qty into [0, item.Quantity].
func ClampConfirmedQty(item *entity.OrderItem, qty int) int {
	if qty < 0 {
		return 0
	}
	if qty > item.Quantity {
		return item.Quantity
	}
	return qty
}

// UnassignedConfirmedItems returns the confirmed items not packed into any
// package yet.
func UnassignedConfirmedItems(order *entity.Order) []entity.OrderItem {
	assigned := make(map[string]bool)
	for _, pkg := range order.Packages {
		if pkg.State == entity.PackageStateReturned {
			continue
		}
		for _, id := range pkg.ItemIDs {
			assigned[id] = true
		}
	}

	var out []entity.OrderItem
	for _, it := range order.Items {
		if it.ConfirmationState != entity.ConfirmationConfirmed && it.ConfirmationState != entity.ConfirmationSubstitute {
			continue
		}
		if !assigned[it.ID] {
			out = append(out, it)
		}
	}
	return out
}

// ClosedPackageCount counts packages sealed for dispatch. Returned packages
// do not count.
func ClosedPackageCount(order *entity.Order) int {
	n := 0
	for _, pkg := range order.Packages {
		if pkg.State != entity.PackageStateReturned {
			n++
		}
	}
	return n
}
