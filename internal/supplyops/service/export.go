package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/supplyops/entity"
)

const exportPageSize = 100

var worklistHeaders = []string{
	"Operación", "Pedido", "Proveedor", "Producto", "Variante", "Color",
	"Cantidad", "Estado", "Recibido", "Reservado",
}

// ExportWorklist renders the procurement worklist as a spreadsheet, one row
// per operation, for the market run.
func (s *ReconcilerService) ExportWorklist(ctx context.Context, filters map[string]string) (*excelize.File, string, error) {
	var ops []entity.SupplierOperation
	for page := 1; ; page++ {
		batch, total, err := s.repos.Operation.FindAll(ctx, page, exportPageSize, filters)
		if err != nil {
			return nil, "", fmt.Errorf("list operations: %w", err)
		}
		ops = append(ops, batch...)
		if len(batch) == 0 || int64(len(ops)) >= total {
			break
		}
	}

	supplierNames := make(map[string]string)
	for _, op := range ops {
		if _, ok := supplierNames[op.SupplierID]; ok {
			continue
		}
		supplier, err := s.repos.Supplier.FindByID(ctx, op.SupplierID)
		if err != nil {
			supplierNames[op.SupplierID] = op.SupplierID
			continue
		}
		supplierNames[op.SupplierID] = supplier.Name
	}

	f := excelize.NewFile()
	sheet := "Surtido"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range worklistHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, op := range ops {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), op.ID[:8])
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), op.OrderID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), supplierNames[op.SupplierID])
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), op.Title)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), op.Variant)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), op.Color)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), op.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), op.Status)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), op.ReceivedQty)
		f.SetCellValue(sheet, fmt.Sprintf("J%d", row), op.ReservedQtyForOrder)
	}

	filename := fmt.Sprintf("surtido-%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
