package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	inventorySheet  = "Inventory"
)

var inventoryHeader = []any{
	"Brand", "Model", "Year", "VIN", "Plate", "Color", "Mileage",
	"Fuel", "Transmission", "Price", "Cost", "Status", "Created",
}

var inventoryWidths = []float64{16, 18, 8, 20, 12, 12, 10, 12, 14, 12, 12, 12, 20}

// ExportVehicles writes the tenant's inventory as an XLSX workbook
func (h *Resources) ExportVehicles(c *gin.Context) {
	t, _ := scope(c)
	vehicles, err := database.NewScoped[database.Vehicle](h.db).All(c.Request.Context(), t.ID, "brand, model",
		database.WhereEq("status", strings.ToUpper(c.Query("status"))))
	if err != nil {
		errorx.Abort(c, err)
		return
	}

	f, err := buildInventory(vehicles)
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("inventory-%s-%s.xlsx", t.Subdomain, h.now().UTC().Format("20060102"))
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		h.logger.Warn("failed to stream inventory export", zap.String("tenant_id", t.ID), zap.Error(err))
	}
}

func buildInventory(vehicles []database.Vehicle) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", inventorySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetSheetRow(inventorySheet, "A1", &inventoryHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(inventoryHeader), 1)
	if err := f.SetCellStyle(inventorySheet, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	for i, w := range inventoryWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(inventorySheet, col, col, w); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, v := range vehicles {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			v.Brand, v.Model, v.Year, v.VIN, v.Plate, v.Color, v.Mileage,
			v.FuelType, v.Transmission, v.Price, v.Cost, string(v.Status),
			v.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(inventorySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
