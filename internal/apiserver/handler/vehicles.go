package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
)

const resourceVehicle = "vehicle"

func (h *Resources) ListVehicles(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	listScoped[database.Vehicle](h, c, q,
		database.WhereEq("status", strings.ToUpper(q.Status)),
		database.WhereEq("brand", c.Query("brand")),
		database.Search(q.Q, "brand", "model", "vin", "plate"))
}

func (h *Resources) GetVehicle(c *gin.Context) {
	if v, ok := getScoped[database.Vehicle](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

// CreateVehicle enforces the plan's vehicle quota. The count and the insert
// are not atomic, so concurrent creations may overshoot the limit.
func (h *Resources) CreateVehicle(c *gin.Context) {
	var req dto.CreateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	t, _ := scope(c)
	ctx := c.Request.Context()
	repo := database.NewScoped[database.Vehicle](h.db)

	if t.MaxVehicles > 0 {
		n, err := repo.Count(ctx, t.ID)
		if err != nil {
			errorx.Abort(c, err)
			return
		}
		if n >= int64(t.MaxVehicles) {
			errorx.Abort(c, errorx.ErrVehicleLimit.WithData("Max", t.MaxVehicles))
			return
		}
	}
	vin := strings.ToUpper(strings.TrimSpace(req.VIN))
	if err := h.checkVIN(ctx, t.ID, vin, ""); err != nil {
		errorx.Abort(c, err)
		return
	}

	v := &database.Vehicle{
		TenantID:     t.ID,
		Brand:        strings.TrimSpace(req.Brand),
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		VIN:          vin,
		Plate:        strings.ToUpper(strings.TrimSpace(req.Plate)),
		Color:        req.Color,
		Mileage:      req.Mileage,
		FuelType:     req.FuelType,
		Transmission: req.Transmission,
		Price:        req.Price,
		Cost:         req.Cost,
		Status:       database.VehicleStatus(req.Status),
		Description:  req.Description,
	}
	if v.Status == "" {
		v.Status = database.VehicleAvailable
	}
	if err := repo.Create(ctx, v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceVehicle, v.ID)
	c.JSON(http.StatusCreated, v)
}

func (h *Resources) UpdateVehicle(c *gin.Context) {
	var req dto.UpdateVehicleRequest
	if !bindJSON(c, &req) {
		return
	}
	v, ok := getScoped[database.Vehicle](h, c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if req.VIN != nil {
		vin := strings.ToUpper(strings.TrimSpace(*req.VIN))
		if err := h.checkVIN(ctx, v.TenantID, vin, v.ID); err != nil {
			errorx.Abort(c, err)
			return
		}
		v.VIN = vin
	}
	set(&v.Brand, req.Brand)
	set(&v.Model, req.Model)
	set(&v.Year, req.Year)
	set(&v.Plate, req.Plate)
	set(&v.Color, req.Color)
	set(&v.Mileage, req.Mileage)
	set(&v.FuelType, req.FuelType)
	set(&v.Transmission, req.Transmission)
	set(&v.Price, req.Price)
	set(&v.Cost, req.Cost)
	set(&v.Description, req.Description)
	if req.Status != nil {
		v.Status = database.VehicleStatus(*req.Status)
	}

	if err := database.NewScoped[database.Vehicle](h.db).Save(ctx, v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceVehicle, v.ID)
	c.JSON(http.StatusOK, v)
}

// DeleteVehicle refuses to remove a vehicle that appears in a sale
func (h *Resources) DeleteVehicle(c *gin.Context) {
	t, _ := scope(c)
	n, err := database.NewScoped[database.Sale](h.db).Count(c.Request.Context(), t.ID,
		database.WhereEq("vehicle_id", c.Param("id")))
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	if n > 0 {
		errorx.Abort(c, errorx.ErrConflict.WithMessage("Vehicle is referenced by %d sale(s)", n))
		return
	}
	deleteScoped[database.Vehicle](h, c, resourceVehicle)
}

// checkVIN rejects a VIN already used by another vehicle of the tenant
func (h *Resources) checkVIN(ctx context.Context, tenantID, vin, excludeID string) error {
	if vin == "" {
		return nil
	}
	scopes := []database.Scope{database.WhereEq("vin", vin)}
	if excludeID != "" {
		scopes = append(scopes, database.WhereNot("id", excludeID))
	}
	n, err := database.NewScoped[database.Vehicle](h.db).Count(ctx, tenantID, scopes...)
	if err != nil {
		return err
	}
	if n > 0 {
		return errorx.ErrVINExists
	}
	return nil
}
