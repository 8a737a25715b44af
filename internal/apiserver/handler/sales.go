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

const resourceSale = "sale"

func (h *Resources) ListSales(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	listScoped[database.Sale](h, c, q,
		database.WhereEq("status", strings.ToUpper(q.Status)),
		database.WhereEq("vehicle_id", c.Query("vehicleId")),
		database.WhereEq("client_id", c.Query("clientId")),
		database.WhereEq("seller_id", c.Query("sellerId")))
}

func (h *Resources) GetSale(c *gin.Context) {
	if v, ok := getScoped[database.Sale](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

// CreateSale records a sale and moves the vehicle along: a PENDING sale
// reserves it, a COMPLETED sale marks it SOLD.
func (h *Resources) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	t, p := scope(c)
	ctx := c.Request.Context()

	vehicle, err := database.NewScoped[database.Vehicle](h.db).Get(ctx, t.ID, req.VehicleID)
	if err != nil {
		errorx.Abort(c, notFoundAs(err, "Vehicle"))
		return
	}
	if vehicle.Status == database.VehicleSold {
		errorx.Abort(c, errorx.ErrVehicleNotAvailable)
		return
	}
	if !requireInTenant[database.Client](h, c, req.ClientID, "Client") {
		return
	}
	sellerID := req.SellerID
	if sellerID == "" {
		sellerID = p.ID
	} else if !requireInTenant[database.User](h, c, sellerID, "Seller") {
		return
	}
	if req.PaymentMethodID != "" && !requireInTenant[database.PaymentMethod](h, c, req.PaymentMethodID, "Payment method") {
		return
	}

	sale := &database.Sale{
		TenantID:        t.ID,
		VehicleID:       vehicle.ID,
		ClientID:        req.ClientID,
		SellerID:        sellerID,
		PaymentMethodID: req.PaymentMethodID,
		Price:           req.Price,
		Status:          database.SaleStatus(req.Status),
		SaleDate:        orNow(req.SaleDate, h.now()),
		Notes:           req.Notes,
	}
	if sale.Status == "" {
		sale.Status = database.SalePending
	}
	if sale.Price == 0 {
		sale.Price = vehicle.Price
	}

	err = h.db.Transaction(ctx, func(ctx context.Context) error {
		if err := database.NewScoped[database.Sale](h.db).Create(ctx, sale); err != nil {
			return err
		}
		return h.syncVehicle(ctx, vehicle, sale.Status)
	})
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceSale, sale.ID)
	c.JSON(http.StatusCreated, sale)
}

// UpdateSale edits a PENDING sale. COMPLETED and CANCELLED are final.
func (h *Resources) UpdateSale(c *gin.Context) {
	var req dto.UpdateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, ok := getScoped[database.Sale](h, c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	next := sale.Status
	if req.Status != nil {
		next = database.SaleStatus(*req.Status)
	}
	if sale.Status != database.SalePending && (next != sale.Status || req.Price != nil || req.PaymentMethodID != nil) {
		errorx.Abort(c, errorx.ErrStatusChange.WithDetails(map[string]any{"from": sale.Status, "to": next}))
		return
	}
	if req.PaymentMethodID != nil && *req.PaymentMethodID != "" &&
		!requireInTenant[database.PaymentMethod](h, c, *req.PaymentMethodID, "Payment method") {
		return
	}

	set(&sale.PaymentMethodID, req.PaymentMethodID)
	set(&sale.Price, req.Price)
	set(&sale.Notes, req.Notes)
	if req.SaleDate != nil {
		sale.SaleDate = *req.SaleDate
	}
	changed := next != sale.Status
	sale.Status = next

	err := h.db.Transaction(ctx, func(ctx context.Context) error {
		if err := database.NewScoped[database.Sale](h.db).Save(ctx, sale); err != nil {
			return err
		}
		if !changed {
			return nil
		}
		vehicle, err := database.NewScoped[database.Vehicle](h.db).Get(ctx, sale.TenantID, sale.VehicleID)
		if err != nil {
			return err
		}
		return h.syncVehicle(ctx, vehicle, sale.Status)
	})
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceSale, sale.ID)
	c.JSON(http.StatusOK, sale)
}

// DeleteSale removes a sale; deleting a PENDING sale releases its reservation
func (h *Resources) DeleteSale(c *gin.Context) {
	sale, ok := getScoped[database.Sale](h, c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	err := h.db.Transaction(ctx, func(ctx context.Context) error {
		if err := database.NewScoped[database.Sale](h.db).Delete(ctx, sale.TenantID, sale.ID); err != nil {
			return err
		}
		if sale.Status != database.SalePending {
			return nil
		}
		vehicle, err := database.NewScoped[database.Vehicle](h.db).Get(ctx, sale.TenantID, sale.VehicleID)
		if database.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return h.syncVehicle(ctx, vehicle, database.SaleCancelled)
	})
	if err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionDelete, resourceSale, sale.ID)
	c.Status(http.StatusNoContent)
}

// syncVehicle applies the vehicle status implied by a sale in status s
func (h *Resources) syncVehicle(ctx context.Context, v *database.Vehicle, s database.SaleStatus) error {
	next := v.Status
	switch s {
	case database.SalePending:
		if v.Status == database.VehicleAvailable {
			next = database.VehicleReserved
		}
	case database.SaleCompleted:
		next = database.VehicleSold
	case database.SaleCancelled:
		if v.Status == database.VehicleReserved {
			next = database.VehicleAvailable
		}
	}
	if next == v.Status {
		return nil
	}
	v.Status = next
	return database.NewScoped[database.Vehicle](h.db).Update(ctx, v.TenantID, v.ID, map[string]any{"status": next})
}

// notFoundAs names the missing resource in the 404 message
func notFoundAs(err error, what string) error {
	if database.IsNotFound(err) {
		return errorx.ErrNotFound.WithMessage("%s not found", what)
	}
	return err
}
