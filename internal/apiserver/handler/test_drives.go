package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/dto"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	resourceTestDrive   = "test_drive"
	defaultDriveMinutes = 30
	testDriveDateLayout = time.RFC3339
)

func (h *Resources) ListTestDrives(c *gin.Context) {
	var q dto.PageQuery
	if !bindQuery(c, &q) {
		return
	}
	scopes := []database.Scope{
		database.WhereEq("status", strings.ToUpper(q.Status)),
		database.WhereEq("vehicle_id", c.Query("vehicleId")),
		database.WhereEq("client_id", c.Query("clientId")),
		database.WhereEq("user_id", c.Query("userId")),
	}
	for param, op := range map[string]string{"from": ">=", "to": "<"} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		at, err := time.Parse(testDriveDateLayout, raw)
		if err != nil {
			errorx.Abort(c, errorx.ErrBadRequest.WithMessage("%s must be an RFC 3339 timestamp", param))
			return
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("scheduled_at "+op+" ?", at)
		})
	}
	listScoped[database.TestDrive](h, c, q, scopes...)
}

func (h *Resources) GetTestDrive(c *gin.Context) {
	if v, ok := getScoped[database.TestDrive](h, c); ok {
		c.JSON(http.StatusOK, v)
	}
}

func (h *Resources) CreateTestDrive(c *gin.Context) {
	var req dto.CreateTestDriveRequest
	if !bindJSON(c, &req) {
		return
	}
	t, p := scope(c)
	if !requireInTenant[database.Vehicle](h, c, req.VehicleID, "Vehicle") ||
		!requireInTenant[database.Client](h, c, req.ClientID, "Client") {
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = p.ID
	} else if !requireInTenant[database.User](h, c, userID, "User") {
		return
	}

	v := &database.TestDrive{
		TenantID:        t.ID,
		VehicleID:       req.VehicleID,
		ClientID:        req.ClientID,
		UserID:          userID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Status:          database.TestDriveScheduled,
		Notes:           req.Notes,
	}
	if v.DurationMinutes == 0 {
		v.DurationMinutes = defaultDriveMinutes
	}
	if err := database.NewScoped[database.TestDrive](h.db).Create(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionCreate, resourceTestDrive, v.ID)
	c.JSON(http.StatusCreated, v)
}

// UpdateTestDrive edits a SCHEDULED test drive; COMPLETED and CANCELLED are final
func (h *Resources) UpdateTestDrive(c *gin.Context) {
	var req dto.UpdateTestDriveRequest
	if !bindJSON(c, &req) {
		return
	}
	v, ok := getScoped[database.TestDrive](h, c)
	if !ok {
		return
	}
	next := v.Status
	if req.Status != nil {
		next = database.TestDriveStatus(*req.Status)
	}
	if v.Status != database.TestDriveScheduled && (next != v.Status || req.ScheduledAt != nil) {
		errorx.Abort(c, errorx.ErrStatusChange.WithDetails(map[string]any{"from": v.Status, "to": next}))
		return
	}
	if req.ScheduledAt != nil {
		v.ScheduledAt = *req.ScheduledAt
	}
	set(&v.DurationMinutes, req.DurationMinutes)
	set(&v.Notes, req.Notes)
	v.Status = next

	if err := database.NewScoped[database.TestDrive](h.db).Save(c.Request.Context(), v); err != nil {
		errorx.Abort(c, err)
		return
	}
	h.audit.record(c, cnst.ActionUpdate, resourceTestDrive, v.ID)
	c.JSON(http.StatusOK, v)
}

func (h *Resources) DeleteTestDrive(c *gin.Context) {
	deleteScoped[database.TestDrive](h, c, resourceTestDrive)
}
