package database

import (
	"context"
	"time"
)

// TenantUsage is the quota-relevant row count of a tenant
type TenantUsage struct {
	Users    int64 `json:"users"`
	Vehicles int64 `json:"vehicles"`
	Clients  int64 `json:"clients"`
	Sales    int64 `json:"sales"`
}

// TenantStats is the tenant dashboard
type TenantStats struct {
	VehiclesByStatus   map[VehicleStatus]int64 `json:"vehiclesByStatus"`
	Clients            int64                   `json:"clients"`
	SalesByStatus      map[SaleStatus]int64    `json:"salesByStatus"`
	Revenue            float64                 `json:"revenue"`
	UpcomingTestDrives int64                   `json:"upcomingTestDrives"`
}

// PlatformStats is the super-admin dashboard
type PlatformStats struct {
	TenantsByStatus      map[TenantStatus]int64 `json:"tenantsByStatus"`
	PendingRegistrations int64                  `json:"pendingRegistrations"`
	Users                int64                  `json:"users"`
	Vehicles             int64                  `json:"vehicles"`
	Sales                int64                  `json:"sales"`
}

type statusCount struct {
	Status string
	N      int64
}

// Usage counts the rows a tenant owns
func (d *DB) Usage(ctx context.Context, tenantID string) (*TenantUsage, error) {
	u := &TenantUsage{}
	for dst, model := range map[*int64]any{
		&u.Users: &User{}, &u.Vehicles: &Vehicle{}, &u.Clients: &Client{}, &u.Sales: &Sale{},
	} {
		if err := getDBFromContext(ctx, d.db).Model(model).Where("tenant_id = ?", tenantID).Count(dst).Error; err != nil {
			return nil, err
		}
	}
	return u, nil
}

// TenantDashboard aggregates the per-tenant counters
func (d *DB) TenantDashboard(ctx context.Context, tenantID string, now time.Time) (*TenantStats, error) {
	tx := getDBFromContext(ctx, d.db)
	st := &TenantStats{
		VehiclesByStatus: map[VehicleStatus]int64{VehicleAvailable: 0, VehicleReserved: 0, VehicleSold: 0},
		SalesByStatus:    map[SaleStatus]int64{SalePending: 0, SaleCompleted: 0, SaleCancelled: 0},
	}

	var rows []statusCount
	if err := tx.Model(&Vehicle{}).Select("status, COUNT(*) AS n").
		Where("tenant_id = ?", tenantID).Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		st.VehiclesByStatus[VehicleStatus(r.Status)] = r.N
	}

	rows = nil
	if err := tx.Model(&Sale{}).Select("status, COUNT(*) AS n").
		Where("tenant_id = ?", tenantID).Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		st.SalesByStatus[SaleStatus(r.Status)] = r.N
	}

	if err := tx.Model(&Client{}).
		Where("tenant_id = ?", tenantID).Count(&st.Clients).Error; err != nil {
		return nil, err
	}

	var revenue struct{ Total float64 }
	if err := tx.Model(&Sale{}).Select("COALESCE(SUM(price), 0) AS total").
		Where("tenant_id = ? AND status = ?", tenantID, SaleCompleted).Scan(&revenue).Error; err != nil {
		return nil, err
	}
	st.Revenue = revenue.Total

	if err := tx.Model(&TestDrive{}).
		Where("tenant_id = ? AND status = ? AND scheduled_at >= ?", tenantID, TestDriveScheduled, now).
		Count(&st.UpcomingTestDrives).Error; err != nil {
		return nil, err
	}
	return st, nil
}

// PlatformDashboard aggregates counters across all tenants
func (d *DB) PlatformDashboard(ctx context.Context) (*PlatformStats, error) {
	byStatus, err := d.CountTenantsByStatus(ctx)
	if err != nil {
		return nil, err
	}
	st := &PlatformStats{TenantsByStatus: byStatus}
	if st.PendingRegistrations, err = d.CountRegistrations(ctx, RegistrationPending); err != nil {
		return nil, err
	}
	for dst, model := range map[*int64]any{&st.Users: &User{}, &st.Vehicles: &Vehicle{}, &st.Sales: &Sale{}} {
		if err := getDBFromContext(ctx, d.db).Model(model).Count(dst).Error; err != nil {
			return nil, err
		}
	}
	return st, nil
}
