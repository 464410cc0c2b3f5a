package dtos

import (
	shared_dtos "github.com/stayspot/mono-repo/backend/shared/go-dtos"
	"github.com/stayspot/mono-repo/backend/shared/go-models"
)

type DashboardStats struct {
	UnitsByStatus       map[models.UnitStatus]int       `json:"units_by_status"`
	TenanciesByStatus   map[models.TenancyStatus]int    `json:"tenancies_by_status"`
	ObligationsByStatus map[models.ObligationStatus]int `json:"obligations_by_status"`
	TotalRevenue        string                          `json:"total_revenue"`
	RevenueThisMonth    string                          `json:"revenue_this_month"`
	RecentActivity      []shared_dtos.Notification      `json:"recent_activity"`
}

type OwnerStats struct {
	UnitsByStatus   map[models.UnitStatus]int `json:"units_by_status"`
	ActiveTenants   int                       `json:"active_tenants"`
	PendingRequests int                       `json:"pending_requests"`
	RevenueReceived string                    `json:"revenue_received"`
	Outstanding     string                    `json:"outstanding"`
}
