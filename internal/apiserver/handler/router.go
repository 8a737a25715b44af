package handler

import (
	"github.com/dealerhub/dealerhub/internal/apiserver/middleware"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/dealerhub/dealerhub/internal/i18n"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"github.com/dealerhub/dealerhub/pkg/metrics"
	"github.com/dealerhub/dealerhub/pkg/trace"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions collects everything the HTTP surface depends on
type RouterOptions struct {
	Logger         *zap.Logger
	Authenticator  *middleware.Authenticator
	Resolver       *tenant.Resolver
	TenantHeader   string
	AllowedOrigins []string
	MaxBodyBytes   int64

	// Metrics is optional; nil disables /metrics and request instrumentation
	Metrics     *metrics.Metrics
	MetricsPath string
	// TraceService enables otelgin spans when non-empty
	TraceService string

	Health       *Health
	Auth         *Auth
	Registration *Registration
	SuperAdmin   *SuperAdmin
	Resources    *Resources
}

// NewRouter builds the gin engine with every route and its role gate
func NewRouter(o RouterOptions) *gin.Engine {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	errorx.UseJSONFieldNames()
	eh := errorx.NewErrorHandler(o.Logger)

	r := gin.New()
	r.Use(eh.RecoveryMiddleware(), eh.ErrorMiddleware(), i18n.LangMiddleware())
	if o.TraceService != "" {
		r.Use(trace.Middleware(o.TraceService))
	}
	r.Use(middleware.RequestLogger(o.Logger))
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware())
	}
	r.Use(
		middleware.CORS(o.AllowedOrigins, o.TenantHeader),
		middleware.MaxBodyBytes(o.MaxBodyBytes),
		middleware.ResolveTenant(o.Resolver, o.TenantHeader),
	)

	r.GET("/health", o.Health.Check)
	if o.Metrics != nil {
		path := o.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(o.Metrics.Handler()))
	}

	authn := o.Authenticator
	api := r.Group("/api/v1")

	reg := api.Group("/registration")
	reg.GET("/check-subdomain", o.Registration.CheckSubdomain)
	reg.POST("", o.Registration.Submit)

	api.POST("/auth/password-reset/request", o.Auth.RequestPasswordReset)
	api.POST("/auth/password-reset/confirm", o.Auth.ConfirmPasswordReset)
	api.GET("/files/:id", authn.AuthenticateAny(), o.Resources.ServeFile)

	registerSuperAdmin(api.Group("/super-admin"), authn, o.SuperAdmin)
	registerTenantRoutes(api, authn, o.Auth, o.Resources)
	return r
}

func registerSuperAdmin(g *gin.RouterGroup, authn *middleware.Authenticator, h *SuperAdmin) {
	g.POST("/login", h.Login)

	g.Use(authn.AuthenticateSuperAdmin())
	g.GET("/me", h.Me)
	g.GET("/dashboard", h.Dashboard)

	t := g.Group("/tenants")
	t.GET("", h.ListTenants)
	t.POST("", h.CreateTenant)
	t.GET("/:id", h.GetTenant)
	t.PUT("/:id", h.UpdateTenant)
	t.DELETE("/:id", h.DeleteTenant)
	t.POST("/:id/suspend", h.SuspendTenant)
	t.POST("/:id/reactivate", h.ReactivateTenant)
	t.POST("/:id/cancel", h.CancelTenant)
	t.GET("/:id/users", h.ListTenantUsers)
	t.GET("/:id/audit-logs", h.ListTenantAuditLogs)
	t.POST("/:id/impersonate", h.Impersonate)

	rg := g.Group("/registrations")
	rg.GET("", h.ListRegistrations)
	rg.GET("/:id", h.GetRegistration)
	rg.POST("/:id/approve", h.ApproveRegistration)
	rg.POST("/:id/reject", h.RejectRegistration)
}

// crud registers list/get/create/update/delete of one resource
type crud struct {
	list, get, create, update, del gin.HandlerFunc
	read, write, remove            middleware.RoleSet
}

func (r crud) mount(g *gin.RouterGroup) {
	g.GET("", middleware.RequireRoles(r.read), r.list)
	g.GET("/:id", middleware.RequireRoles(r.read), r.get)
	g.POST("", middleware.RequireRoles(r.write), r.create)
	g.PUT("/:id", middleware.RequireRoles(r.write), r.update)
	g.DELETE("/:id", middleware.RequireRoles(r.remove), r.del)
}

func registerTenantRoutes(api *gin.RouterGroup, authn *middleware.Authenticator, auth *Auth, h *Resources) {
	api.POST("/auth/login", auth.Login)

	g := api.Group("", authn.Authenticate())
	g.GET("/auth/me", auth.Me)
	g.POST("/auth/change-password", auth.ChangePassword)

	all, admin, seller := middleware.AllRoles, middleware.AdminOnly, middleware.AdminOrSeller

	// registered ahead of /vehicles/:id
	g.GET("/vehicles/export", middleware.RequireRoles(admin), h.ExportVehicles)
	crud{h.ListVehicles, h.GetVehicle, h.CreateVehicle, h.UpdateVehicle, h.DeleteVehicle, all, seller, admin}.mount(g.Group("/vehicles"))
	crud{h.ListClients, h.GetClient, h.CreateClient, h.UpdateClient, h.DeleteClient, all, all, admin}.mount(g.Group("/clients"))
	crud{h.ListSales, h.GetSale, h.CreateSale, h.UpdateSale, h.DeleteSale, all, seller, admin}.mount(g.Group("/sales"))
	crud{h.ListTestDrives, h.GetTestDrive, h.CreateTestDrive, h.UpdateTestDrive, h.DeleteTestDrive, all, all, seller}.mount(g.Group("/test-drives"))
	crud{h.ListUsers, h.GetUser, h.CreateUser, h.UpdateUser, h.DeleteUser, admin, admin, admin}.mount(g.Group("/users"))
	crud{h.ListPaymentMethods, h.GetPaymentMethod, h.CreatePaymentMethod, h.UpdatePaymentMethod, h.DeletePaymentMethod, all, admin, admin}.mount(g.Group("/payment-methods"))
	crud{h.ListTemplates, h.GetTemplate, h.CreateTemplate, h.UpdateTemplate, h.DeleteTemplate, all, admin, admin}.mount(g.Group("/document-templates"))

	docs := g.Group("/documents")
	docs.GET("", middleware.RequireRoles(all), h.ListDocuments)
	docs.GET("/:id", middleware.RequireRoles(all), h.GetDocument)
	docs.POST("", middleware.RequireRoles(all), h.UploadDocument)
	docs.DELETE("/:id", middleware.RequireRoles(admin), h.DeleteDocument)

	g.GET("/config", middleware.RequireRoles(all), h.GetConfig)
	g.PUT("/config", middleware.RequireRoles(admin), h.UpdateConfig)
	g.GET("/dashboard", middleware.RequireRoles(all), h.Dashboard)
	g.GET("/audit-logs", middleware.RequireRoles(admin), h.ListAuditLogs)
}
