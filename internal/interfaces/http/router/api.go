package router

import (
	"github.com/erp/manufacturing/internal/interfaces/http/handler"
)

// Handlers bundles the handlers served under the versioned API group
type Handlers struct {
	System     *handler.SystemHandler
	Catalog    *handler.CatalogHandler
	Production *handler.ProductionHandler
	CostPlan   *handler.CostPlanHandler
	Wizard     *handler.WizardHandler
	Warning    *handler.WarningHandler
}

// Groups builds the domain groups of the API
func (h Handlers) Groups() []*DomainGroup {
	system := NewDomainGroup("system", "/system").
		GET("/ping", h.System.Ping)

	catalog := NewDomainGroup("catalog", "/catalog")
	catalog.Group("uoms", "/uoms").
		POST("", h.Catalog.CreateUom).
		GET("", h.Catalog.ListUoms)
	catalog.Group("products", "/products").
		POST("", h.Catalog.CreateProduct).
		GET("", h.Catalog.ListProducts).
		GET("/:id", h.Catalog.GetProduct).
		POST("/:id/boms", h.Catalog.AddProductBom).
		GET("/:id/boms", h.Catalog.ListProductBoms)

	production := NewDomainGroup("production", "/production")
	production.Group("boms", "/boms").
		POST("", h.Production.CreateBom).
		GET("/:id", h.Production.GetBom)
	production.Group("routes", "/routes").
		POST("", h.Production.CreateRoute).
		GET("/:id", h.Production.GetRoute)
	production.Group("processes", "/processes").
		GET("", h.Production.ListProcesses).
		GET("/:id", h.Production.GetProcess)

	costPlans := NewDomainGroup("cost-plans", "/cost-plans").
		POST("", h.CostPlan.Create).
		GET("", h.CostPlan.List).
		POST("/copy", h.CostPlan.Copy).
		POST("/on-change/product", h.CostPlan.OnChangeProduct).
		POST("/on-change/process", h.CostPlan.OnChangeProcess).
		GET("/:id", h.CostPlan.GetByID).
		PUT("/:id", h.CostPlan.Update).
		DELETE("/:id", h.CostPlan.Delete).
		POST("/:id/compute", h.CostPlan.Compute).
		POST("/:id/create-process", h.CostPlan.CreateProcess)

	wizards := NewDomainGroup("wizards", "/wizards")
	wizards.Group("create-process", "/create-process").
		POST("/start", h.Wizard.StartCreateProcess).
		POST("/process", h.Wizard.ProcessCreateProcess)

	warnings := NewDomainGroup("warnings", "/warnings").
		POST("", h.Warning.Acknowledge)

	return []*DomainGroup{system, catalog, production, costPlans, wizards, warnings}
}

// RegisterAPI registers every API group on the router
func RegisterAPI(r *Router, h Handlers) {
	for _, group := range h.Groups() {
		r.Register(group)
	}
}
