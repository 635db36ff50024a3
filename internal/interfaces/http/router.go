package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/millbooks/millbooks-api/internal/application/ledger"
	"github.com/millbooks/millbooks-api/internal/application/reports"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	RecordServices []RecordService // one per configured kind
	Ledger         *ledger.Store
	Reports        *reports.Service
	JWTSecret      string
}

// Router registers the API routes: one uniform record surface per transaction
// kind plus the ledger and report reads, all behind the auth middleware.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	for _, svc := range deps.RecordServices {
		g := api.Group("/" + svc.Config().Path)
		h := NewRecordHandler(svc)
		g.Get("/", h.List)
		g.Post("/", h.Create)
		g.Get("/summary", h.Summary)
		g.Post("/bulk-delete", h.BulkDelete)
		g.Get("/:id", h.GetByID)
		g.Put("/:id", h.Update)
		g.Delete("/:id", h.Delete)
	}

	ledgerHandler := NewLedgerHandler(deps.Ledger)
	api.Get("/ledger", ledgerHandler.List)

	reportHandler := NewReportHandler(deps.Reports)
	rg := api.Group("/reports")
	rg.Get("/balance", reportHandler.Balance)
	rg.Get("/position/:commodity", reportHandler.CommodityPosition)
	rg.Get("/summary", reportHandler.Summary)
	rg.Get("/daily", reportHandler.Daily)
}
