package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/mariiahub/taxcore/internal/api/v1"
	"github.com/mariiahub/taxcore/internal/rest/middleware"
)

type Handlers struct {
	TaxIdentifier *v1.TaxIdentifierHandler
	RateRule      *v1.RateRuleHandler
	Invoice       *v1.InvoiceHandler
	Correction    *v1.CorrectionHandler
	Report        *v1.ReportHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.TenantMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Identifier routes
	identifiers := router.Group("/identifiers")
	{
		identifiers.POST("/validate", handlers.TaxIdentifier.ValidateIdentifier)
	}

	// Rate rule routes
	rules := router.Group("/rules")
	{
		rules.POST("", handlers.RateRule.CreateRule)
		rules.GET("", handlers.RateRule.ListRules)
		rules.GET("/:id", handlers.RateRule.GetRule)
		rules.PUT("/:id", handlers.RateRule.UpdateRule)
		rules.DELETE("/:id", handlers.RateRule.DeleteRule)
	}

	// Invoice routes
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.IssueInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
	}

	// Correction routes
	corrections := router.Group("/corrections")
	{
		corrections.POST("", handlers.Correction.CorrectInvoice)
		corrections.GET("", handlers.Correction.ListCorrections)
		corrections.GET("/:id", handlers.Correction.GetCorrection)
	}

	// Report routes
	reports := router.Group("/reports")
	{
		reports.POST("/aggregate", handlers.Report.AggregatePeriod)
		reports.POST("/export", handlers.Report.ExportPeriod)
	}
}
