package service

import (
	"github.com/mariiahub/taxcore/internal/cache"
	"github.com/mariiahub/taxcore/internal/config"
	"github.com/mariiahub/taxcore/internal/domain/company"
	"github.com/mariiahub/taxcore/internal/domain/correction"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	"github.com/mariiahub/taxcore/internal/domain/raterule"
	"github.com/mariiahub/taxcore/internal/domain/refundpolicy"
	"github.com/mariiahub/taxcore/internal/domain/register"
	"github.com/mariiahub/taxcore/internal/domain/taxid"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/registry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	Cache          cache.Cache
	RegistryClient registry.Client

	// Repositories
	TaxIdentifierRepo taxid.Repository
	RateRuleRepo      raterule.Repository
	CompanyRepo       company.Repository
	InvoiceRepo       invoice.Repository
	SequenceRepo      invoice.SequenceRepository
	CorrectionRepo    correction.Repository
	RefundPolicyRepo  refundpolicy.Repository
	RegisterRepo      register.Repository
}
