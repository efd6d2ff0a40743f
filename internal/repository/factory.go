package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mariiahub/taxcore/internal/domain/company"
	"github.com/mariiahub/taxcore/internal/domain/correction"
	"github.com/mariiahub/taxcore/internal/domain/invoice"
	"github.com/mariiahub/taxcore/internal/domain/raterule"
	"github.com/mariiahub/taxcore/internal/domain/refundpolicy"
	"github.com/mariiahub/taxcore/internal/domain/register"
	"github.com/mariiahub/taxcore/internal/domain/taxid"
	"github.com/mariiahub/taxcore/internal/logger"
	"github.com/mariiahub/taxcore/internal/repository/postgres"
)

// Repositories bundles every persistence interface the services depend on
type Repositories struct {
	TaxIdentifier taxid.Repository
	RateRule      raterule.Repository
	Company       company.Repository
	Invoice       invoice.Repository
	Sequence      invoice.SequenceRepository
	Correction    correction.Repository
	RefundPolicy  refundpolicy.Repository
	Register      register.Repository
}

// NewRepositories wires the postgres implementations onto a shared pool
func NewRepositories(pool *pgxpool.Pool, log *logger.Logger) *Repositories {
	return &Repositories{
		TaxIdentifier: postgres.NewTaxIdentifierRepository(pool, log),
		RateRule:      postgres.NewRateRuleRepository(pool, log),
		Company:       postgres.NewCompanyRepository(pool, log),
		Invoice:       postgres.NewInvoiceRepository(pool, log),
		Sequence:      postgres.NewSequenceRepository(pool, log),
		Correction:    postgres.NewCorrectionRepository(pool, log),
		RefundPolicy:  postgres.NewRefundPolicyRepository(pool, log),
		Register:      postgres.NewRegisterRepository(pool, log),
	}
}
