package testutil

import (
	"context"
	"time"

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
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/mariiahub/taxcore/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TaxIdentifierRepo taxid.Repository
	RateRuleRepo      raterule.Repository
	CompanyRepo       company.Repository
	InvoiceRepo       invoice.Repository
	SequenceRepo      invoice.SequenceRepository
	CorrectionRepo    correction.Repository
	RefundPolicyRepo  refundpolicy.Repository
	RegisterRepo      register.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	stores   Stores
	cache    cache.Cache
	registry *MockRegistryClient
	logger   *logger.Logger
	config   *config.Configuration
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	cache.Initialize(s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
	// the cache instance is process-global, so cached verdicts outlive the
	// per-test stores unless flushed here
	s.cache.Flush(s.ctx)
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		TaxIdentifierRepo: NewInMemoryTaxIdentifierStore(),
		RateRuleRepo:      NewInMemoryRateRuleStore(),
		CompanyRepo:       NewInMemoryCompanyStore(),
		InvoiceRepo:       NewInMemoryInvoiceStore(),
		SequenceRepo:      NewInMemorySequenceStore(),
		CorrectionRepo:    NewInMemoryCorrectionStore(),
		RefundPolicyRepo:  NewInMemoryRefundPolicyStore(),
		RegisterRepo:      NewInMemoryRegisterStore(),
	}
	s.cache = cache.NewInMemoryCache()
	s.registry = NewMockRegistryClient()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TaxIdentifierRepo.(*InMemoryTaxIdentifierStore).Clear()
	s.stores.RateRuleRepo.(*InMemoryRateRuleStore).Clear()
	s.stores.CompanyRepo.(*InMemoryCompanyStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.SequenceRepo.(*InMemorySequenceStore).Clear()
	s.stores.CorrectionRepo.(*InMemoryCorrectionStore).Clear()
	s.stores.RefundPolicyRepo.(*InMemoryRefundPolicyStore).Clear()
	s.stores.RegisterRepo.(*InMemoryRegisterStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetRegistry returns the mock registry client
func (s *BaseServiceTestSuite) GetRegistry() *MockRegistryClient {
	return s.registry
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
