package service

import (
	"context"
	"sync"
	"testing"
	"time"

	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/registry"
	"github.com/mariiahub/taxcore/internal/testutil"
	"github.com/mariiahub/taxcore/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type TaxIdentifierServiceSuite struct {
	testutil.BaseServiceTestSuite
	service TaxIdentifierService
}

func TestTaxIdentifierService(t *testing.T) {
	suite.Run(t, new(TaxIdentifierServiceSuite))
}

func (s *TaxIdentifierServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewTaxIdentifierService(s.serviceParams())
}

func (s *TaxIdentifierServiceSuite) serviceParams() ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:            s.GetLogger(),
		Config:            s.GetConfig(),
		Cache:             s.GetCache(),
		RegistryClient:    s.GetRegistry(),
		TaxIdentifierRepo: stores.TaxIdentifierRepo,
		RateRuleRepo:      stores.RateRuleRepo,
		CompanyRepo:       stores.CompanyRepo,
		InvoiceRepo:       stores.InvoiceRepo,
		SequenceRepo:      stores.SequenceRepo,
		CorrectionRepo:    stores.CorrectionRepo,
		RefundPolicyRepo:  stores.RefundPolicyRepo,
		RegisterRepo:      stores.RegisterRepo,
	}
}

func (s *TaxIdentifierServiceSuite) TestMalformedIdentifier() {
	_, err := s.service.Validate(s.GetContext(), "12345", true)
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrMalformedIdentifier))
	s.Equal(0, s.GetRegistry().Calls, "malformed input must not reach the registry")
}

func (s *TaxIdentifierServiceSuite) TestChecksumFailureSkipsRegistry() {
	identifier, err := s.service.Validate(s.GetContext(), "1300000005", true)
	s.NoError(err)
	s.Equal(types.IdentifierStatusChecksumInvalid, identifier.Status)
	s.Equal(0, s.GetRegistry().Calls)

	// the verdict is persisted for audit
	stored, err := s.GetStores().TaxIdentifierRepo.GetByValue(s.GetContext(), "1300000005")
	s.NoError(err)
	s.Equal(types.IdentifierStatusChecksumInvalid, stored.Status)
}

func (s *TaxIdentifierServiceSuite) TestChecksumOnlyWhenRemoteDisallowed() {
	identifier, err := s.service.Validate(s.GetContext(), "PL 526-025-02-74", false)
	s.NoError(err)
	s.Equal("5260250274", identifier.Value)
	s.Equal(types.IdentifierStatusChecksumValid, identifier.Status)
	s.Equal(0, s.GetRegistry().Calls)
}

func (s *TaxIdentifierServiceSuite) TestRegistryConfirmed() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{
		Active: true,
		Name:   "Testowa Spolka Sp. z o.o.",
		AsOf:   lo.ToPtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
	})

	identifier, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	s.Equal(types.IdentifierStatusRegistryConfirmed, identifier.Status)
	s.Equal("Testowa Spolka Sp. z o.o.", identifier.RegistryName)
	s.Equal(1, s.GetRegistry().Calls)
}

func (s *TaxIdentifierServiceSuite) TestRegistryRejected() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: false})

	identifier, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	s.Equal(types.IdentifierStatusRegistryRejected, identifier.Status)
}

func (s *TaxIdentifierServiceSuite) TestRegistryOutageDegrades() {
	s.GetRegistry().Unavailable = true

	identifier, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err, "a registry outage must never fail validation")
	s.Equal(types.IdentifierStatusRegistryUnavailable, identifier.Status)
}

func (s *TaxIdentifierServiceSuite) TestVerdictIsCached() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})

	_, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	_, err = s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)

	s.Equal(1, s.GetRegistry().Calls, "second validation must be served from cache")
}

func (s *TaxIdentifierServiceSuite) TestOutageIsNegativelyCached() {
	s.GetRegistry().Unavailable = true

	_, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	_, err = s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)

	s.Equal(1, s.GetRegistry().Calls, "outage verdicts are cached to avoid a retry storm")
}

func (s *TaxIdentifierServiceSuite) TestConcurrentValidationsAgree() {
	s.GetRegistry().SetResult("7740001454", &registry.LookupResult{Active: true})

	const workers = 20
	var wg sync.WaitGroup
	statuses := make([]types.IdentifierStatus, workers)
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			identifier, err := s.service.Validate(s.GetContext(), "7740001454", true)
			errs[i] = err
			if err == nil {
				statuses[i] = identifier.Status
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		s.NoError(errs[i])
		s.Equal(types.IdentifierStatusRegistryConfirmed, statuses[i])
	}
	// in-flight deduplication plus the cache keep remote traffic far below
	// one call per waiter
	s.Less(s.GetRegistry().Calls, workers)
}

func (s *TaxIdentifierServiceSuite) TestTeardownDropsCachedVerdicts() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: false})
	identifier, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	s.Equal(types.IdentifierStatusRegistryRejected, identifier.Status)

	// cycle the fixture the way the suite does between tests; a fresh
	// fixture must not observe the previous test's cached verdict
	s.TearDownTest()
	s.SetupTest()

	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})
	identifier, err = s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	s.Equal(types.IdentifierStatusRegistryConfirmed, identifier.Status)
	s.Equal(1, s.GetRegistry().Calls, "the new verdict must come from the registry, not the cache")
}

func (s *TaxIdentifierServiceSuite) TestCachedVerdictIsTenantScoped() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})

	_, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)

	otherTenant := types.SetTenantID(s.GetContext(), "tenant-b")
	identifier, err := s.service.Validate(otherTenant, "5260250274", true)
	s.NoError(err)
	s.Equal("tenant-b", identifier.TenantID)
	s.Equal(2, s.GetRegistry().Calls, "another tenant must not be served the first tenant's cached record")
}

func (s *TaxIdentifierServiceSuite) TestCancelledWaiterDoesNotFailOthers() {
	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})

	cancelled, cancel := context.WithCancel(s.GetContext())
	cancel()

	identifier, err := s.service.Validate(cancelled, "5260250274", true)
	s.NoError(err, "the lookup runs detached from the caller's cancellation")
	s.Equal(types.IdentifierStatusRegistryConfirmed, identifier.Status)
}

func (s *TaxIdentifierServiceSuite) TestRefreshUpdatesInPlace() {
	_, err := s.service.Validate(s.GetContext(), "5260250274", false)
	s.NoError(err)

	s.GetRegistry().SetResult("5260250274", &registry.LookupResult{Active: true})
	identifier, err := s.service.Validate(s.GetContext(), "5260250274", true)
	s.NoError(err)
	s.Equal(types.IdentifierStatusRegistryConfirmed, identifier.Status)

	stored, err := s.GetStores().TaxIdentifierRepo.GetByValue(s.GetContext(), "5260250274")
	s.NoError(err)
	s.Equal(types.IdentifierStatusRegistryConfirmed, stored.Status)
}
