package service

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/cache"
	"github.com/mariiahub/taxcore/internal/domain/taxid"
	ierr "github.com/mariiahub/taxcore/internal/errors"
	"github.com/mariiahub/taxcore/internal/registry"
	"github.com/mariiahub/taxcore/internal/types"
	"golang.org/x/sync/singleflight"
)

// TaxIdentifierService validates tax identifiers: checksum first, then an
// optional remote registry confirmation behind a TTL cache.
type TaxIdentifierService interface {
	// Validate normalizes and validates a raw identifier. A checksum
	// failure returns immediately with no remote call. With allowRemote,
	// a passing checksum is refined by the registry when reachable;
	// registry outages degrade to registry_unavailable, they never error.
	Validate(ctx context.Context, raw string, allowRemote bool) (*taxid.TaxIdentifier, error)
}

type taxIdentifierService struct {
	ServiceParams
	// lookups deduplicates concurrent remote calls per identifier so one
	// in-flight registry request satisfies all waiters
	lookups singleflight.Group
}

func NewTaxIdentifierService(params ServiceParams) TaxIdentifierService {
	return &taxIdentifierService{ServiceParams: params}
}

func (s *taxIdentifierService) Validate(ctx context.Context, raw string, allowRemote bool) (*taxid.TaxIdentifier, error) {
	value, err := taxid.Normalize(raw)
	if err != nil {
		return nil, err
	}

	// Checksum validity is pure and absolute. The cache and the registry
	// can refine a passing checksum but never override a failing one.
	if !taxid.ChecksumValid(value) {
		return s.persistVerdict(ctx, value, types.IdentifierStatusChecksumInvalid, nil)
	}

	if !allowRemote || !s.Config.Registry.Enabled {
		return s.persistVerdict(ctx, value, types.IdentifierStatusChecksumValid, nil)
	}

	// keys carry the tenant so one tenant's verdict is never served to
	// another; repository reads are tenant-scoped the same way
	cacheKey := cache.GenerateKey(cache.PrefixTaxIdentifier, types.GetTenantID(ctx), value)
	if cached, found := s.Cache.Get(ctx, cacheKey); found {
		if identifier, ok := cached.(*taxid.TaxIdentifier); ok {
			return identifier, nil
		}
	}

	// the lookup runs on a detached context so a waiter that cancels does
	// not fail the deduplicated callers behind it; the registry client
	// bounds the call with its own timeout
	lookupCtx := context.WithoutCancel(ctx)
	result, err, _ := s.lookups.Do(cacheKey, func() (interface{}, error) {
		return s.lookupAndPersist(lookupCtx, value, cacheKey)
	})
	if err != nil {
		return nil, err
	}
	return result.(*taxid.TaxIdentifier), nil
}

func (s *taxIdentifierService) lookupAndPersist(ctx context.Context, value, cacheKey string) (*taxid.TaxIdentifier, error) {
	lookup, err := s.RegistryClient.Lookup(ctx, value)

	var status types.IdentifierStatus
	ttl := s.Config.Registry.TTL
	switch {
	case err != nil && ierr.IsRegistryUnavailable(err):
		s.Logger.Warnw("tax registry lookup failed, degrading confidence",
			"identifier", value, "error", err)
		status = types.IdentifierStatusRegistryUnavailable
		ttl = s.Config.Registry.NegativeTTL
	case err != nil:
		return nil, err
	case lookup.Active:
		status = types.IdentifierStatusRegistryConfirmed
	default:
		status = types.IdentifierStatusRegistryRejected
	}

	identifier, persistErr := s.persistVerdict(ctx, value, status, lookup)
	if persistErr != nil {
		return nil, persistErr
	}

	// failed lookups are cached too, with the shorter TTL, so a registry
	// outage does not turn into a retry storm
	s.Cache.Set(ctx, cacheKey, identifier, ttl)
	return identifier, nil
}

// persistVerdict upserts the audit record for the identifier with the new
// verdict. Records are kept forever; a refresh updates in place.
func (s *taxIdentifierService) persistVerdict(ctx context.Context, value string, status types.IdentifierStatus, lookup *registry.LookupResult) (*taxid.TaxIdentifier, error) {
	existing, err := s.TaxIdentifierRepo.GetByValue(ctx, value)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	isNew := existing == nil
	if isNew {
		existing = taxid.New(ctx, value)
	}
	existing.Status = status
	existing.CheckedAt = now
	if lookup != nil {
		existing.RegistryName = lookup.Name
		existing.RegistryAsOf = lookup.AsOf
	}

	if isNew {
		if err := s.TaxIdentifierRepo.Create(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	existing.UpdatedAt = now
	if err := s.TaxIdentifierRepo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}
