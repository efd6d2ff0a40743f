package invoice

import (
	"context"
	"time"

	"github.com/mariiahub/taxcore/internal/types"
)

// DocumentSequence is the durable counter backing gapless numbering. One
// row exists per (tenant, document type, period key) and is only ever
// advanced by SequenceRepository.Next.
type DocumentSequence struct {
	TenantID     string             `json:"tenant_id"`
	DocumentType types.DocumentType `json:"document_type"`
	PeriodKey    string             `json:"period_key"`
	LastValue    int64              `json:"last_value"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// SequenceRepository allocates document numbers.
//
// Next must be atomic against durable state: concurrent callers for the
// same (document type, period key) receive distinct consecutive values
// with no duplicates. A value allocated for an issuance that later fails
// is reserved but unused; it is tolerated downstream and never reassigned.
type SequenceRepository interface {
	Next(ctx context.Context, docType types.DocumentType, periodKey string) (int64, error)
	Current(ctx context.Context, docType types.DocumentType, periodKey string) (int64, error)
}
