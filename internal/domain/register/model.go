package register

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/mariiahub/taxcore/internal/types"
	"github.com/shopspring/decimal"
)

// Direction tags which side of the register an entry sums
type Direction string

const (
	DirectionSale Direction = "sale"
)

// RegisterEntry is a derived aggregation row per period window, rate
// bracket and direction. Entries are never hand edited; a new aggregator
// run replaces the previous run's entries for the same window wholesale.
type RegisterEntry struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	// Bracket is the rate bracket key, a fixed two decimal percentage for
	// percentage rates or the special code string otherwise
	Bracket   string    `json:"bracket"`
	Direction Direction `json:"direction"`

	DocumentCount int             `json:"document_count"`
	NetTotal      decimal.Decimal `json:"net_total"`
	TaxTotal      decimal.Decimal `json:"tax_total"`

	types.BaseModel
}

// DeterministicEntryID derives a stable entry ID from the aggregation key,
// so reruns over an unchanged document set reproduce identical entries
func DeterministicEntryID(periodStart, periodEnd time.Time, bracket string, direction Direction) string {
	key := fmt.Sprintf("%s|%s|%s|%s",
		periodStart.UTC().Format(time.RFC3339),
		periodEnd.UTC().Format(time.RFC3339),
		bracket,
		direction)
	digest := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s_%s", types.UUID_PREFIX_REGISTER_ENTRY, hex.EncodeToString(digest[:])[:26])
}

// ReportRun records one aggregator execution over a period window. The
// payload hash makes rerun idempotence checkable after the fact.
type ReportRun struct {
	ID          string    `json:"id"`
	RunNumber   string    `json:"run_number"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	EntryCount  int       `json:"entry_count"`
	PayloadHash string    `json:"payload_hash"`

	types.BaseModel
}
