package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

// initializeSID initializes the shortid generator once
func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns a short ID with a prefix.
// Total length is capped at 12 characters, e.g. `RG_XYZ12A8Q`.
// Used for human-facing references, never for document numbering.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	availableLen := 12 - len(prefix)
	if availableLen <= 0 {
		return ""
	}

	if len(id) > availableLen {
		id = id[:availableLen]
	}

	return strings.ToUpper(fmt.Sprintf("%s%s", prefix, id))
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_TAX_IDENTIFIER       = "txid"
	UUID_PREFIX_RATE_RULE            = "rule"
	UUID_PREFIX_COMPANY_PROFILE      = "prof"
	UUID_PREFIX_INVOICE              = "inv"
	UUID_PREFIX_INVOICE_LINE_ITEM    = "inv_line"
	UUID_PREFIX_CORRECTION           = "corr"
	UUID_PREFIX_CORRECTION_LINE_ITEM = "corr_line"
	UUID_PREFIX_REFUND_POLICY        = "rpol"
	UUID_PREFIX_REGISTER_ENTRY       = "reg"
	UUID_PREFIX_REPORT_RUN           = "run"
)

const (
	SHORT_ID_PREFIX_REPORT_RUN = "RG_"
)
