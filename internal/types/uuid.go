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

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns a short human friendly reference with a prefix.
// Total length is capped at 12 characters, e.g., `IMP-XYZ12A8Q`.
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
	UUID_PREFIX_PARTNER           = "ptr"
	UUID_PREFIX_BILLING_ITEM      = "item"
	UUID_PREFIX_PARTNER_BILLING   = "pb"
	UUID_PREFIX_BILLING_TIER      = "tier"
	UUID_PREFIX_CLIENT_BILLING    = "cb"
	UUID_PREFIX_USAGE_RECORD      = "usage"
	UUID_PREFIX_ONE_TIME_FEE      = "otf"
	UUID_PREFIX_INVOICE           = "inv"
	UUID_PREFIX_INVOICE_MONTHLY   = "inv_mon"
	UUID_PREFIX_INVOICE_RECURRING = "inv_rec"
	UUID_PREFIX_INVOICE_ONE_TIME  = "inv_otf"
	UUID_PREFIX_INVOICE_EVENT     = "evt"
	SHORT_ID_PREFIX_USAGE_IMPORT  = "IMP-"
)
