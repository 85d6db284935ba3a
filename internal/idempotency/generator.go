package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Scope namespaces keys so equal params in two flows never collide
type Scope string

const (
	// ScopePartnerInvoice keys generation requests for a partner and month
	ScopePartnerInvoice Scope = "partner_invoice"
)

// Generator derives stable keys from a scope and request parameters
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateKey hashes the scope and params sorted by name. The result is
// prefixed with the scope so stored keys stay readable.
func (g *Generator) GenerateKey(scope Scope, params map[string]interface{}) string {
	names := lo.Keys(params)
	sort.Strings(names)
	pairs := lo.Map(names, func(k string, _ int) string {
		return fmt.Sprintf("%s=%v", k, params[k])
	})

	input := string(scope) + ":" + strings.Join(pairs, ":")
	sum := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%s-%s", scope, hex.EncodeToString(sum[:8]))
}

// ValidateKey reports whether key was generated from scope and params
func (g *Generator) ValidateKey(scope Scope, params map[string]interface{}, key string) bool {
	return g.GenerateKey(scope, params) == key
}
