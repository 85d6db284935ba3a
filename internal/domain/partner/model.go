package partner

import (
	"strings"
	"time"

	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/types"
)

// CodeLength is the number of leading client code characters that identify the owning partner
const CodeLength = 4

// Partner is a reseller whose clients are billed through monthly usage
type Partner struct {
	ID string `db:"id" json:"id"`

	// PartnerCode is the four character prefix shared by all of the partner's client codes
	PartnerCode string `db:"partner_code" json:"partner_code"`

	Name         string `db:"partner_name" json:"partner_name"`
	ContactName  string `db:"contact_name" json:"contact_name"`
	ContactEmail string `db:"contact_email" json:"contact_email"`
	PhoneNumber  string `db:"phone_number" json:"phone_number"`

	ContractStart       *time.Time `db:"contract_start" json:"contract_start,omitempty"`
	ContractTermMonths  int        `db:"contract_term" json:"contract_term"`
	AutoRenews          bool       `db:"auto_renews" json:"auto_renews"`
	OverrideRenewalDate *time.Time `db:"override_renewal_date" json:"override_renewal_date,omitempty"`

	IsActive bool `db:"is_active" json:"is_active"`

	types.BaseModel
}

// NormalizeCode upper cases and trims a partner code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CodeFromClientCode returns the partner code prefix of a client code
func CodeFromClientCode(clientCode string) string {
	code := NormalizeCode(clientCode)
	if len(code) < CodeLength {
		return code
	}
	return code[:CodeLength]
}

// OwnsClient reports whether the client code belongs to this partner
func (p *Partner) OwnsClient(clientCode string) bool {
	return CodeFromClientCode(clientCode) == NormalizeCode(p.PartnerCode)
}

// RenewalDate returns the override renewal date when set, else contract start plus term
func (p *Partner) RenewalDate() *time.Time {
	if p.OverrideRenewalDate != nil {
		return p.OverrideRenewalDate
	}
	if p.ContractStart == nil || p.ContractTermMonths <= 0 {
		return nil
	}
	d := p.ContractStart.AddDate(0, p.ContractTermMonths, 0)
	return &d
}

func (p *Partner) Validate() error {
	if len(NormalizeCode(p.PartnerCode)) != CodeLength {
		return ierr.NewError("invalid partner code").
			WithHintf("Partner code must be exactly %d characters", CodeLength).
			WithReportableDetails(map[string]any{
				"partner_code": p.PartnerCode,
			}).
			Mark(ierr.ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return ierr.NewError("partner name is required").
			WithHint("Please provide a partner name").
			Mark(ierr.ErrValidation)
	}
	if p.ContractTermMonths < 0 {
		return ierr.NewError("contract term cannot be negative").
			WithHint("Contract term is expressed in months").
			Mark(ierr.ErrValidation)
	}
	return nil
}
