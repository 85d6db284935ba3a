package types

// PartnerFilter represents the filter options for listing partners
type PartnerFilter struct {
	*QueryFilter

	// IncludeInactive returns partners whose is_active flag is false as well
	IncludeInactive bool     `json:"include_inactive,omitempty" form:"include_inactive"`
	PartnerCodes    []string `json:"partner_codes,omitempty" form:"partner_codes"`
}

func NewPartnerFilter() *PartnerFilter {
	return &PartnerFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitPartnerFilter() *PartnerFilter {
	return &PartnerFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *PartnerFilter) Validate() error {
	if f.QueryFilter != nil {
		return f.QueryFilter.Validate()
	}
	return nil
}

// BillingItemFilter represents the filter options for listing billing items
type BillingItemFilter struct {
	IncludeInactive bool          `json:"include_inactive,omitempty" form:"include_inactive"`
	Kinds           []BillingKind `json:"kinds,omitempty" form:"kinds"`
}

func (f *BillingItemFilter) Validate() error {
	for _, k := range f.Kinds {
		if err := k.Validate(); err != nil {
			return err
		}
	}
	return nil
}
