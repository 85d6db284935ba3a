package billing

import (
	"github.com/flexprice/partnerbilling/internal/domain/usage"
)

// Aggregate merges rows sharing a client code. Employee counts are summed, the
// pay group is active when any row is, descriptive columns take the last seen
// value and output follows first occurrence order.
func Aggregate(records []usage.MonthlyUsageRecord) []usage.MonthlyUsageRecord {
	index := make(map[string]int, len(records))
	out := make([]usage.MonthlyUsageRecord, 0, len(records))

	for _, r := range records {
		i, ok := index[r.ClientCode]
		if !ok {
			index[r.ClientCode] = len(out)
			out = append(out, r)
			continue
		}

		merged := &out[i]
		merged.TotalActiveEmployees += r.TotalActiveEmployees
		merged.TotalEmployeesPaid += r.TotalEmployeesPaid
		merged.IsPayGroupActive = merged.IsPayGroupActive || r.IsPayGroupActive
		merged.ClientName = r.ClientName
		if r.LegalName != "" {
			merged.LegalName = r.LegalName
		}
		if r.FEIN != "" {
			merged.FEIN = r.FEIN
		}
		if r.StateCode != "" {
			merged.StateCode = r.StateCode
		}
		if r.PayGroupName != "" {
			merged.PayGroupName = r.PayGroupName
		}
	}
	return out
}

// UsageIndex looks up aggregated usage by client code
type UsageIndex map[string]usage.MonthlyUsageRecord

// NewUsageIndex aggregates records and indexes them by client code
func NewUsageIndex(records []usage.MonthlyUsageRecord) UsageIndex {
	idx := make(UsageIndex, len(records))
	for _, r := range Aggregate(records) {
		idx[r.ClientCode] = r
	}
	return idx
}

// Lookup returns the usage of a client for the period
func (u UsageIndex) Lookup(clientCode string) (usage.MonthlyUsageRecord, bool) {
	r, ok := u[clientCode]
	return r, ok
}
