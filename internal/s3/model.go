package s3

import (
	"github.com/flexprice/partnerbilling/internal/types"
)

// Document is a raw usage import file kept for audit
type Document struct {
	ID     string          `json:"id"`
	Data   []byte          `json:"data"`
	Kind   DocumentKind    `json:"kind"`
	Period types.YearMonth `json:"period"`
}

type DocumentKind string

const (
	DocumentKindCSV  DocumentKind = "csv"
	DocumentKindJSON DocumentKind = "json"
)

func NewUsageImportDocument(reference string, period types.YearMonth, data []byte, kind DocumentKind) *Document {
	return &Document{
		ID:     reference,
		Data:   data,
		Kind:   kind,
		Period: period,
	}
}
