package service

import (
	"bytes"
	"encoding/csv"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/flexprice/partnerbilling/internal/domain/usage"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/types"
	"github.com/h2non/filetype"
	"github.com/shopspring/decimal"
)

// usageColumnAliases maps normalized spreadsheet headers to usage fields
var usageColumnAliases = map[string]string{
	"month_year":                    "month_year",
	"month":                         "month_year",
	"client_code":                   "client_code",
	"client_id":                     "client_code",
	"client_name":                   "client_name",
	"legal_name":                    "legal_name",
	"fein":                          "fein",
	"state_code":                    "state_code",
	"state":                         "state_code",
	"pay_group_name":                "pay_group_name",
	"is_pay_group_active":           "is_pay_group_active",
	"pay_group_active":              "is_pay_group_active",
	"total_active_employees":        "total_active_employees",
	"active_employees":              "total_active_employees",
	"total_employees_paid":          "total_employees_paid",
	"total_employees_paid_in_month": "total_employees_paid",
}

var headerSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// UsageCSVParser turns a usage spreadsheet export into usage records
type UsageCSVParser struct {
	Logger *logger.Logger
}

func NewUsageCSVParser(logger *logger.Logger) *UsageCSVParser {
	return &UsageCSVParser{
		Logger: logger,
	}
}

// PrepareCSVReader creates a configured CSV reader from the file content
func (p *UsageCSVParser) PrepareCSVReader(fileContent []byte) (*csv.Reader, error) {
	if kind, err := filetype.Match(fileContent); err == nil && kind != filetype.Unknown {
		return nil, ierr.NewErrorf("unsupported file type %s", kind.MIME.Value).
			WithHint("Please upload the monthly billing data as a CSV file").
			WithReportableDetails(map[string]any{
				"detected_type": kind.Extension,
			}).
			Mark(ierr.ErrValidation)
	}

	// Check for and remove BOM if present
	if len(fileContent) >= 3 && fileContent[0] == 0xEF && fileContent[1] == 0xBB && fileContent[2] == 0xBF {
		fileContent = fileContent[3:]
		p.Logger.Debug("BOM detected and removed from usage file")
	}

	reader := csv.NewReader(bytes.NewReader(fileContent))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader, nil
}

// Parse reads every data row of the file. A row whose month column names
// another period is rejected.
func (p *UsageCSVParser) Parse(period types.YearMonth, fileContent []byte) ([]usage.MonthlyUsageRecord, error) {
	reader, err := p.PrepareCSVReader(fileContent)
	if err != nil {
		return nil, err
	}

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, ierr.NewError("usage file is empty").
			WithHint("The uploaded file has no header row").
			Mark(ierr.ErrValidation)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to read the header row of the usage file").
			Mark(ierr.ErrValidation)
	}

	columns := p.mapColumns(headers)
	if _, ok := columns["client_code"]; !ok {
		return nil, ierr.NewError("missing required column").
			WithHint("Missing required column: Client Code").
			WithReportableDetails(map[string]any{
				"headers": headers,
			}).
			Mark(ierr.ErrValidation)
	}

	records := make([]usage.MonthlyUsageRecord, 0)
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rowError(row, err.Error())
		}
		if isBlankRow(fields) {
			continue
		}

		record, err := p.parseRow(row, period, columns, fields)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ierr.NewError("usage file has no rows").
			WithHint("The uploaded file contains a header but no usage rows").
			Mark(ierr.ErrValidation)
	}
	return records, nil
}

// mapColumns returns the field each known header feeds, keyed by field
func (p *UsageCSVParser) mapColumns(headers []string) map[string]int {
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.Trim(headerSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_"), "_")
		field, ok := usageColumnAliases[key]
		if !ok {
			p.Logger.Debugw("ignoring usage column", "header", h)
			continue
		}
		if _, seen := columns[field]; !seen {
			columns[field] = i
		}
	}
	return columns
}

func (p *UsageCSVParser) parseRow(row int, period types.YearMonth, columns map[string]int, fields []string) (usage.MonthlyUsageRecord, error) {
	value := func(field string) string {
		i, ok := columns[field]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	if raw := value("month_year"); raw != "" {
		m, err := types.ParseYearMonth(raw)
		if err != nil {
			return usage.MonthlyUsageRecord{}, rowError(row, "invalid month "+raw)
		}
		if m != period {
			return usage.MonthlyUsageRecord{}, rowError(row, "month "+m.String()+" does not match import month "+period.String())
		}
	}

	active, err := parseCount(value("total_active_employees"))
	if err != nil {
		return usage.MonthlyUsageRecord{}, rowError(row, "invalid total active employees "+value("total_active_employees"))
	}
	paid, err := parseCount(value("total_employees_paid"))
	if err != nil {
		return usage.MonthlyUsageRecord{}, rowError(row, "invalid total employees paid "+value("total_employees_paid"))
	}

	record := usage.Normalize(usage.MonthlyUsageRecord{
		Period:               period,
		ClientCode:           value("client_code"),
		ClientName:           value("client_name"),
		LegalName:            value("legal_name"),
		FEIN:                 value("fein"),
		StateCode:            value("state_code"),
		PayGroupName:         value("pay_group_name"),
		IsPayGroupActive:     parseActiveFlag(value("is_pay_group_active")),
		TotalActiveEmployees: active,
		TotalEmployeesPaid:   paid,
	})
	if record.ClientCode == "" {
		return usage.MonthlyUsageRecord{}, rowError(row, "client code is required")
	}
	return record, nil
}

// parseCount reads a whole count, ignoring thousands separators. Spreadsheet
// exports such as "10.0" are accepted, fractions are not. Blank is zero.
func parseCount(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, strconv.ErrSyntax
	}
	return int(d.IntPart()), nil
}

func parseActiveFlag(raw string) bool {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "active":
		return true
	default:
		return false
	}
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
