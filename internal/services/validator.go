package services

import (
	"fmt"
	"strconv"
	"strings"
)

// Numeric columns that are optional but must parse when present. Keys are
// the normalized (lowercased) header names.
var optionalNumericColumns = []string{
	"buyingprice",
	"offerprice",
	"discount",
	"tax",
	"countinstock",
	"maxpurchaseqty",
	"lowstockwarning",
}

// RowValidation is the structural verdict for one uploaded row
type RowValidation struct {
	Valid   bool
	Reasons []string
}

// Reason joins the individual failure reasons into one message
func (v RowValidation) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// RowValidator checks uploaded rows structurally, before any tree
// resolution happens. Boolean columns are coercions, not checks: anything
// other than the literal "true" reads as false.
type RowValidator struct{}

func NewRowValidator() *RowValidator {
	return &RowValidator{}
}

// Validate checks one normalized row. Keys are lowercased header names.
func (v *RowValidator) Validate(row map[string]string) RowValidation {
	var reasons []string

	if strings.TrimSpace(row["name"]) == "" {
		reasons = append(reasons, "name is required")
	}
	if strings.TrimSpace(row["parent_category"]) == "" {
		reasons = append(reasons, "parent_category is required")
	}

	price := strings.TrimSpace(row["price"])
	if price == "" {
		reasons = append(reasons, "price is required")
	} else if parsed, err := strconv.ParseFloat(price, 64); err != nil {
		reasons = append(reasons, "price must be a number")
	} else if parsed < 0 {
		reasons = append(reasons, "price must not be negative")
	}

	for _, column := range optionalNumericColumns {
		value := strings.TrimSpace(row[column])
		if value == "" {
			continue
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			reasons = append(reasons, fmt.Sprintf("%s must be a number", column))
		}
	}

	return RowValidation{Valid: len(reasons) == 0, Reasons: reasons}
}

// ParseBool reads a spreadsheet boolean cell. Only the literal "true"
// (case-insensitive) is true; everything else, including garbage, is false.
func ParseBool(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}
