package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRow() map[string]string {
	return map[string]string{
		"name":            "Phone A",
		"parent_category": "Electronics",
		"price":           "999",
	}
}

func TestValidateAcceptsMinimalRow(t *testing.T) {
	v := NewRowValidator()

	result := v.Validate(validRow())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Reasons)
}

func TestValidateRequiredFields(t *testing.T) {
	v := NewRowValidator()

	tests := []struct {
		name   string
		drop   string
		reason string
	}{
		{"missing name", "name", "name is required"},
		{"missing parent category", "parent_category", "parent_category is required"},
		{"missing price", "price", "price is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			delete(row, tt.drop)

			result := v.Validate(row)

			assert.False(t, result.Valid)
			assert.Contains(t, result.Reasons, tt.reason)
		})
	}
}

func TestValidatePrice(t *testing.T) {
	v := NewRowValidator()

	tests := []struct {
		name  string
		price string
		valid bool
	}{
		{"integer", "100", true},
		{"decimal", "99.99", true},
		{"zero", "0", true},
		{"negative", "-1", false},
		{"not a number", "free", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := validRow()
			row["price"] = tt.price

			result := v.Validate(row)

			assert.Equal(t, tt.valid, result.Valid)
		})
	}
}

func TestValidateOptionalNumerics(t *testing.T) {
	v := NewRowValidator()

	row := validRow()
	row["countinstock"] = "plenty"
	result := v.Validate(row)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Reason(), "countinstock must be a number")

	row = validRow()
	row["countinstock"] = ""
	row["discount"] = ""
	assert.True(t, v.Validate(row).Valid)

	row = validRow()
	row["buyingprice"] = "650"
	row["offerprice"] = "899.50"
	row["tax"] = "5"
	assert.True(t, v.Validate(row).Valid)
}

func TestValidateCollectsAllReasons(t *testing.T) {
	v := NewRowValidator()

	result := v.Validate(map[string]string{"price": "-5", "tax": "high"})

	assert.False(t, result.Valid)
	assert.Len(t, result.Reasons, 4)
}

func TestParseBool(t *testing.T) {
	assert.True(t, ParseBool("true"))
	assert.True(t, ParseBool("TRUE"))
	assert.True(t, ParseBool(" true "))
	assert.False(t, ParseBool("false"))
	assert.False(t, ParseBool("yes"))
	assert.False(t, ParseBool("1"))
	assert.False(t, ParseBool(""))
}
