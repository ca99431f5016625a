package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field keys produced by the extraction gateway.
const (
	KeyRevenueActual   = "revenue_actual"
	KeyRevenueExpected = "revenue_expected"
	KeyEPSActual       = "eps_actual"
	KeyEPSExpected     = "eps_expected"
)

// DefaultValue is what a missing figure displays as.
const DefaultValue = "0"

// Value is a loosely formatted figure as returned by the extractor, e.g. "$25.18 billion",
// "72 cents" or a bare JSON number. Numbers keep their literal text, except that
// exponent forms are written out in plain decimal ("2.5e1" becomes "25").
//
// Null marks a key the extractor sent with a null value; it displays like a
// missing one but still counts as supplied.
type Value struct {
	Raw     string
	Present bool
	Null    bool
}

// NewValue returns a present value holding raw.
func NewValue(raw string) Value {
	return Value{Raw: raw, Present: true}
}

// String returns the raw text, or DefaultValue when the extractor did not supply the field.
func (v Value) String() string {
	if !v.Present {
		return DefaultValue
	}
	return v.Raw
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = Value{}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v = Value{Null: true}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = NewValue(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = NewValue(numberText(n))
		return nil
	default:
		return fmt.Errorf("value must be a string or number, got %s", truncateJSON(data))
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	return json.Marshal(v.Raw)
}

// Supplied reports whether the extractor sent the key at all, null included.
func (v Value) Supplied() bool {
	return v.Present || v.Null
}

// numberText keeps a JSON number literal as written unless it uses an exponent,
// which the digit-only sanitizer would misread.
func numberText(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, "eE") {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ExtractionResult holds the four figures pulled out of one article.
// A result is replaced wholesale; it is never patched field by field.
type ExtractionResult struct {
	RevenueActual   Value `json:"revenue_actual"`
	RevenueExpected Value `json:"revenue_expected"`
	EPSActual       Value `json:"eps_actual"`
	EPSExpected     Value `json:"eps_expected"`
}

// Empty reports whether none of the four keys was supplied. A result whose keys
// are all null is not empty.
func (r *ExtractionResult) Empty() bool {
	if r == nil {
		return true
	}
	return !r.RevenueActual.Supplied() && !r.RevenueExpected.Supplied() &&
		!r.EPSActual.Supplied() && !r.EPSExpected.Supplied()
}

// MarshalJSON writes supplied keys only, so a stored result decodes back with the
// same keys absent.
func (r ExtractionResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RevenueActual   *Value `json:"revenue_actual,omitempty"`
		RevenueExpected *Value `json:"revenue_expected,omitempty"`
		EPSActual       *Value `json:"eps_actual,omitempty"`
		EPSExpected     *Value `json:"eps_expected,omitempty"`
	}{
		RevenueActual:   r.RevenueActual.supplied(),
		RevenueExpected: r.RevenueExpected.supplied(),
		EPSActual:       r.EPSActual.supplied(),
		EPSExpected:     r.EPSExpected.supplied(),
	})
}

func (v Value) supplied() *Value {
	if !v.Supplied() {
		return nil
	}
	return &v
}

// Clone returns an independent copy.
func (r *ExtractionResult) Clone() *ExtractionResult {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ComparisonRow is one line of the displayed/exported table.
type ComparisonRow struct {
	Measure   string `json:"measure"`
	Estimated string `json:"estimated"`
	Actual    string `json:"actual"`
}

// Measure names, fixed row order.
const (
	MeasureRevenue = "Revenue"
	MeasureEPS     = "EPS"
)

// Rows projects the result onto the two table rows. Values are shown as extracted.
func (r *ExtractionResult) Rows() []ComparisonRow {
	if r == nil {
		return nil
	}
	return []ComparisonRow{
		{Measure: MeasureRevenue, Estimated: r.RevenueExpected.String(), Actual: r.RevenueActual.String()},
		{Measure: MeasureEPS, Estimated: r.EPSExpected.String(), Actual: r.EPSActual.String()},
	}
}

func truncateJSON(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
