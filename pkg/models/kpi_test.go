package models

import (
	"encoding/json"
	"testing"

	"kpi_extractor/pkg/core/sanitize"
)

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPresent bool
		wantNull    bool
		wantString  string
		wantErr     bool
	}{
		{name: "string with units", input: `"$25.18 billion"`, wantPresent: true, wantString: "$25.18 billion"},
		{name: "integer number", input: `72`, wantPresent: true, wantString: "72"},
		{name: "decimal number", input: `0.58`, wantPresent: true, wantString: "0.58"},
		{name: "negative number", input: `-1.5`, wantPresent: true, wantString: "-1.5"},
		{name: "exponent number", input: `2.5e1`, wantPresent: true, wantString: "25"},
		{name: "upper-case exponent", input: `1E3`, wantPresent: true, wantString: "1000"},
		{name: "negative exponent", input: `7.2e-1`, wantPresent: true, wantString: "0.72"},
		{name: "null", input: `null`, wantPresent: false, wantNull: true, wantString: "0"},
		{name: "empty string", input: `""`, wantPresent: true, wantString: ""},
		{name: "object rejected", input: `{"a":1}`, wantErr: true},
		{name: "array rejected", input: `[1]`, wantErr: true},
		{name: "bool rejected", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.input), &v)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if v.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", v.Present, tt.wantPresent)
			}
			if v.Null != tt.wantNull {
				t.Errorf("Null = %v, want %v", v.Null, tt.wantNull)
			}
			if v.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", v.String(), tt.wantString)
			}
		})
	}
}

func TestExtractionResult_DecodeMissingFields(t *testing.T) {
	var r ExtractionResult
	if err := json.Unmarshal([]byte(`{"revenue_actual": "$25.18 billion", "eps_actual": 0.72}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if r.Empty() {
		t.Fatal("result with two fields should not be empty")
	}
	if r.RevenueExpected.Present || r.EPSExpected.Present {
		t.Error("missing fields must not be present")
	}
	if got := r.RevenueExpected.String(); got != DefaultValue {
		t.Errorf("missing field String() = %q, want %q", got, DefaultValue)
	}
	if got := r.EPSActual.String(); got != "0.72" {
		t.Errorf("numeric field String() = %q, want 0.72", got)
	}
}

func TestExtractionResult_Empty(t *testing.T) {
	var nilResult *ExtractionResult
	if !nilResult.Empty() {
		t.Error("nil result should be empty")
	}

	var r ExtractionResult
	if err := json.Unmarshal([]byte(`{"ticker":"TSLA"}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !r.Empty() {
		t.Error("result without KPI fields should be empty")
	}

	var nulls ExtractionResult
	in := `{"revenue_actual": null, "revenue_expected": null, "eps_actual": null, "eps_expected": null}`
	if err := json.Unmarshal([]byte(in), &nulls); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if nulls.Empty() {
		t.Error("result with all keys null should not be empty")
	}
	for _, row := range nulls.Rows() {
		if row.Estimated != DefaultValue || row.Actual != DefaultValue {
			t.Errorf("null row = %+v, want defaults", row)
		}
	}
}

func TestExtractionResult_MarshalKeepsKeySet(t *testing.T) {
	in := `{"revenue_actual":"$25.18 billion","eps_expected":null}`

	var r ExtractionResult
	if err := json.Unmarshal([]byte(in), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal() = %s, want %s", out, in)
	}

	var back ExtractionResult
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != r {
		t.Errorf("round trip = %+v, want %+v", back, r)
	}
}

func TestExponentNumberSanitizesToSameValue(t *testing.T) {
	var r ExtractionResult
	if err := json.Unmarshal([]byte(`{"revenue_actual": 2.5e1, "revenue_expected": 1E3}`), &r); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got := sanitize.Float(r.RevenueActual.String()); got != 25 {
		t.Errorf("revenue_actual %q sanitized = %v, want 25", r.RevenueActual.Raw, got)
	}
	if got := sanitize.Float(r.RevenueExpected.String()); got != 1000 {
		t.Errorf("revenue_expected %q sanitized = %v, want 1000", r.RevenueExpected.Raw, got)
	}
}

func TestExtractionResult_Rows(t *testing.T) {
	r := &ExtractionResult{
		RevenueActual:   NewValue("$25.18 billion"),
		RevenueExpected: NewValue("$25.37 billion"),
		EPSActual:       NewValue("72 cents"),
		EPSExpected:     NewValue("58 cents"),
	}

	rows := r.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	want := []ComparisonRow{
		{Measure: "Revenue", Estimated: "$25.37 billion", Actual: "$25.18 billion"},
		{Measure: "EPS", Estimated: "58 cents", Actual: "72 cents"},
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestExtractionResult_CloneIsIndependent(t *testing.T) {
	r := &ExtractionResult{RevenueActual: NewValue("1")}
	c := r.Clone()
	c.RevenueActual = NewValue("2")

	if r.RevenueActual.Raw != "1" {
		t.Errorf("original mutated through clone: %q", r.RevenueActual.Raw)
	}
}
