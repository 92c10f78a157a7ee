package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.01", 1, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDecimalToCents(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimalToCents(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMoneyWireConversion(t *testing.T) {
	// Entering 12345 cents must transmit 123.45.
	b, err := json.Marshal(Money{Cents: 12345})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "123.45" {
		t.Fatalf("marshal = %s, want 123.45", b)
	}

	var m Money
	if err := json.Unmarshal([]byte("123.45"), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Cents != 12345 {
		t.Fatalf("unmarshal cents = %d, want 12345", m.Cents)
	}
}

func TestMoneyMajor(t *testing.T) {
	if got := (Money{Cents: 12345}).Major(); got != 123.45 {
		t.Fatalf("Major = %v, want 123.45", got)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}
