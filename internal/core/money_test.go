package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseTurkishNumber(t *testing.T) {
	cases := []struct {
		in  string
		out float64
	}{
		{"1500", 1500},
		{"12.5", 12.5},
		{"12,5", 12.5},
		{" 7,25 ", 7.25},
		{"", 0},
		{"abc", 0},
		{"1,2,3", 1.2},
		{"12abc", 12},
		{"1.234,56", 1.234},
		{"3 TL", 3},
		{"-,5", -0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"2e", 2},
		{"-", 0},
		{".", 0},
		{"₺100", 0},
	}
	for _, tc := range cases {
		if got := ParseTurkishNumber(tc.in); math.Abs(got-tc.out) > 1e-9 {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.out, got)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"1", 100},
		{"1,23", 123},
		{"0.01", 1},
		{"1.005", 101}, // half away from zero
		{"-2", -200},
		{"x", 0},
		{"250,75 TL", 25075},
		{"99,999", 10000},
		{"1e999999999", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.in); got.Cents != tc.out {
			t.Fatalf("%q expected %d, got %d", tc.in, tc.out, got.Cents)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in  Money
		out string
	}{
		{NewMoney(0), "₺0"},
		{NewMoney(750), "₺750"},
		{NewMoney(1500), "₺1.500"},
		{Money{Cents: 149950}, "₺1.500"},
		{NewMoney(-250), "-₺250"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.out {
			t.Fatalf("%d cents expected %q, got %q", tc.in.Cents, tc.out, got)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":1500,"b":"12,5","c":0.1}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A.Cents != 150000 || v.B.Cents != 1250 || v.C.Cents != 10 {
		t.Fatalf("unexpected values: %+v", v)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":1500,"b":12.5,"c":0.1}` {
		t.Fatalf("unexpected json: %s", out)
	}

	if err := json.Unmarshal([]byte(`{"a":true}`), &v); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
	if err := json.Unmarshal([]byte(`{"a":1e400}`), &v); err == nil {
		t.Fatalf("expected error for out of range amount")
	}
}
