package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{"0", 0, true},
		{" 2.50 ", 2.5, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestParseLimit(t *testing.T) {
	cases := map[string]float64{
		"50":    50,
		"12,5":  12.5,
		"":      0,
		"abc":   0,
		"-10":   0,
		" 100 ": 100,
	}
	for in, want := range cases {
		if got := ParseLimit(in); got != want {
			t.Errorf("ParseLimit(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{10, 10},
		{0, 0},
		{-5, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.in); got != tc.want {
			t.Errorf("ClampLimit(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFixed2(t *testing.T) {
	cases := map[float64]string{
		3.5:    "3.50",
		0:      "0.00",
		12.345: "12.35",
		-4.1:   "-4.10",
	}
	for in, want := range cases {
		if got := Fixed2(in); got != want {
			t.Errorf("Fixed2(%v) = %q, want %q", in, got, want)
		}
	}
}
