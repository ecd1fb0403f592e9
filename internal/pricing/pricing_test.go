package pricing

import (
	"math"
	"testing"
)

func TestCost_KnownModel(t *testing.T) {
	// gpt-4o-mini: 0.150 in / 0.600 out per 1M tokens
	got := Cost("gpt-4o-mini", 1_000_000, 0)
	if math.Abs(got-0.150) > 1e-9 {
		t.Errorf("Cost(gpt-4o-mini, 1M, 0) = %v, want 0.150", got)
	}

	got = Cost("gpt-4o-mini", 0, 1_000_000)
	if math.Abs(got-0.600) > 1e-9 {
		t.Errorf("Cost(gpt-4o-mini, 0, 1M) = %v, want 0.600", got)
	}
}

func TestCost_ZeroTokensIsZero(t *testing.T) {
	for _, model := range []string{"gpt-4", "gpt-4o", "never-heard-of-it"} {
		if got := Cost(model, 0, 0); got != 0 {
			t.Errorf("Cost(%s, 0, 0) = %v, want 0", model, got)
		}
	}
}

func TestCost_UnknownModelUsesDefaultRate(t *testing.T) {
	got := Cost("some-future-model", 1_000_000, 1_000_000)
	want := Cost("gpt-4o-mini", 1_000_000, 1_000_000) // default matches the mini rate
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Cost(unknown) = %v, want default-rate %v", got, want)
	}
}

func TestCost_TotalFunction(t *testing.T) {
	// Never panics, never returns NaN or negative for non-negative input.
	for _, model := range []string{"", "gpt-4", "x", "GPT-4"} {
		got := Cost(model, 123, 456)
		if math.IsNaN(got) || got < 0 {
			t.Errorf("Cost(%q) = %v, want finite non-negative", model, got)
		}
	}
}

func TestRateFor_UnknownFallsBack(t *testing.T) {
	r := RateFor("nope")
	if r.Input <= 0 || r.Output <= 0 {
		t.Errorf("RateFor(unknown) = %+v, want positive default rates", r)
	}
	if Known("nope") {
		t.Error("Known(unknown) = true")
	}
	if !Known("gpt-4") {
		t.Error("Known(gpt-4) = false")
	}
}

func TestEstimateRate_MatchesDefaultEntry(t *testing.T) {
	def := RateFor("model-with-no-entry")
	want := (def.Input + def.Output) / 2
	if got := EstimateRate(); math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateRate() = %v, want %v (blend of default rate)", got, want)
	}
}

func TestEstimateCost(t *testing.T) {
	if got := EstimateCost(0); got != 0 {
		t.Errorf("EstimateCost(0) = %v, want 0", got)
	}

	want := 1_000_000 * EstimateRate() / 1_000_000
	if got := EstimateCost(1_000_000); math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateCost(1M) = %v, want %v", got, want)
	}
}

func TestFormatCost(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{0.0042, "$0.0042"},
		{0.01, "$0.01"},
		{1.5, "$1.50"},
		{123.456, "$123.46"},
	}
	for _, tc := range cases {
		if got := FormatCost(tc.in); got != tc.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatTokens(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_500, "1.5k"},
		{2_340_000, "2.34M"},
	}
	for _, tc := range cases {
		if got := FormatTokens(tc.in); got != tc.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestModels_SortedAndComplete(t *testing.T) {
	ms := Models()
	if len(ms) == 0 {
		t.Fatal("Models() is empty")
	}
	for i := 1; i < len(ms); i++ {
		if ms[i-1] >= ms[i] {
			t.Errorf("Models() not sorted: %q before %q", ms[i-1], ms[i])
		}
	}
	for _, m := range ms {
		if !Known(m) {
			t.Errorf("Models() lists %q but Known(%q) = false", m, m)
		}
	}
}
