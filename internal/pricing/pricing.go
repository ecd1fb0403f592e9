// Package pricing maps model identifiers and token counts to monetary cost.
package pricing

import (
	"fmt"
	"sort"
)

// Rate holds a model's prices in currency units per one million tokens.
type Rate struct {
	Input  float64
	Output float64
}

// rates is the per-model rate table. Cost display is advisory, not billing
// authoritative, so lookups fail open to defaultRate instead of erroring.
var rates = map[string]Rate{
	"gpt-4":         {Input: 30.0, Output: 60.0},
	"gpt-4o":        {Input: 2.50, Output: 10.0},
	"gpt-4o-mini":   {Input: 0.150, Output: 0.600},
	"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},
}

// defaultRate is applied when a model has no table entry.
var defaultRate = Rate{Input: 0.150, Output: 0.600}

// RateFor returns the rate for a model, or the default rate when the model
// is unknown. It is a total function.
func RateFor(model string) Rate {
	if r, ok := rates[model]; ok {
		return r
	}
	return defaultRate
}

// Known reports whether the model has an explicit table entry.
func Known(model string) bool {
	_, ok := rates[model]
	return ok
}

// Models returns the identifiers with explicit table entries, sorted.
func Models() []string {
	out := make([]string, 0, len(rates))
	for m := range rates {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Cost computes the monetary cost of the given token counts under the
// model's rate. Pure: no I/O, no shared mutable state.
func Cost(model string, promptTokens, completionTokens int64) float64 {
	r := RateFor(model)
	return float64(promptTokens)*r.Input/1_000_000 +
		float64(completionTokens)*r.Output/1_000_000
}

// EstimateRate is the single blended per-token rate used to price
// provisional client-side estimates, where the prompt/completion split is
// not yet known. It averages the default rate's input and output prices so
// the live figure and the table stay in agreement.
func EstimateRate() float64 {
	return (defaultRate.Input + defaultRate.Output) / 2
}

// EstimateCost prices a provisional total-token estimate at EstimateRate.
func EstimateCost(totalTokens int64) float64 {
	return float64(totalTokens) * EstimateRate() / 1_000_000
}

// FormatCost renders a cost for display. Sub-cent amounts keep four decimal
// places so small conversations don't round to zero.
func FormatCost(amount float64) string {
	if amount != 0 && amount < 0.01 {
		return fmt.Sprintf("$%.4f", amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// FormatTokens renders a token count with thousands abbreviated.
func FormatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
