package quotation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/freightdesk/backoffice/internal/domain/models"
)

// roeTable maps (home country, charge currency) to the default rate of
// exchange applied when a charge's currency changes. Rates are house rates,
// not live market quotes; a rate the user has typed over is never replaced.
var roeTable = map[string]map[string]decimal.Decimal{
	"IN": {
		"USD": decimal.RequireFromString("88.75"),
		"EUR": decimal.RequireFromString("96.40"),
		"GBP": decimal.RequireFromString("112.30"),
		"AED": decimal.RequireFromString("24.16"),
		"SGD": decimal.RequireFromString("65.80"),
		"JPY": decimal.RequireFromString("0.59"),
	},
	"AE": {
		"USD": decimal.RequireFromString("3.67"),
		"EUR": decimal.RequireFromString("3.99"),
		"INR": decimal.RequireFromString("0.041"),
	},
}

// homeCurrencies maps a home country to its reporting currency. A charge in
// the reporting currency always carries ROE 1.
var homeCurrencies = map[string]string{
	"IN": "INR",
	"AE": "AED",
	"SG": "SGD",
	"GB": "GBP",
	"US": "USD",
}

// LookupROE resolves the default exchange rate for a currency under the
// given home country. The second return reports whether a rate is known.
func LookupROE(homeCountry, currency string) (decimal.Decimal, bool) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return decimal.Zero, false
	}
	if homeCurrencies[homeCountry] == currency {
		return decimal.NewFromInt(1), true
	}
	rates, ok := roeTable[homeCountry]
	if !ok {
		return decimal.Zero, false
	}
	rate, ok := rates[currency]
	return rate, ok
}

// applyCurrencyChange fires only on a currency-change event: it sets the
// new currency and auto-fills the ROE from the house table. It is never
// called from the recompute path, so a manually typed rate survives.
func applyCurrencyChange(line *models.ChargeLine, homeCountry, newCurrency string) {
	line.Currency = newCurrency
	if rate, ok := LookupROE(homeCountry, newCurrency); ok {
		line.ROE = rate
	}
}

// recomputeLine refreshes both derived totals of one line and reports
// whether anything was actually written. Equal values skip the write, which
// keeps repeated recomputes drift-free.
func recomputeLine(line *models.ChargeLine) bool {
	totalSell := line.Quantity.Mul(line.SellPerUnit).Mul(line.ROE).StringFixed(2)
	totalCost := line.Quantity.Mul(line.CostPerUnit).Mul(line.ROE).StringFixed(2)

	if line.TotalSell == totalSell && line.TotalCost == totalCost {
		return false
	}
	line.TotalSell = totalSell
	line.TotalCost = totalCost
	return true
}

// RecomputeCharges refreshes the derived totals of every line, reporting
// whether any line changed.
func RecomputeCharges(lines []models.ChargeLine) bool {
	changed := false
	for i := range lines {
		if recomputeLine(&lines[i]) {
			changed = true
		}
	}
	return changed
}

// Totals computes the aggregate figures over a charge list. Aggregates are
// the sum of the rounded line totals, matching what the lines display.
func Totals(lines []models.ChargeLine) models.QuotationTotals {
	netSell := decimal.Zero
	netCost := decimal.Zero
	for _, line := range lines {
		netSell = netSell.Add(line.Quantity.Mul(line.SellPerUnit).Mul(line.ROE).Round(2))
		netCost = netCost.Add(line.Quantity.Mul(line.CostPerUnit).Mul(line.ROE).Round(2))
	}
	return models.QuotationTotals{
		NetSell: netSell.StringFixed(2),
		NetCost: netCost.StringFixed(2),
		Profit:  netSell.Sub(netCost).StringFixed(2),
	}
}
