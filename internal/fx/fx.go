// Package fx converts instrument currencies to USD for risk accounting.
//
// Rates are static approximations, not live quotes. Good enough for a
// simulated ledger; a known inaccuracy, kept deliberately.
package fx

// usdRates maps a currency code to its USD multiplier.
var usdRates = map[string]float64{
	"USD": 1.0,
	"HKD": 0.128,
	"CNY": 0.14,
}

// ToUSD converts an amount in the given currency to US dollars.
// Unknown currencies are treated as USD.
func ToUSD(amount float64, currency string) float64 {
	if rate, ok := usdRates[currency]; ok {
		return amount * rate
	}
	return amount
}

// Rate returns the USD multiplier for a currency, 1.0 when unknown.
func Rate(currency string) float64 {
	if rate, ok := usdRates[currency]; ok {
		return rate
	}
	return 1.0
}
