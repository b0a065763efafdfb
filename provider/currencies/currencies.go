// Package currencies lists the codes published in NBP table A
package currencies

import "github.com/sig-0/nbprates/storage/types"

var (
	PLN types.Currency = "PLN"
	USD types.Currency = "USD"
	EUR types.Currency = "EUR"
	CHF types.Currency = "CHF"
	GBP types.Currency = "GBP"
	JPY types.Currency = "JPY"
	CZK types.Currency = "CZK"
	NOK types.Currency = "NOK"
	SEK types.Currency = "SEK"
	DKK types.Currency = "DKK"
	HUF types.Currency = "HUF"
	CAD types.Currency = "CAD"
	AUD types.Currency = "AUD"
	CNY types.Currency = "CNY"
	UAH types.Currency = "UAH"
)

// Home is the currency every NBP rate is quoted in
var Home = PLN

// IsHome returns true if the given code is the NBP quote currency
func IsHome(c types.Currency) bool {
	return c == Home
}
