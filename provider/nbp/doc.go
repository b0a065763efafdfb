// Package nbp provides a client and an ingest provider for the
// National Bank of Poland (NBP) exchange rates API.
//
// # API
//
// Source: "NBP"
// URL: https://api.nbp.pl/api
//
// Only the mid rate tables are supported:
//
//	A: the most traded currencies, published every business day
//	B: the remaining currencies, published weekly (Wednesdays)
//
// Every rate is quoted in PLN (1 unit of the currency = mid PLN).
//
// # Queries
//
//	/exchangerates/rates/{table}/{code}/                latest rate
//	/exchangerates/rates/{table}/{code}/{date}/         single date
//	/exchangerates/rates/{table}/{code}/{from}/{to}/    date range (<= 93 days)
//	/exchangerates/tables/{table}/                      latest full table
//
// Inputs are validated before any request is sent. Range queries
// longer than 93 days, or starting before 2002-01-02, are rejected locally.
//
// # Errors
//
// The NBP API answers 404 both for unknown codes and for ranges without
// publications. A 404 on a latest-rate query is reported as
// ErrCurrencyNotFound, on a dated query as ErrNoData. Every other
// non-2xx status, and any malformed payload, is ErrInvalidResponse.
// Status errors are *APIError values carrying the response message.
//
// The client does not retry, cache or throttle requests.
package nbp
