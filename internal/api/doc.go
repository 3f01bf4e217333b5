// Package api provides the NSE option-chain client.
//
// Endpoint:
//   - https://www.nseindia.com/api/option-chain-indices?symbol=NIFTY
//
// NSE fronts the endpoint with bot protection, so requests carry a browser
// header set plus an externally provisioned session cookie. Session renewal
// is out of scope here; a stale cookie surfaces as an APIError.
package api
