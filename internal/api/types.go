package api

// Wire types for the option-chain-indices response. Only the fields the
// collector records are mapped; NSE sends many more.

// optionChainResponse is the top-level NSE payload.
type optionChainResponse struct {
	Records  chainRecords  `json:"records"`
	Filtered chainFiltered `json:"filtered"`
}

// chainRecords carries the refresh timestamp for the whole chain.
type chainRecords struct {
	Timestamp string `json:"timestamp"`
}

// chainFiltered holds the strike rows for the current expiries.
type chainFiltered struct {
	Data []strikeRow `json:"data"`
}

// strikeRow is one strike's entry; either side may be absent.
type strikeRow struct {
	StrikePrice float64  `json:"strikePrice"`
	CE          *sideRow `json:"CE"`
	PE          *sideRow `json:"PE"`
}

// sideRow is one side's quote fields, NSE naming.
type sideRow struct {
	OpenInterest         float64 `json:"openInterest"`
	ChangeInOpenInterest float64 `json:"changeinOpenInterest"`
	PChangeInOI          float64 `json:"pchangeinOpenInterest"`
	TotalBuyQuantity     float64 `json:"totalBuyQuantity"`
	TotalSellQuantity    float64 `json:"totalSellQuantity"`
}
