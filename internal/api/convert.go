package api

import "github.com/kunnuv/niftyflow/internal/model"

// toOptionChain maps the NSE wire payload to the model type. Absent sides
// stay nil; zero-defaulting happens at merge time.
func (r *optionChainResponse) toOptionChain() *model.OptionChain {
	chain := &model.OptionChain{
		Timestamp: r.Records.Timestamp,
		Strikes:   make([]model.StrikeQuote, 0, len(r.Filtered.Data)),
	}

	for _, row := range r.Filtered.Data {
		chain.Strikes = append(chain.Strikes, model.StrikeQuote{
			Strike: row.StrikePrice,
			CE:     row.CE.toQuoteSide(),
			PE:     row.PE.toQuoteSide(),
		})
	}

	return chain
}

func (s *sideRow) toQuoteSide() *model.QuoteSide {
	if s == nil {
		return nil
	}
	return &model.QuoteSide{
		OpenInterest: s.OpenInterest,
		OIChange:     s.ChangeInOpenInterest,
		OIChangePct:  s.PChangeInOI,
		BuyQuantity:  s.TotalBuyQuantity,
		SellQuantity: s.TotalSellQuantity,
	}
}
