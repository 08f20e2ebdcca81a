package yahooModel

import "github.com/shopspring/decimal"

type RawQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol             string          `json:"symbol"`
			RegularMarketPrice decimal.Decimal `json:"regularMarketPrice"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}
