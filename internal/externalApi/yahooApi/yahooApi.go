package yahooApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/internal/externalApi"
	"github.com/avolkov/wealth_tracker_bot/internal/model/yahooModel"
	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type YahooApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *YahooApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.YahooApi.Url)
	return &YahooApi{client: client}
}

// GetQuote returns the current market price for a listed ticker.
// Returns externalApi.ErrNotFound when the ticker is unknown upstream.
func (a *YahooApi) GetQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v7/finance/quote"
	params := map[string]string{
		"symbols": ticker,
		"fields":  "regularMarketPrice",
	}

	slog.Debug("start YahooApi.GetQuote request", slog.String("rqID", rqID), slog.String("ticker", ticker))

	resp, err := a.client.R().
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)
	if err != nil {
		slog.Error("error while dialing YahooApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, err
	}

	raw := yahooModel.RawQuoteResponse{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into yahooModel.RawQuoteResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, err
	}

	if raw.QuoteResponse.Error != nil {
		err = fmt.Errorf("yahoo quote error: %s", raw.QuoteResponse.Error.Description)
		slog.Error("YahooApi.GetQuote returned error", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return decimal.Decimal{}, err
	}

	if len(raw.QuoteResponse.Result) == 0 {
		slog.Warn("ticker not found in YahooApi", slog.String("rqID", rqID), slog.String("ticker", ticker))
		return decimal.Decimal{}, externalApi.ErrNotFound
	}

	price := raw.QuoteResponse.Result[0].RegularMarketPrice

	slog.Debug("YahooApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("ticker", ticker), slog.String("price", price.String()))

	return price, nil
}
