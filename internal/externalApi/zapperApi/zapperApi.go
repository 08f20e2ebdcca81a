package zapperApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avolkov/wealth_tracker_bot/config"
	"github.com/avolkov/wealth_tracker_bot/internal/model"
	"github.com/avolkov/wealth_tracker_bot/internal/model/zapperModel"
	"github.com/avolkov/wealth_tracker_bot/utils"
	"github.com/go-resty/resty/v2"
)

const tokenBalancesQuery = `
	query TokenBalances($addresses: [Address!]!, $first: Int, $chainIds: [Int!]) {
		portfolioV2(addresses: $addresses, chainIds: $chainIds) {
			tokenBalances {
				byToken(first: $first) {
					edges { node { symbol tokenAddress balance price network { name } } }
				}
			}
		}
	}`

const appBalancesQuery = `
	query AppBalances($addresses: [Address!]!, $first: Int) {
		portfolioV2(addresses: $addresses) {
			appBalances {
				byApp(first: $first) {
					edges { node {
						network { name }
						positionBalances(first: 10) {
							edges { node {
								... on AppTokenPositionBalance { type address symbol balance price }
								... on ContractPositionBalance {
									type address
									tokens { metaType token { address symbol balance price } }
								}
							} }
						}
					} }
				}
			}
		}
	}`

type ZapperApi struct {
	client *resty.Client
	cfg    *config.Config
}

func New(cfg *config.Config) *ZapperApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.ZapperApi.Url).
		SetHeader("x-zapper-api-key", cfg.API.ZapperApi.ApiKey)
	return &ZapperApi{client: client, cfg: cfg}
}

// GetTokenBalances fetches plain token balances for the wallet, optionally
// restricted to the given chain IDs, flattened to BalanceItem.
func (a *ZapperApi) GetTokenBalances(ctx context.Context, address string, chainIDs []int) ([]model.BalanceItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	variables := map[string]any{
		"addresses": []string{address},
		"first":     a.cfg.API.ZapperApi.TokenPageSize,
	}
	if len(chainIDs) > 0 {
		variables["chainIds"] = chainIDs
	}

	slog.Debug("start ZapperApi.GetTokenBalances request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"query": tokenBalancesQuery, "variables": variables}).
		Post("")
	if err != nil {
		slog.Error("error while dialing ZapperApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	raw := zapperModel.RawTokenBalances{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into zapperModel.RawTokenBalances", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if len(raw.Errors) > 0 {
		err = fmt.Errorf("zapper graphql error: %s", raw.Errors[0].Message)
		slog.Error("ZapperApi.GetTokenBalances returned errors", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	items := make([]model.BalanceItem, 0, len(raw.Data.PortfolioV2.TokenBalances.ByToken.Edges))
	for _, edge := range raw.Data.PortfolioV2.TokenBalances.ByToken.Edges {
		items = append(items, model.BalanceItem{
			Address: edge.Node.TokenAddress,
			Symbol:  edge.Node.Symbol,
			Balance: edge.Node.Balance,
			Price:   edge.Node.Price,
			Chain:   edge.Node.Network.Name,
		})
	}

	slog.Debug("ZapperApi.GetTokenBalances request complete", slog.String("rqID", rqID), slog.Int("items", len(items)))

	return items, nil
}

// GetAppBalances fetches DeFi app positions for the wallet. App tokens and
// the nested tokens of contract positions are flattened to the same
// BalanceItem shape the resolver consumes.
func (a *ZapperApi) GetAppBalances(ctx context.Context, address string) ([]model.BalanceItem, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	variables := map[string]any{
		"addresses": []string{address},
		"first":     a.cfg.API.ZapperApi.AppPageSize,
	}

	slog.Debug("start ZapperApi.GetAppBalances request", slog.String("rqID", rqID))

	resp, err := a.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"query": appBalancesQuery, "variables": variables}).
		Post("")
	if err != nil {
		slog.Error("error while dialing ZapperApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	raw := zapperModel.RawAppBalances{}
	err = json.Unmarshal(resp.Body(), &raw)
	if err != nil {
		slog.Error("can't unmarshall response into zapperModel.RawAppBalances", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if len(raw.Errors) > 0 {
		err = fmt.Errorf("zapper graphql error: %s", raw.Errors[0].Message)
		slog.Error("ZapperApi.GetAppBalances returned errors", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	items := a.flattenAppBalances(raw)

	slog.Debug("ZapperApi.GetAppBalances request complete", slog.String("rqID", rqID), slog.Int("items", len(items)))

	return items, nil
}

func (a *ZapperApi) flattenAppBalances(raw zapperModel.RawAppBalances) []model.BalanceItem {
	items := make([]model.BalanceItem, 0)
	for _, appEdge := range raw.Data.PortfolioV2.AppBalances.ByApp.Edges {
		chain := appEdge.Node.Network.Name
		for _, posEdge := range appEdge.Node.PositionBalances.Edges {
			pos := posEdge.Node
			switch pos.Type {
			case zapperModel.PositionTypeAppToken:
				items = append(items, model.BalanceItem{
					Address: pos.Address,
					Symbol:  pos.Symbol,
					Balance: pos.Balance,
					Price:   pos.Price,
					Chain:   chain,
				})
			case zapperModel.PositionTypeContractPosition:
				for _, nested := range pos.Tokens {
					items = append(items, model.BalanceItem{
						Address: nested.Token.Address,
						Symbol:  nested.Token.Symbol,
						Balance: nested.Token.Balance,
						Price:   nested.Token.Price,
						Chain:   chain,
					})
				}
			}
		}
	}
	return items
}
