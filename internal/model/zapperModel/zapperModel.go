package zapperModel

import "github.com/shopspring/decimal"

// Raw GraphQL response shapes for the portfolioV2 queries. Only the
// fields the sync pipeline consumes are declared.

type RawTokenBalances struct {
	Data struct {
		PortfolioV2 struct {
			TokenBalances struct {
				ByToken struct {
					Edges []struct {
						Node TokenNode `json:"node"`
					} `json:"edges"`
				} `json:"byToken"`
			} `json:"tokenBalances"`
		} `json:"portfolioV2"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

type TokenNode struct {
	Symbol       string          `json:"symbol"`
	TokenAddress string          `json:"tokenAddress"`
	Balance      decimal.Decimal `json:"balance"`
	Price        decimal.Decimal `json:"price"`
	Network      struct {
		Name string `json:"name"`
	} `json:"network"`
}

type RawAppBalances struct {
	Data struct {
		PortfolioV2 struct {
			AppBalances struct {
				ByApp struct {
					Edges []struct {
						Node AppNode `json:"node"`
					} `json:"edges"`
				} `json:"byApp"`
			} `json:"appBalances"`
		} `json:"portfolioV2"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

type AppNode struct {
	Network struct {
		Name string `json:"name"`
	} `json:"network"`
	PositionBalances struct {
		Edges []struct {
			Node PositionNode `json:"node"`
		} `json:"edges"`
	} `json:"positionBalances"`
}

// PositionNode is the tagged union of app-token and contract-position
// balances. Type discriminates; contract positions carry nested tokens.
type PositionNode struct {
	Type    string          `json:"type"`
	Address string          `json:"address"`
	Symbol  string          `json:"symbol"`
	Balance decimal.Decimal `json:"balance"`
	Price   decimal.Decimal `json:"price"`
	Tokens  []struct {
		MetaType string `json:"metaType"`
		Token    struct {
			Address string          `json:"address"`
			Symbol  string          `json:"symbol"`
			Balance decimal.Decimal `json:"balance"`
			Price   decimal.Decimal `json:"price"`
		} `json:"token"`
	} `json:"tokens"`
}

const (
	PositionTypeAppToken         = "app-token"
	PositionTypeContractPosition = "contract-position"
)

type GraphQLError struct {
	Message string `json:"message"`
}
