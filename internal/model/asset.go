package model

// Price source tags stored on assets and stamped onto price_history rows.
const (
	PriceSourceZapper = "zapper"
	PriceSourceYahoo  = "yahoo"
	PriceSourceManual = "manual"
)

type Asset struct {
	ID            int64
	Symbol        string
	Name          string
	AssetType     string
	PriceSource   string
	ApiIdentifier string
}
