package model

type Custodian struct {
	ID            int64
	Name          string
	Type          string
	WalletAddress string
}
