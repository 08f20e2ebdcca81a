package model

type action int

const (
	DefaultAction action = iota
	ExpectingAssetSymbol
)

type Session struct {
	Action action
}
