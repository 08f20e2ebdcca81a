package service

import "errors"

var (
	ErrUnknownAsset       = errors.New("error unknown asset")
	ErrUnknownCustodian   = errors.New("error unknown custodian")
	ErrInvalidTransaction = errors.New("error invalid transaction")
)
