package erc1271

import "github.com/iov-one/walletsig/errors"

// erc1271 takes 1030-1039
var (
	// ErrContractCall is returned when the isValidSignature call cannot be
	// performed or its result cannot be decoded.
	ErrContractCall = errors.Register(1030, "contract call failed")
)
