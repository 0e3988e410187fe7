package signature

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/walletsig/errors"
)

// Validator checks signatures of contract signers. Implementations must be
// safe for concurrent use, recovery validates independent subtrees in
// parallel.
type Validator interface {
	// IsValidSignature returns true if signer accepts signature for
	// subdigest. An error means the check could not be performed.
	IsValidSignature(ctx context.Context, signer common.Address, subdigest common.Hash, signature []byte) (bool, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, signer common.Address, subdigest common.Hash, signature []byte) (bool, error)

// IsValidSignature calls fn.
func (fn ValidatorFunc) IsValidSignature(ctx context.Context, signer common.Address, subdigest common.Hash, signature []byte) (bool, error) {
	return fn(ctx, signer, subdigest, signature)
}

// refuseValidator fails every call. It is used where reaching a dynamic
// signature means a bug.
var refuseValidator = ValidatorFunc(func(_ context.Context, signer common.Address, _ common.Hash, _ []byte) (bool, error) {
	return false, errors.Wrapf(errors.ErrHuman, "unexpected dynamic signature of %s", signer.Hex())
})
