package signature

import (
	"fmt"

	"github.com/iov-one/walletsig/errors"
	"github.com/iov-one/walletsig/topology"
)

// InvalidSignatureLeafError is returned when a signature part is rejected.
// Its cause is errors.ErrInvalidSignature.
type InvalidSignatureLeafError struct {
	Leaf *topology.UnrecoveredSignatureLeaf
}

func (e *InvalidSignatureLeafError) Error() string {
	if e.Leaf.Address != nil {
		return fmt.Sprintf("signature of %s rejected: %s", e.Leaf.Address.Hex(), errors.ErrInvalidSignature)
	}
	return fmt.Sprintf("signature rejected: %s", errors.ErrInvalidSignature)
}

// Cause returns errors.ErrInvalidSignature.
func (e *InvalidSignatureLeafError) Cause() error {
	return errors.ErrInvalidSignature
}

// AsInvalidSignatureLeaf returns the InvalidSignatureLeafError wrapped by
// err, if any.
func AsInvalidSignatureLeaf(err error) (*InvalidSignatureLeafError, bool) {
	for err != nil {
		if e, ok := err.(*InvalidSignatureLeafError); ok {
			return e, true
		}
		c, ok := err.(interface{ Cause() error })
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}
