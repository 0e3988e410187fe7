package signature

import (
	"bytes"

	"github.com/iov-one/walletsig/errors"
)

// Chain joins encoded signatures into a chained signature. main is signed
// by the newest configuration, every following segment by the
// configuration preceding the one of the segment before it.
func Chain(main []byte, suffix ...[]byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(Chained))
	for i, seg := range append([][]byte{main}, suffix...) {
		if len(seg) == 0 {
			return nil, errors.Wrapf(errors.ErrEmpty, "chain segment %d", i)
		}
		if Type(seg[0]) == Chained {
			return nil, errors.Wrapf(errors.ErrInput, "chain segment %d: chained signature cannot be nested", i)
		}
		if err := writePrefixed(&buf, seg); err != nil {
			return nil, errors.Wrapf(err, "chain segment %d", i)
		}
	}
	return buf.Bytes(), nil
}
