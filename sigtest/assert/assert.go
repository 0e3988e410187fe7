/*
Package assert contains small assertions used by the codec tests. Errors
are classified through the errors package and encodings are printed in hex
when they differ.
*/
package assert

import (
	"bytes"
	"reflect"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Tester is the part of testing.TB used by this package.
type Tester interface {
	Helper()
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil or a typed nil. Errors are printed with %+v
// so that their stack is visible.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if value == nil {
		return
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return
		}
	}
	t.Fatalf("unexpected non nil value: %+v", value)
}

// Equal fails unless want and got are deeply equal. Decoded trees compare
// their leaves, not the pointers to them.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	t.Fatalf("values differ\nwant %T %+v\n got %T %+v", want, want, got, got)
}

// EqualBytes compares two encodings and prints both in hex on mismatch.
func EqualBytes(t Tester, want, got []byte) {
	t.Helper()
	if bytes.Equal(want, got) {
		return
	}
	t.Fatalf("encoding mismatch\nwant %s\n got %s", hexutil.Encode(want), hexutil.Encode(got))
}

// IsErr fails unless got is classified as want. A want that implements
// Is(error) bool, like the registered root errors, is asked directly.
// Anything else must be identical to got.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if kind, ok := want.(interface{ Is(error) bool }); ok {
		if kind.Is(got) {
			return
		}
	} else if want == got {
		return
	}
	t.Fatalf("want %v error, got %+v", want, got)
}
