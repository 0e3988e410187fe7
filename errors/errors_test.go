package errors

import (
	stdlib "errors"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs(t *testing.T) {
	plain := stdlib.New("plain")

	cases := map[string]struct {
		root *Error
		err  error
		want bool
	}{
		"root matches itself": {
			root: ErrFormat,
			err:  ErrFormat,
			want: true,
		},
		"different roots": {
			root: ErrFormat,
			err:  ErrOverflow,
			want: false,
		},
		"decoder style nesting": {
			root: ErrFormat,
			err:  Wrap(Wrapf(ErrFormat.New("truncated length prefix"), "part %d", 4), "decode tree"),
			want: true,
		},
		"wrapped by pkg/errors": {
			root: ErrEmpty,
			err:  errors.Wrap(ErrEmpty.New("no segments"), "chain"),
			want: true,
		},
		"wrapped by fmt.Errorf": {
			root: ErrCheckpoint,
			err:  fmt.Errorf("segment 2: %w", ErrCheckpoint.New("not decreasing")),
			want: true,
		},
		"custom causer": {
			root: ErrInvalidSignature,
			err:  Wrap(leafError{}, "recover"),
			want: true,
		},
		"plain error": {
			root: ErrInput,
			err:  Wrap(plain, "parse"),
			want: false,
		},
		"nil root and nil error": {
			root: nil,
			err:  nil,
			want: true,
		},
		"nil root and typed nil": {
			root: nil,
			err:  (*leafError)(nil),
			want: true,
		},
		"nil root and an error": {
			root: nil,
			err:  ErrFormat,
			want: false,
		},
		"root and nil error": {
			root: ErrFormat,
			err:  nil,
			want: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.root.Is(tc.err))
		})
	}
}

// leafError mimics an error type that reports a root through Cause.
type leafError struct{}

func (leafError) Error() string { return "leaf rejected" }

func (leafError) Cause() error { return ErrInvalidSignature }

func TestWrapKeepsRootForPkgErrors(t *testing.T) {
	err := Wrap(Wrap(ErrNotFound, "signer"), "subdigest")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	assert.Equal(t, "subdigest: signer: not found", err.Error())
}

func TestStdlibInterop(t *testing.T) {
	err := Wrapf(leafError{}, "part %d", 1)

	var leaf leafError
	require.True(t, stdlib.As(err, &leaf))
	assert.True(t, stdlib.Is(err, leafError{}))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestWithType(t *testing.T) {
	err := WithType(ErrInput, struct{ X int }{})
	assert.True(t, ErrInput.Is(err))
	assert.Equal(t, "struct { X int }: invalid input", err.Error())
}

func TestRegister(t *testing.T) {
	assert.Equal(t, uint32(6), ErrFormat.Code())
	assert.Panics(t, func() { Register(ErrFormat.Code(), "duplicate") })
	assert.Panics(t, func() { Register(1, "reserved") })
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		panic("index out of range")
	}
	err := run()
	require.Error(t, err)
	assert.True(t, ErrPanic.Is(err))
	assert.Equal(t, "index out of range: panic", err.Error())
}
