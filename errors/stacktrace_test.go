package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFormatError() error {
	return ErrFormat.Newf("unknown part type %d", 9)
}

func TestFormatVerbs(t *testing.T) {
	const src = "errors/stacktrace_test.go"

	cases := map[string]struct {
		err error
		msg string
	}{
		"root error": {
			err: ErrFormat.New("short read"),
			msg: "short read: malformed encoding",
		},
		"created in a helper": {
			err: newFormatError(),
			msg: "unknown part type 9: malformed encoding",
		},
		"stack of pkg/errors is reused": {
			err: Wrap(errors.New("eof"), "read"),
			msg: "read: eof",
		},
		"outer wrap keeps inner stack": {
			err: Wrapf(Wrap(fmt.Errorf("eof"), "read"), "part %d", 2),
			msg: "part 2: read: eof",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			require.NotNil(t, stackTrace(tc.err))

			assert.Equal(t, tc.msg, fmt.Sprintf("%s", tc.err))

			short := fmt.Sprintf("%v", tc.err)
			assert.True(t, strings.HasPrefix(short, tc.msg+" ["+src+":"), short)
			assert.NotContains(t, short, "\n")

			full := fmt.Sprintf("%+v", tc.err)
			assert.Contains(t, full, src)
			assert.True(t, strings.HasSuffix(full, tc.msg), full)
			assert.NotContains(t, full, "errors.Wrap\n")
		})
	}
}
