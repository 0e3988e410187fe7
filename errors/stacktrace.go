package errors

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// stackTracer is implemented by the pkg/errors wrappers that carry a stack.
type stackTracer interface {
	error
	StackTrace() errors.StackTrace
}

// stackTrace returns the first stack trace found while unwrapping given
// error or nil if none of the layers carries one.
func stackTrace(err error) errors.StackTrace {
	for err != nil {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}

// internalFuncs are the functions of this package creating errors. They are
// never the place an error should be reported from.
var internalFuncs = []string{
	"walletsig/errors.Wrap",
	"walletsig/errors.Wrapf",
	"walletsig/errors.(*Error).New",
	"walletsig/errors.(*Error).Newf",
	"walletsig/errors.WithType",
	"walletsig/errors.Recover",
	"runtime.",
}

// trimInternal removes frames of this package and of the runtime from
// both ends of the stack.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	for len(st) > 0 && matchesFunc(st[0], internalFuncs...) {
		st = st[1:]
	}
	for l := len(st) - 1; l > 0 && matchesFunc(st[l], "runtime."); l-- {
		st = st[:l]
	}
	return st
}

func matchesFunc(f errors.Frame, names ...string) bool {
	name := funcName(f)
	for _, n := range names {
		if strings.HasSuffix(name, n) || (strings.HasSuffix(n, ".") && strings.HasPrefix(name, n)) {
			return true
		}
	}
	return false
}

func funcName(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

func fileLine(f errors.Frame) (string, int) {
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

func writeSimpleFrame(s io.Writer, f errors.Frame) {
	file, line := fileLine(f)
	// Keep only the last two path elements, the package directory and
	// the file name.
	if chunks := strings.Split(file, "/"); len(chunks) > 2 {
		file = strings.Join(chunks[len(chunks)-2:], "/")
	}
	fmt.Fprintf(s, " [%s:%d]", file, line)
}

// Format prints the stack recorded by the innermost Wrap. See the package
// documentation for the supported verbs.
func (e *wrappedError) Format(s fmt.State, verb rune) {
	st := trimInternal(stackTrace(e))
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v\n", st)
	}
	io.WriteString(s, e.Error())
	if verb == 'v' && !s.Flag('+') && len(st) > 0 {
		writeSimpleFrame(s, st[0])
	}
}
