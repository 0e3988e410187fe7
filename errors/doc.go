/*
Package errors declares the root errors returned by the wallet signature
codec and the helpers to wrap them.

Each failure is created from one of the registered roots, either with
ErrXyz.New / ErrXyz.Newf or by wrapping an error coming from a lower layer
with Wrap / Wrapf. The root can be tested with ErrXyz.Is(err) regardless of
the number of wrapping layers. New packages declare their own roots with
Register and a code that is not used yet.

The first wrap records the call stack. Do not create errors in package level
variables with New, as the recorded stack would point to program
initialisation.

Formatting verbs:

	%s   message only
	%v   message followed by [dir/file.go:line] of the creation point
	%+v  full stack trace followed by the message
*/
package errors
