// Package errors provides structured, coded errors for isodom.
//
// Every failure the driver reports carries a code that maps to a registered
// template: a short message, a longer explanation and a category. Errors are
// returned to the caller or delivered on the stream that produced them; the
// driver never panics on them.
//
// # Error Codes
//
//   - E100: empty isolation scope identifier
//   - E101: invalid virtual tree stream
//   - E102: invalid selector
//   - E103: stream subscriber panicked during event delivery
//   - E104: driver disposed
//   - E105: event target not attached to the render root
//   - E106: invalid configuration
//   - E107: DOM source not created by a driver
//
// # Usage
//
//	err := errors.New("E102").
//	    WithDetail(`selector "div[" does not parse`).
//	    Wrap(parseErr)
//
//	if errors.HasCode(err, "E102") { ... }
//	fmt.Println(err.Format())
package errors
