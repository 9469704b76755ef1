// Package debug provides a pretty-printer for ad hoc tracing during
// development, wrapping k0kubun/pp the way the teacher's util package
// wraps its own debug helpers.
package debug

import (
	"github.com/k0kubun/pp/v3"
)

// Dump renders v as a multi-line, struct-aware string, suitable for
// logging at debug level or printing from a failing test.
func Dump(v interface{}) string {
	return pp.Sprint(v)
}
