package recfmt

import (
	"io"

	"github.com/go-recdb/recdb/internal/debug"
)

// Dump renders a Database tree for debugging, mirroring the teacher
// parser's pp.Println(root) trace call (database/mysql/parser.go).
func Dump(db *Database) string {
	return debug.Dump(db)
}

// ParseTrace parses r exactly as Parse does, additionally writing a
// pp-rendered dump of the resulting Database to trace when parsing
// succeeds and trace is non-nil. This is the verbose-mode tracing path
// DESIGN.md describes: callers that want to see the parsed tree (e.g. a
// CLI's -v flag, or a failing test) pass a trace writer instead of
// threading Dump calls through their own code.
func ParseTrace(r io.Reader, source string, trace io.Writer) (*Database, error) {
	db, err := Parse(r, source)
	if err != nil {
		return nil, err
	}
	if trace != nil {
		io.WriteString(trace, Dump(db)+"\n")
	}
	return db, nil
}
