package sqlfixture

import "github.com/hlop3z/sqlfixture/internal/executor"

// Result is the normalized outcome of one statement: nothing, a scalar
// (first column of the first row) or an affected row count.
type Result = executor.Result

// Kind tags what a Result holds.
type Kind = executor.Kind

// Result kinds.
const (
	KindNone     = executor.KindNone
	KindScalar   = executor.KindScalar
	KindRowCount = executor.KindRowCount
)
