package executor

import "strconv"

// Kind tags what a Result holds.
type Kind int

const (
	// KindNone means no value: an empty result set, a NULL, or DDL.
	KindNone Kind = iota
	// KindScalar is the first column of the first row.
	KindScalar
	// KindRowCount is the number of rows an update affected.
	KindRowCount
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRowCount:
		return "row_count"
	default:
		return "none"
	}
}

// Result is the normalized outcome of one statement.
type Result struct {
	Kind  Kind
	Value string
}

// None returns the empty result.
func None() Result { return Result{Kind: KindNone} }

// Scalar returns a single-value result.
func Scalar(v string) Result { return Result{Kind: KindScalar, Value: v} }

// RowCount returns an affected-rows result.
func RowCount(n int64) Result {
	return Result{Kind: KindRowCount, Value: strconv.FormatInt(n, 10)}
}

// Text collapses the result to an optional string.
func (r Result) Text() (string, bool) {
	if r.Kind == KindNone {
		return "", false
	}
	return r.Value, true
}

// IsNone reports whether the result carries no value.
func (r Result) IsNone() bool {
	return r.Kind == KindNone
}
