// Package query assembles the parameterized SQL used to read the wide-format
// fact tables. Values are always bound as arguments, never interpolated.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"whomortality/internal/mortality"
)

// Dialect selects the placeholder syntax of the target database.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// Builder accumulates SQL text and its bound arguments in order.
type Builder struct {
	dialect Dialect
	sb      strings.Builder
	args    []any
}

// New creates an empty builder for the dialect.
func New(d Dialect) *Builder {
	return &Builder{dialect: d}
}

// Write appends raw SQL text. Callers must never pass user input here.
func (b *Builder) Write(sql string) *Builder {
	b.sb.WriteString(sql)
	return b
}

// Writef appends formatted SQL text built from trusted fragments.
func (b *Builder) Writef(format string, a ...any) *Builder {
	fmt.Fprintf(&b.sb, format, a...)
	return b
}

// Arg binds v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.placeholder(len(b.args))
}

// In appends `expr IN (…)` with one bound placeholder per value.
// An empty value list renders a predicate that matches nothing.
func (b *Builder) In(expr string, values []string) *Builder {
	if len(values) == 0 {
		b.sb.WriteString("1 = 0")
		return b
	}
	b.sb.WriteString(expr)
	b.sb.WriteString(" IN (")
	for i, v := range values {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.sb.WriteString(b.Arg(v))
	}
	b.sb.WriteString(")")
	return b
}

// SQL returns the accumulated statement.
func (b *Builder) SQL() string {
	return b.sb.String()
}

// Args returns the bound arguments in placeholder order.
func (b *Builder) Args() []any {
	return b.args
}

// SumPartitions renders the per-row sum of the numbered sub-columns
// `<prefix>1 .. <prefix>N`, N being mortality.PartitionCount, treating NULL
// as zero. Wrapping it in SUM()
// yields the two-level sum used by every grouped read.
func SumPartitions(prefix string) string {
	var sb strings.Builder
	for i := 1; i <= mortality.PartitionCount; i++ {
		if i > 1 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "COALESCE(%s%d, 0)", prefix, i)
	}
	return sb.String()
}

// SumPartitionsTotal renders CAST(SUM(<row sum>) AS BIGINT) so both
// dialects scan the aggregate into an int64.
func SumPartitionsTotal(prefix string) string {
	return "CAST(SUM(" + SumPartitions(prefix) + ") AS BIGINT)"
}

// Pair is one (list, cause) value pair of a composite predicate.
type Pair struct {
	First  string
	Second string
}

// AnyPair appends `((a = ? AND b = ?) OR …)` for the given pairs.
// An empty pair list renders a predicate that matches nothing.
func (b *Builder) AnyPair(exprA, exprB string, pairs []Pair) *Builder {
	if len(pairs) == 0 {
		b.sb.WriteString("1 = 0")
		return b
	}
	b.sb.WriteString("(")
	for i, p := range pairs {
		if i > 0 {
			b.sb.WriteString(" OR ")
		}
		fmt.Fprintf(&b.sb, "(%s = %s AND %s = %s)", exprA, b.Arg(p.First), exprB, b.Arg(p.Second))
	}
	b.sb.WriteString(")")
	return b
}
