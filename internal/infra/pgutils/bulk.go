package pgutils

import (
	"strconv"
	"strings"
)

// MaxBulkParams keeps multi-row statements well under Postgres' 65535 bind limit.
const MaxBulkParams = 30000

// ValuesList renders "($1::T1,$2::T2),($3::T1,$4::T2)…" for rows rows, one
// column per cast. An empty cast leaves the placeholder untyped. Only
// placeholders are generated; values are always bound.
func ValuesList(rows int, casts ...string) string {
	var b strings.Builder

	n := 1
	for r := range rows {
		if r > 0 {
			b.WriteByte(',')
		}

		b.WriteByte('(')

		for c, cast := range casts {
			if c > 0 {
				b.WriteByte(',')
			}

			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			n++

			if cast != "" {
				b.WriteString("::")
				b.WriteString(cast)
			}
		}

		b.WriteByte(')')
	}

	return b.String()
}

// ChunkRows returns how many rows of cols parameters fit in one statement.
func ChunkRows(cols int) int {
	if cols <= 0 {
		return 1
	}

	return MaxBulkParams / cols
}
