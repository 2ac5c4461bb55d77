package encoder

import (
	"math"
	"strconv"
	"strings"
)

const (
	sqlNow        = "NOW()"
	sqlHourBucket = "UNIX_TIMESTAMP() - MOD(UNIX_TIMESTAMP(), 3600)"
)

// tuple builds one parenthesized value list
type tuple struct {
	b strings.Builder
	n int
}

func newTuple() *tuple {
	t := &tuple{}
	t.b.Grow(64)
	t.b.WriteByte('(')
	return t
}

func (t *tuple) sep() {
	if t.n > 0 {
		t.b.WriteByte(',')
	}
	t.n++
}

func (t *tuple) integer(v int32) *tuple {
	t.sep()
	t.b.WriteString(strconv.FormatInt(int64(v), 10))
	return t
}

func (t *tuple) boolean(v bool) *tuple {
	if v {
		return t.integer(1)
	}
	return t.integer(0)
}

// finite reports whether v has a decimal literal form; NaN and Inf do not
func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// decimal renders v with six decimals, matching printf %f
func (t *tuple) decimal(v float32) *tuple {
	t.sep()
	t.b.WriteString(strconv.FormatFloat(float64(v), 'f', 6, 32))
	return t
}

func (t *tuple) text(v string) *tuple {
	t.sep()
	t.b.Grow(2*len(v) + 2)
	t.b.WriteByte('\'')
	writeEscaped(&t.b, v)
	t.b.WriteByte('\'')
	return t
}

// expr writes a raw SQL expression such as NOW()
func (t *tuple) expr(sql string) *tuple {
	t.sep()
	t.b.WriteString(sql)
	return t
}

func (t *tuple) finish() string {
	t.b.WriteByte(')')
	return t.b.String()
}
