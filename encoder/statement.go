package encoder

import "strings"

// BuildInsert joins value tuples for one table into a single multi-row INSERT.
// It returns false when there are no tuples, since "INSERT ... VALUES ;" is invalid.
func BuildInsert(table string, tuples []string) (string, bool) {
	if len(tuples) == 0 {
		return "", false
	}

	ident := quoteIdent(table)
	size := len("INSERT INTO  VALUES ;") + len(ident) + len(tuples) - 1
	for _, t := range tuples {
		size += len(t)
	}

	var b strings.Builder
	b.Grow(size)
	b.WriteString("INSERT INTO ")
	b.WriteString(ident)
	b.WriteString(" VALUES ")
	for i, t := range tuples {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t)
	}
	b.WriteByte(';')
	return b.String(), true
}
