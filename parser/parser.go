package parser

import (
	"regexp"
	"strings"
)

// QueryType represents the type of SQL statement
type QueryType int

const (
	QueryUnknown QueryType = iota
	QuerySelect
	QueryInsert
	QueryReplace
	QueryUpdate
	QueryDelete
)

// String returns the lower-case label used in metrics
func (t QueryType) String() string {
	switch t {
	case QuerySelect:
		return "select"
	case QueryInsert:
		return "insert"
	case QueryReplace:
		return "replace"
	case QueryUpdate:
		return "update"
	case QueryDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ParsedQuery contains extracted information from a SQL statement
type ParsedQuery struct {
	Type  QueryType
	DB    string // Database name from FQN
	Table string // Target table of a write
}

var (
	// Match a leading comment block, e.g. /* file:zone.cpp line:42 */
	commentRegex = regexp.MustCompile(`^\s*(/\*.*?\*/\s*)+`)
	// Match statement type keyword at the start of the statement
	queryTypeRegex = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT|REPLACE|UPDATE|DELETE)\b`)
	// Match the write target: INSERT [IGNORE] INTO t, REPLACE INTO t, UPDATE t, DELETE FROM t
	targetRegex = regexp.MustCompile("(?i)^\\s*(?:INSERT(?:\\s+IGNORE)?\\s+INTO|REPLACE(?:\\s+INTO)?|UPDATE(?:\\s+IGNORE)?|DELETE\\s+FROM)\\s+" +
		"(?:[`\"]?([a-zA-Z0-9_$]+)[`\"]?\\s*\\.\\s*)?[`\"]?([a-zA-Z0-9_$]+)[`\"]?")
)

// Parse extracts metadata from a SQL statement
func Parse(query string) *ParsedQuery {
	p := &ParsedQuery{Type: QueryUnknown}

	body := commentRegex.ReplaceAllString(query, "")

	if matches := queryTypeRegex.FindStringSubmatch(body); matches != nil {
		switch strings.ToUpper(matches[1]) {
		case "SELECT":
			p.Type = QuerySelect
		case "INSERT":
			p.Type = QueryInsert
		case "REPLACE":
			p.Type = QueryReplace
		case "UPDATE":
			p.Type = QueryUpdate
		case "DELETE":
			p.Type = QueryDelete
		}
	}

	if matches := targetRegex.FindStringSubmatch(body); matches != nil {
		p.DB = matches[1]
		p.Table = matches[2]
	}

	return p
}

// Target returns the written table, qualified with its database when the
// statement names one. It is empty for statements without a write target.
func (p *ParsedQuery) Target() string {
	if p.DB == "" {
		return p.Table
	}
	return p.DB + "." + p.Table
}
