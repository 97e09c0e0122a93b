package render

import "strings"

// SQLite renders ? placeholders. Geometry predicates are not supported.
type SQLite struct{}

var _ Dialect = SQLite{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) Placeholder(int) string { return "?" }

func (SQLite) QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (d SQLite) Fn(fn, expr string) (string, error) {
	switch fn {
	case "count":
		return "COUNT(" + expr + ")", nil
	case "sum":
		return "SUM(" + expr + ")", nil
	case "avg":
		return "AVG(" + expr + ")", nil
	case "min":
		return "MIN(" + expr + ")", nil
	case "max":
		return "MAX(" + expr + ")", nil
	case "year":
		return "CAST(strftime('%Y', " + expr + ") AS INTEGER)", nil
	case "month":
		return "CAST(strftime('%m', " + expr + ") AS INTEGER)", nil
	case "day":
		return "CAST(strftime('%d', " + expr + ") AS INTEGER)", nil
	case "lower":
		return "LOWER(" + expr + ")", nil
	case "upper":
		return "UPPER(" + expr + ")", nil
	}
	return "", errorf(d, "unsupported function %q", fn)
}

func (d SQLite) GeoIntersects(string, string, bool) (string, error) {
	return "", errorf(d, "geometry comparisons are not supported")
}
