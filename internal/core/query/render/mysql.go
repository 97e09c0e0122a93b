package render

import "strings"

// MySQL renders ? placeholders and MySQL spatial predicates.
type MySQL struct{}

var _ Dialect = MySQL{}

func (MySQL) Name() string { return "mysql" }

func (MySQL) Placeholder(int) string { return "?" }

func (MySQL) QuoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func (d MySQL) Fn(fn, expr string) (string, error) {
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
		return "YEAR(" + expr + ")", nil
	case "month":
		return "MONTH(" + expr + ")", nil
	case "day":
		return "DAY(" + expr + ")", nil
	case "lower":
		return "LOWER(" + expr + ")", nil
	case "upper":
		return "UPPER(" + expr + ")", nil
	}
	return "", errorf(d, "unsupported function %q", fn)
}

func (d MySQL) GeoIntersects(col, placeholder string, bbox bool) (string, error) {
	if bbox {
		return "MBRIntersects(" + col + ", ST_GeomFromText(" + placeholder + "))", nil
	}
	return "ST_Intersects(" + col + ", ST_GeomFromText(" + placeholder + "))", nil
}
