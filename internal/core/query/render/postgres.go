package render

import (
	"strconv"
	"strings"
)

// Postgres renders $n placeholders and PostGIS geometry predicates.
type Postgres struct{}

var _ Dialect = Postgres{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) Placeholder(i int) string { return "$" + strconv.Itoa(i+1) }

func (Postgres) QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (d Postgres) Fn(fn, expr string) (string, error) {
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
		return "EXTRACT(YEAR FROM " + expr + ")", nil
	case "month":
		return "EXTRACT(MONTH FROM " + expr + ")", nil
	case "day":
		return "EXTRACT(DAY FROM " + expr + ")", nil
	case "lower":
		return "LOWER(" + expr + ")", nil
	case "upper":
		return "UPPER(" + expr + ")", nil
	}
	return "", errorf(d, "unsupported function %q", fn)
}

func (d Postgres) GeoIntersects(col, placeholder string, bbox bool) (string, error) {
	if bbox {
		return col + " && ST_GeomFromText(" + placeholder + ")", nil
	}
	return "ST_Intersects(" + col + ", ST_GeomFromText(" + placeholder + "))", nil
}
