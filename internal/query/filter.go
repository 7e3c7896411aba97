// Package query turns optional search parameters into record store filters.
//
// Every user supplied value is matched literally: it is escaped for the
// pattern syntax of the store that evaluates it, so no value can change the
// structure of the resulting query.
package query

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tuanvumaihuynh/tyre-inventory/internal/model"
)

// Field is a searchable tyre attribute.
type Field string

const (
	FieldBrand Field = "brand"
	FieldSize  Field = "size"
)

// Condition requires Field to contain Value, ignoring letter case.
type Condition struct {
	Field Field
	Value string
}

// Filter is a conjunction of substring conditions. The zero Filter matches
// every record.
type Filter struct {
	conditions []Condition
}

// New builds a filter from the brand and size search parameters. Empty
// parameters impose no constraint.
func New(brand, size string) Filter {
	var f Filter
	if brand != "" {
		f.conditions = append(f.conditions, Condition{Field: FieldBrand, Value: brand})
	}
	if size != "" {
		f.conditions = append(f.conditions, Condition{Field: FieldSize, Value: size})
	}
	return f
}

// BSON renders the filter as a MongoDB query document using
// case-insensitive $regex conditions on quoted literals.
func (f Filter) BSON() bson.D {
	doc := bson.D{}
	for _, c := range f.conditions {
		doc = append(doc, bson.E{
			Key: string(c.Field),
			Value: bson.D{
				{Key: "$regex", Value: regexp.QuoteMeta(c.Value)},
				{Key: "$options", Value: "i"},
			},
		})
	}
	return doc
}

// SQL renders the filter as a Postgres WHERE clause body using ILIKE with an
// explicit escape character. Placeholders are numbered from firstArg. An
// empty filter renders "TRUE".
func (f Filter) SQL(firstArg int) (string, []any) {
	if len(f.conditions) == 0 {
		return "TRUE", nil
	}

	clauses := make([]string, 0, len(f.conditions))
	args := make([]any, 0, len(f.conditions))
	for i, c := range f.conditions {
		clauses = append(clauses, fmt.Sprintf(`%s ILIKE '%%' || $%d || '%%' ESCAPE '\'`, c.Field, firstArg+i))
		args = append(args, EscapeLike(c.Value))
	}
	return strings.Join(clauses, " AND "), args
}

// Match evaluates the filter against t in process.
func (f Filter) Match(t model.Tyre) bool {
	for _, c := range f.conditions {
		if !containsFold(fieldValue(t, c.Field), c.Value) {
			return false
		}
	}
	return true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards and the escape character itself.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func fieldValue(t model.Tyre, field Field) string {
	switch field {
	case FieldBrand:
		return t.Brand
	case FieldSize:
		return t.Size
	default:
		return ""
	}
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
