// Package query composes optional filter predicates and pagination into a single
// specification that the store executes with gorm.
package query

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate is a gorm scope adding zero or more conditions to a statement.
// Column names given to the constructors below are trusted identifiers, never user input.
type Predicate func(db *gorm.DB) *gorm.DB

// Noop is the identity of conjunction.
func Noop(db *gorm.DB) *gorm.DB {
	return db
}

// None matches no rows.
func None(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// All is the conjunction of preds. Nil entries are skipped; All() is Noop.
func All(preds ...Predicate) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range preds {
			if p != nil {
				db = p(db)
			}
		}
		return db
	}
}

func col(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// Equal matches column = *v, or everything when v is nil.
func Equal[T any](column string, v *T) Predicate {
	if v == nil {
		return Noop
	}
	value := *v
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: col(column), Value: value})
	}
}

// EqualFold matches column case-insensitively. A nil or blank v matches everything.
func EqualFold(column string, v *string) Predicate {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Noop
	}
	value := strings.ToLower(strings.TrimSpace(*v))
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Expr{SQL: "LOWER(?) = ?", Vars: []any{col(column), value}})
	}
}

var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// Contains matches a case-insensitive substring of column. A nil or blank v matches everything.
func Contains(column string, v *string) Predicate {
	if v == nil || strings.TrimSpace(*v) == "" {
		return Noop
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(*v))) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Expr{SQL: `LOWER(?) LIKE ? ESCAPE '!'`, Vars: []any{col(column), pattern}})
	}
}

// Between matches from <= column <= to. Either bound may be nil; with both nil it is Noop.
func Between[T any](column string, from, to *T) Predicate {
	var preds []Predicate
	if from != nil {
		lo := *from
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where(clause.Gte{Column: col(column), Value: lo})
		})
	}
	if to != nil {
		hi := *to
		preds = append(preds, func(db *gorm.DB) *gorm.DB {
			return db.Where(clause.Lte{Column: col(column), Value: hi})
		})
	}
	if len(preds) == 0 {
		return Noop
	}
	return All(preds...)
}

func AtLeast[T any](column string, from *T) Predicate {
	return Between[T](column, from, nil)
}

// Relation describes a hop to another table: rows of that table whose Column matches
// the filter value contribute their Key to the outer IN list.
type Relation struct {
	Table  string
	Key    string
	Column string
}

// Related matches rows whose column is the Key of a related row with Column = *v.
func Related[T any](column string, rel Relation, v *T) Predicate {
	if v == nil {
		return Noop
	}
	value := *v
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Expr{
			SQL: "? IN (SELECT ? FROM ? WHERE ? = ?)",
			Vars: []any{
				col(column),
				clause.Column{Name: rel.Key},
				clause.Table{Name: rel.Table},
				clause.Column{Name: rel.Column},
				value,
			},
		})
	}
}
