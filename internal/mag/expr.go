// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mag builds query expressions for the academic graph Evaluate API,
// pages through its results and turns the returned entities into typed
// records.
package mag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nestauk/ai-research/pkg/types"
)

const (
	exprPrefix = "expr=OR("
	exprSuffix = ")"
)

// Sentinel errors returned by the expression builders.
var (
	ErrNoTerms     = errors.New("mag: no terms to build an expression from")
	ErrTermTooLong = errors.New("mag: term does not fit within the maximum expression length")
)

// Term is the set of scalar types an expression can match on. Integers are
// rendered bare; strings are single-quoted.
type Term interface {
	int | int64 | string
}

// BuildExpr greedily packs terms into OR clauses of the form
// expr=OR(field=v1,field=v2,...), starting a new clause whenever the next
// term would push the current one past maxLen characters. Every term lands
// in exactly one clause and input order is preserved across and within
// clauses.
func BuildExpr[T Term](terms []T, field string, maxLen int) ([]string, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = renderTerm(field, t)
	}
	return packClauses(parts, ",", maxLen)
}

// packClauses joins parts with sep into as few OR clauses as fit maxLen,
// filling each clause before starting the next.
func packClauses(parts []string, sep string, maxLen int) ([]string, error) {
	overhead := len(exprPrefix) + len(exprSuffix)

	var (
		exprs []string
		cur   []string
		size  int
	)
	for _, part := range parts {
		if overhead+len(part) > maxLen {
			return nil, fmt.Errorf("%w: %q (limit %d)", ErrTermTooLong, part, maxLen)
		}

		next := size + len(part)
		if len(cur) > 0 {
			next += len(sep)
		}
		if len(cur) > 0 && overhead+next > maxLen {
			exprs = append(exprs, joinClause(cur, sep))
			cur = cur[:0]
			next = len(part)
		}
		cur = append(cur, part)
		size = next
	}
	exprs = append(exprs, joinClause(cur, sep))
	return exprs, nil
}

func joinClause(parts []string, sep string) string {
	return exprPrefix + strings.Join(parts, sep) + exprSuffix
}

func renderTerm[T Term](field string, v T) string {
	switch x := any(v).(type) {
	case string:
		return field + "='" + x + "'"
	case int:
		return field + "=" + strconv.Itoa(x)
	case int64:
		return field + "=" + strconv.FormatInt(x, 10)
	default:
		return fmt.Sprintf("%s=%v", field, x)
	}
}

// BuildCompositeExpr ORs one Composite match per term, each ANDed with a
// lower bound on publication year:
//
//	expr=OR(And(Composite(F.FN='dog'), Y>=2000), And(Composite(F.FN='cat'), Y>=2000))
func BuildCompositeExpr(terms []string, field string, minYear int) string {
	return joinClause(compositeParts(terms, field, "Y>="+strconv.Itoa(minYear)), compositeSep)
}

// BuildCompositeExprDate is BuildCompositeExpr with a closed publication
// date interval inside year instead of a year bound:
//
//	expr=OR(And(Composite(F.FN='dog'), D=['2000-01-01','2000-06-01']), ...)
func BuildCompositeExprDate(terms []string, field string, year int, w types.DateWindow) string {
	return joinClause(compositeParts(terms, field, dateConstraint(year, w)), compositeSep)
}

// BuildCompositeExprsDate splits the terms of BuildCompositeExprDate over
// as many expressions as it takes to keep each within maxLen characters.
// Terms keep their order across and within expressions. A maxLen of zero
// or less puts every term in one expression.
func BuildCompositeExprsDate(terms []string, field string, year int, w types.DateWindow, maxLen int) ([]string, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	parts := compositeParts(terms, field, dateConstraint(year, w))
	if maxLen <= 0 {
		return []string{joinClause(parts, compositeSep)}, nil
	}
	return packClauses(parts, compositeSep, maxLen)
}

const compositeSep = ", "

func dateConstraint(year int, w types.DateWindow) string {
	start := fmt.Sprintf("%04d-%02d-%02d", year, w.StartMonth, w.StartDay)
	end := fmt.Sprintf("%04d-%02d-%02d", year, w.EndMonth, w.EndDay)
	return "D=['" + start + "','" + end + "']"
}

func compositeParts(terms []string, field, constraint string) []string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = "And(Composite(" + renderTerm(field, t) + "), " + constraint + ")"
	}
	return parts
}

// DefaultWindows returns the two half-year windows used for paper
// collection: January 1 to June 1 and June 1 to December 31.
func DefaultWindows() []types.DateWindow {
	return []types.DateWindow{
		{StartMonth: 1, EndMonth: 6, StartDay: 1, EndDay: 1},
		{StartMonth: 6, EndMonth: 12, StartDay: 1, EndDay: 31},
	}
}
