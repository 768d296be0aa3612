// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mag

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

const (
	defaultPageSize = 1000
	defaultMaxPages = 1000
)

// ErrPageLimit is returned when an expression still yields full pages after
// MaxPages requests.
var ErrPageLimit = errors.New("mag: page limit reached")

// FetchRequest describes the pagination of one expression.
type FetchRequest struct {
	Expr       string
	Attributes []string

	// PageSize is the count sent with each request (default 1000).
	PageSize int

	// MaxPages bounds the number of requests (default 1000).
	MaxPages int
}

// FetchStats summarises a completed or aborted fetch.
type FetchStats struct {
	Pages    int
	Entities int
}

// Pages returns the result pages of req.Expr in offset order. The offset
// starts at 0 and grows by PageSize after every page; the sequence ends after
// the first page holding fewer than PageSize entities. A failed request is
// yielded as the final element with its error. Pages are fetched lazily, one
// request per iteration step.
func Pages(ctx context.Context, q Querier, req FetchRequest) iter.Seq2[Page, error] {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return func(yield func(Page, error) bool) {
		offset := 0
		for n := 0; ; n++ {
			if n >= maxPages {
				yield(Page{}, fmt.Errorf("%w: %d pages at offset %d", ErrPageLimit, maxPages, offset))
				return
			}
			if err := ctx.Err(); err != nil {
				yield(Page{}, err)
				return
			}

			page, err := q.Query(ctx, Request{
				Expr:       req.Expr,
				Attributes: req.Attributes,
				Count:      pageSize,
				Offset:     offset,
			})
			if err != nil {
				yield(Page{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if len(page.Entities) < pageSize {
				return
			}
			offset += pageSize
		}
	}
}

// FetchAll drives Pages to exhaustion and hands every page to fn, which is
// expected to persist it. It stops at the first request or fn error; pages
// handed to fn before the error stay handled.
func FetchAll(ctx context.Context, q Querier, req FetchRequest, fn func(Page) error) (FetchStats, error) {
	var stats FetchStats
	for page, err := range Pages(ctx, q, req) {
		if err != nil {
			return stats, err
		}
		stats.Pages++
		stats.Entities += len(page.Entities)
		if err := fn(page); err != nil {
			return stats, fmt.Errorf("handling page at offset %d: %w", page.Offset, err)
		}
	}
	return stats, nil
}
