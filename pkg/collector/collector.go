// Package collector drives a paginated source page by page until the source
// reports exhaustion, folding every item into an accumulator.
package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/channelwrapped/wrapbot/pkg/backoff"
	"github.com/sirupsen/logrus"
)

// PageRequest identifies the next page to fetch. Counted sources read Number,
// cursor sources read Cursor. A fresh request is created for every run.
type PageRequest struct {
	Number int
	Cursor string
}

// FirstPage is the request every run starts from.
func FirstPage() PageRequest {
	return PageRequest{Number: 1}
}

// Paging is the exhaustion signal a source attaches to each page.
type Paging interface {
	// Next returns the request following current, or false when no pages remain.
	Next(current PageRequest) (PageRequest, bool)
}

// CountedPaging is returned by sources that report the total page count.
type CountedPaging struct {
	TotalPages int
}

// Next implements Paging.
func (p CountedPaging) Next(current PageRequest) (PageRequest, bool) {
	if current.Number >= p.TotalPages {
		return PageRequest{}, false
	}
	return PageRequest{Number: current.Number + 1}, true
}

// CursorPaging is returned by sources that hand out an opaque continuation token.
type CursorPaging struct {
	NextCursor string
}

// Next implements Paging.
func (p CursorPaging) Next(current PageRequest) (PageRequest, bool) {
	if p.NextCursor == "" {
		return PageRequest{}, false
	}
	return PageRequest{Number: current.Number + 1, Cursor: p.NextCursor}, true
}

// Page is one response from a source.
type Page[T any] struct {
	Items  []T
	Paging Paging
}

// Source fetches pages of T. Implementations are bound to their query
// (channel and period) at construction.
type Source[T any] interface {
	Name() string
	FetchPage(ctx context.Context, req PageRequest) (Page[T], error)
}

// Reducer applies one item to the accumulator.
type Reducer[A any, T any] func(acc A, item T)

// Options configures a single Collect run.
type Options struct {
	// PageDelay is the fixed pause between a page being applied and the next fetch
	PageDelay time.Duration
	// Executor retries each page fetch
	Executor *backoff.Executor
	Logger   *logrus.Logger
}

// Collect fetches pages from src in strict sequence and folds each item into acc.
//
// Collection ends when a page is empty or its Paging reports no further pages.
// A page that still fails after retries aborts the run: the error is returned
// and the partially filled accumulator is discarded.
//
// In-flight fetches run on a context detached from ctx cancellation; ctx only
// stops new pages and retries from being scheduled.
func Collect[A any, T any](ctx context.Context, src Source[T], acc A, reduce Reducer[A, T], opts Options) (A, error) {
	var zero A
	if opts.Executor == nil {
		opts.Executor = backoff.NewExecutor(backoff.DefaultConfig(), opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithField("source", src.Name())

	fetchCtx := context.WithoutCancel(ctx)
	req := FirstPage()
	items := 0

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		var page Page[T]
		err := opts.Executor.Do(ctx, src.Name(), func(context.Context) error {
			var err error
			page, err = src.FetchPage(fetchCtx, req)
			return err
		})
		if err != nil {
			log.WithError(err).WithField("page", req.Number).Error("Page fetch failed permanently")
			return zero, fmt.Errorf("%s page %d: %w", src.Name(), req.Number, err)
		}

		if len(page.Items) == 0 {
			log.WithField("page", req.Number).Debug("Empty page, collection complete")
			return acc, nil
		}

		for _, item := range page.Items {
			reduce(acc, item)
		}
		items += len(page.Items)

		log.WithFields(logrus.Fields{
			"page":  req.Number,
			"items": len(page.Items),
			"total": items,
		}).Debug("Applied page")

		if page.Paging == nil {
			return acc, nil
		}
		next, ok := page.Paging.Next(req)
		if !ok {
			return acc, nil
		}

		if err := wait(ctx, opts.PageDelay); err != nil {
			return zero, err
		}
		req = next
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
