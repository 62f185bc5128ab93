package omophub

import (
	"context"
	"iter"
)

const (
	// DefaultPageSize is used by the iterators when no size is given.
	DefaultPageSize = 20
	// MaxPageSize is the largest page the service returns.
	MaxPageSize = 100
)

// PageFunc fetches one page of items. A nil Pagination means the response
// carried no pagination metadata, which ends the iteration.
type PageFunc[T any] func(ctx context.Context, page, pageSize int) ([]T, *Pagination, error)

// Page is one fetched page, as delivered by an AsyncPageFunc.
type Page[T any] struct {
	Items      []T
	Pagination *Pagination
}

// AsyncPageFunc starts fetching one page and returns its Future.
type AsyncPageFunc[T any] func(ctx context.Context, page, pageSize int) *Future[Page[T]]

// Paginate returns a lazy sequence over every item of every page, starting
// at page 1. A page is fetched only after the previous one has been fully
// consumed and reported has_next. Breaking out of the range stops fetching.
// A fetch error is yielded once and ends the sequence.
func Paginate[T any](ctx context.Context, fetch PageFunc[T], pageSize int) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for page := 1; ; page++ {
			items, meta, err := fetch(ctx, page, pageSize)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			if meta == nil || !meta.HasNext {
				return
			}
		}
	}
}

// Stream is the concurrent form of Paginate. It is pull based: Next waits
// on the next page's Future only when the current page is used up, so
// waiting suspends the consuming goroutine alone.
//
//	s := omophub.PaginateAsync(fetch, 50)
//	for s.Next(ctx) {
//		use(s.Item())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream[T any] struct {
	fetch    AsyncPageFunc[T]
	pageSize int

	page  int
	items []T
	pos   int
	item  T
	more  bool
	err   error
}

// PaginateAsync returns a Stream that starts at page 1.
func PaginateAsync[T any](fetch AsyncPageFunc[T], pageSize int) *Stream[T] {
	return &Stream[T]{fetch: fetch, pageSize: pageSize, more: true}
}

// Next advances to the next item, fetching a page when needed. It returns
// false when the sequence is exhausted or a fetch failed.
func (s *Stream[T]) Next(ctx context.Context) bool {
	for {
		if s.err != nil {
			return false
		}
		if s.pos < len(s.items) {
			s.item = s.items[s.pos]
			s.pos++
			return true
		}
		if !s.more {
			s.items = nil
			return false
		}

		s.page++
		p, err := s.fetch(ctx, s.page, s.pageSize).Await(ctx)
		if err != nil {
			s.err = err
			s.items = nil
			return false
		}
		s.items, s.pos = p.Items, 0
		s.more = p.Pagination != nil && p.Pagination.HasNext
	}
}

// Item returns the current item.
func (s *Stream[T]) Item() T {
	return s.item
}

// Err returns the fetch error that ended the stream, if any.
func (s *Stream[T]) Err() error {
	return s.err
}

// Pages reports how many pages have been requested so far.
func (s *Stream[T]) Pages() int {
	return s.page
}

// All adapts the stream to a range-over-func sequence. A fetch error is
// yielded as the last element.
func (s *Stream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for s.Next(ctx) {
			if !yield(s.Item(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// AsyncPages lifts a blocking PageFunc into an AsyncPageFunc.
func AsyncPages[T any](fetch PageFunc[T]) AsyncPageFunc[T] {
	return func(ctx context.Context, page, pageSize int) *Future[Page[T]] {
		return Go(func() (Page[T], error) {
			items, meta, err := fetch(ctx, page, pageSize)
			return Page[T]{Items: items, Pagination: meta}, err
		})
	}
}

// capPageSize applies the service maximum; the engines never change the size.
func capPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	default:
		return size
	}
}
