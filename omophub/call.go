package omophub

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"
)

// call describes one request of a resource method. Both execution models
// build the same call and differ only in how they run it.
type call struct {
	method string
	path   string
	params Params
	body   any
	// err is set when the call was rejected before any request was made.
	err error
}

func getCall(path string, params Params) call {
	return call{method: http.MethodGet, path: path, params: params}
}

func postCall(path string, body any) call {
	return call{method: http.MethodPost, path: path, body: body}
}

func rejected(err error) call {
	return call{err: err}
}

func run[T any](ctx context.Context, r *Requester, c call) (T, error) {
	if c.err != nil {
		var zero T
		return zero, c.err
	}
	var (
		raw json.RawMessage
		err error
	)
	if c.method == http.MethodPost {
		raw, err = r.Post(ctx, c.path, c.body, c.params)
	} else {
		raw, err = r.Get(ctx, c.path, c.params)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeInto[T](raw)
}

func runAsync[T any](ctx context.Context, a *AsyncRequester, c call) *Future[T] {
	if c.err != nil {
		return Go(func() (T, error) {
			var zero T
			return zero, c.err
		})
	}
	var f *Future[json.RawMessage]
	if c.method == http.MethodPost {
		f = a.Post(ctx, c.path, c.body, c.params)
	} else {
		f = a.Get(ctx, c.path, c.params)
	}
	return then(f, func(raw json.RawMessage, err error) (T, error) {
		if err != nil {
			var zero T
			return zero, err
		}
		return decodeInto[T](raw)
	})
}

// listing is a paginated GET endpoint whose data is either a list of items
// or an object holding the list under key.
type listing struct {
	path   string
	key    string
	params func(page, pageSize int) Params
}

func listPages[T any](r *Requester, l listing) PageFunc[T] {
	return func(ctx context.Context, page, pageSize int) ([]T, *Pagination, error) {
		raw, err := r.GetRaw(ctx, l.path, l.params(page, pageSize))
		if err != nil {
			return nil, nil, err
		}
		items, err := itemsOf[T](raw, l.key)
		if err != nil {
			return nil, nil, err
		}
		return items, raw.Meta.Pagination, nil
	}
}

func listPagesAsync[T any](a *AsyncRequester, l listing) AsyncPageFunc[T] {
	return func(ctx context.Context, page, pageSize int) *Future[Page[T]] {
		return then(a.GetRaw(ctx, l.path, l.params(page, pageSize)), func(raw *RawResponse, err error) (Page[T], error) {
			if err != nil {
				return Page[T]{}, err
			}
			items, err := itemsOf[T](raw, l.key)
			if err != nil {
				return Page[T]{}, err
			}
			return Page[T]{Items: items, Pagination: raw.Meta.Pagination}, nil
		})
	}
}

func itemsOf[T any](raw *RawResponse, key string) ([]T, error) {
	data := gjson.ParseBytes(raw.Data)
	if data.IsObject() {
		data = data.Get(key)
	}
	if !data.IsArray() {
		return nil, nil
	}
	return decodeInto[[]T](json.RawMessage(data.Raw))
}
