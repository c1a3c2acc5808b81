package graph

import (
	"context"
	"net/url"
)

// Getter is what the paginated helpers need from a client.
type Getter interface {
	GetJSON(ctx context.Context, pathOrURL string, query url.Values, out any) error
}

type Paging struct {
	Cursors struct {
		Before string `json:"before"`
		After  string `json:"after"`
	} `json:"cursors"`
	Next string `json:"next"`
}

// Page is the envelope every Graph list endpoint returns.
type Page[T any] struct {
	Data   []T     `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// Paginate fetches path page by page and hands each page to fn before the
// next one is requested. It stops when the response carries no next cursor.
func Paginate[T any](ctx context.Context, c Getter, path string, query url.Values, fn func(page []T) error) error {
	next := path
	q := query
	for {
		var page Page[T]
		if err := c.GetJSON(ctx, next, q, &page); err != nil {
			return err
		}
		if err := fn(page.Data); err != nil {
			return err
		}
		if page.Paging == nil || page.Paging.Next == "" || page.Paging.Next == next {
			return nil
		}
		next = page.Paging.Next
		// the next URL already carries every parameter
		q = nil
	}
}
