package churchtools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Pagination is the page descriptor under meta.pagination.
type Pagination struct {
	Total    *int `json:"total"`
	Limit    *int `json:"limit"`
	Current  *int `json:"current"`
	LastPage *int `json:"lastPage"`
}

// Meta is the meta object of list responses.
type Meta struct {
	Pagination *Pagination `json:"pagination"`
}

type envelope[T any] struct {
	Data T    `json:"data"`
	Meta Meta `json:"meta"`
}

// HasMorePages reports whether another page follows. A missing descriptor or
// missing fields mean there is none.
func HasMorePages(meta Meta) bool {
	p := meta.Pagination
	if p == nil || p.Current == nil || p.LastPage == nil {
		return false
	}
	return *p.Current < *p.LastPage
}

// Collect fetches every page of a list endpoint in order and returns the
// concatenated items. Any failing page fails the whole call.
func Collect[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	params := url.Values{}
	for key, values := range query {
		params[key] = append([]string(nil), values...)
	}
	params.Set("page", "1")
	if c.pageSize > 0 {
		params.Set("limit", strconv.Itoa(c.pageSize))
	}

	items := []T{}
	for {
		var page envelope[[]T]
		if err := c.getJSON(ctx, path, params, &page); err != nil {
			if len(items) > 0 {
				return nil, fmt.Errorf("load additional pages: %w", err)
			}
			return nil, fmt.Errorf("load data: %w", err)
		}
		items = append(items, page.Data...)

		if !HasMorePages(page.Meta) {
			return items, nil
		}
		params.Set("page", strconv.Itoa(*page.Meta.Pagination.Current+1))
	}
}
