package api

import "fmt"

// DefaultPageLimit is the page size when the client sends none.
const DefaultPageLimit = 100

// PageInput is the offset/limit query shared by list routes.
type PageInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"100" doc:"Page size"`
}

// pager is implemented by bodies that link to neighbouring pages.
type pager interface {
	PageLinks(path string) []string
}

// Page is one window of a listing.
type Page[T any] struct {
	Total  int `json:"total" doc:"Total number of items"`
	Offset int `json:"offset" doc:"Items skipped"`
	Limit  int `json:"limit" doc:"Page size"`
	Items  []T `json:"items" doc:"Items in this page"`
}

// Paginate cuts the [offset, offset+limit) window out of all.
func Paginate[T any](all []T, in PageInput) Page[T] {
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	offset := min(max(in.Offset, 0), len(all))
	end := min(offset+limit, len(all))

	items := make([]T, end-offset)
	copy(items, all[offset:end])
	return Page[T]{Total: len(all), Offset: offset, Limit: limit, Items: items}
}

// PageLinks returns RFC 8288 first/prev/next/last links for path.
func (p Page[T]) PageLinks(path string) []string {
	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="%s"`, path, offset, p.Limit, rel)
	}

	links := []string{link(0, "first")}
	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}
	last := 0
	if p.Total > 0 {
		last = ((p.Total - 1) / p.Limit) * p.Limit
	}
	return append(links, link(last, "last"))
}
