package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// Pagination is the offset-pagination envelope shared by every listing.
type Pagination struct {
	CurrentPage int     `json:"current_page"`
	LastPage    int     `json:"last_page"`
	PerPage     int     `json:"per_page"`
	Total       int     `json:"total"`
	NextPageURL *string `json:"next_page_url"`
	PrevPageURL *string `json:"prev_page_url"`
}

// pageParams reads 1-based page/limit query parameters, clamping the page to
// >= 1 and the per-page size to [1, 100].
func pageParams(r *http.Request) (page, perPage int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 1 {
		page = v
	}

	perPage = defaultPerPage
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		perPage = v
	} else if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v >= 1 {
		perPage = v
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func newPagination(r *http.Request, page, perPage, total int) Pagination {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	p := Pagination{
		CurrentPage: page,
		LastPage:    lastPage,
		PerPage:     perPage,
		Total:       total,
	}
	if page < lastPage {
		p.NextPageURL = pageURL(r, page+1, perPage)
	}
	if page > 1 {
		p.PrevPageURL = pageURL(r, page-1, perPage)
	}
	return p
}

func pageURL(r *http.Request, page, perPage int) *string {
	q := url.Values{}
	for k, vs := range r.URL.Query() {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(perPage))

	u := fmt.Sprintf("%s?%s", r.URL.Path, q.Encode())
	return &u
}
