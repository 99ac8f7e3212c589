package service

import "fmt"

// listingPath is the route the navigation links point at.
const listingPath = "/api/products"

// Listing is the paginated response envelope for catalog listings.
// Prev/next pointers and links are null when there is no such page.
type Listing struct {
	Status      string       `json:"status"`
	Payload     []ProductDto `json:"payload"`
	TotalPages  int64        `json:"totalPages"`
	PrevPage    *int64       `json:"prevPage"`
	NextPage    *int64       `json:"nextPage"`
	Page        int64        `json:"page"`
	HasPrevPage bool         `json:"hasPrevPage"`
	HasNextPage bool         `json:"hasNextPage"`
	PrevLink    *string      `json:"prevLink"`
	NextLink    *string      `json:"nextLink"`
}

// NewListing assembles the envelope from one page of results plus the
// total matching count. Pure and deterministic: no I/O.
func NewListing(payload []ProductDto, page, limit, total int64) *Listing {
	totalPages := (total + limit - 1) / limit
	hasPrev := page > 1
	hasNext := page*limit < total

	l := &Listing{
		Status:      "success",
		Payload:     payload,
		TotalPages:  totalPages,
		Page:        page,
		HasPrevPage: hasPrev,
		HasNextPage: hasNext,
	}
	if hasPrev {
		prev := page - 1
		l.PrevPage = &prev
		l.PrevLink = pageLink(prev, limit)
	}
	if hasNext {
		next := page + 1
		l.NextPage = &next
		l.NextLink = pageLink(next, limit)
	}
	return l
}

func pageLink(page, limit int64) *string {
	link := fmt.Sprintf("%s?page=%d&limit=%d", listingPath, page, limit)
	return &link
}
