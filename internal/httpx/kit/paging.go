package kit

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"planeat-api/internal/store"
)

// PagingParams contains pagination parameters from HTTP request
type PagingParams struct {
	store.Page
	// Whether to compute total count
	WithTotal bool
}

// ParsePaging reads limit, offset, sort and with_total. Sort fields outside
// allowed are rejected; an empty sort keeps the store's default order.
func ParsePaging(c *fiber.Ctx, allowed ...string) (PagingParams, error) {
	p := PagingParams{}
	p.Limit = lo.Clamp(c.QueryInt("limit", 20), 1, 100)
	p.Offset = c.QueryInt("offset", 0)
	if p.Offset < 0 {
		return p, BadRequest("invalid offset", p.Offset)
	}
	p.WithTotal = c.Query("with_total", "false") == "true"

	field, desc, err := ParseSort(c.Query("sort", ""), allowed...)
	if err != nil {
		return p, err
	}
	p.Sort, p.Desc = field, desc
	return p, nil
}

// Meta builds offset metadata for a page of count items.
func (p PagingParams) Meta(count int, total *int) PageMeta {
	next := p.Offset + count
	meta := PageMeta{
		Limit:      p.Limit,
		Offset:     p.Offset,
		Count:      count,
		NextOffset: &next,
		HasMore:    count == p.Limit,
		Sort:       p.Sort,
		Total:      total,
	}
	if total != nil {
		meta.HasMore = next < *total
	}
	if p.Sort != "" && p.Desc {
		meta.Sort += ":desc"
	}
	return meta
}
