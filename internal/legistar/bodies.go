package legistar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// Body is a committee or other organizational body.
type Body struct {
	BodyID         int    `json:"BodyId"`
	BodyName       string `json:"BodyName"`
	BodyTypeName   string `json:"BodyTypeName"`
	BodyActiveFlag int    `json:"BodyActiveFlag"`
}

// Bodies lists bodies, optionally only those currently active.
func (c *Client) Bodies(ctx context.Context, activeOnly bool) ([]Body, error) {
	var all []Body
	for skip := 0; ; skip += DefaultPageSize {
		params := url.Values{}
		params.Set("$top", strconv.Itoa(DefaultPageSize))
		params.Set("$skip", strconv.Itoa(skip))
		if activeOnly {
			params.Set("$filter", "BodyActiveFlag eq 1")
		}

		var page []Body
		if err := c.get(ctx, "bodies", params, &page); err != nil {
			return nil, fmt.Errorf("failed to list bodies: %w", err)
		}
		all = append(all, page...)
		if len(page) < DefaultPageSize {
			break
		}
	}
	return all, nil
}
