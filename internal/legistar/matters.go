package legistar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Matter is a legislative matter (bill, resolution, land use item).
type Matter struct {
	MatterID         int    `json:"MatterId"`
	MatterFile       string `json:"MatterFile"`
	MatterName       string `json:"MatterName"`
	MatterTitle      string `json:"MatterTitle"`
	MatterTypeName   string `json:"MatterTypeName"`
	MatterStatusName string `json:"MatterStatusName"`
	MatterBodyName   string `json:"MatterBodyName"`
	MatterIntroDate  string `json:"MatterIntroDate"`
}

// MatterAttachment is a file attached to a matter.
type MatterAttachment struct {
	MatterAttachmentID        int    `json:"MatterAttachmentId"`
	MatterAttachmentName      string `json:"MatterAttachmentName"`
	MatterAttachmentHyperlink string `json:"MatterAttachmentHyperlink"`
}

// MattersQuery narrows a matters listing.
type MattersQuery struct {
	// TypeName/StatusName filter on the matter's type and status labels.
	TypeName   string
	StatusName string

	// IntroducedSince bounds MatterIntroDate from below, inclusive.
	IntroducedSince time.Time
}

func (q MattersQuery) filter() string {
	var parts []string
	if q.TypeName != "" {
		parts = append(parts, fmt.Sprintf("MatterTypeName eq '%s'", q.TypeName))
	}
	if q.StatusName != "" {
		parts = append(parts, fmt.Sprintf("MatterStatusName eq '%s'", q.StatusName))
	}
	if !q.IntroducedSince.IsZero() {
		parts = append(parts, fmt.Sprintf("MatterIntroDate ge datetime'%s'", q.IntroducedSince.Format("2006-01-02")))
	}
	return strings.Join(parts, " and ")
}

// Matters fetches every matter matching the query, paged like Events.
func (c *Client) Matters(ctx context.Context, q MattersQuery) ([]Matter, error) {
	var all []Matter
	for skip := 0; ; skip += DefaultPageSize {
		params := url.Values{}
		params.Set("$top", strconv.Itoa(DefaultPageSize))
		params.Set("$skip", strconv.Itoa(skip))
		if f := q.filter(); f != "" {
			params.Set("$filter", f)
		}

		var page []Matter
		if err := c.get(ctx, "matters", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < DefaultPageSize {
			return all, nil
		}
	}
}

// Matter fetches one matter by id.
func (c *Client) Matter(ctx context.Context, id int) (*Matter, error) {
	var m Matter
	if err := c.get(ctx, fmt.Sprintf("matters/%d", id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// MatterAttachments lists the files attached to a matter.
func (c *Client) MatterAttachments(ctx context.Context, id int) ([]MatterAttachment, error) {
	var atts []MatterAttachment
	if err := c.get(ctx, fmt.Sprintf("matters/%d/attachments", id), nil, &atts); err != nil {
		return nil, err
	}
	return atts, nil
}
