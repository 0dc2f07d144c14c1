package legistar

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/civicsignal/hearingwatch/internal/types"
)

// Event is one meeting record as the API returns it.
type Event struct {
	EventID               int    `json:"EventId"`
	EventBodyID           int    `json:"EventBodyId"`
	EventBodyName         string `json:"EventBodyName"`
	EventDate             string `json:"EventDate"` // "2025-01-10T00:00:00"
	EventTime             string `json:"EventTime"` // "10:00 AM"
	EventLocation         string `json:"EventLocation"`
	EventAgendaStatusName string `json:"EventAgendaStatusName"`
	EventComment          string `json:"EventComment"`
	EventAgendaFile       string `json:"EventAgendaFile"`
}

// Record normalizes the API shape into the engine's event record: integer
// id stringified, datetime truncated to a calendar date.
func (e Event) Record() types.EventRecord {
	date := e.EventDate
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}
	return types.EventRecord{
		ID:           strconv.Itoa(e.EventID),
		BodyName:     e.EventBodyName,
		Date:         date,
		Time:         e.EventTime,
		AgendaStatus: e.EventAgendaStatusName,
		Comment:      e.EventComment,
		Location:     e.EventLocation,
		AgendaLink:   e.EventAgendaFile,
	}
}

// EventsQuery narrows an events listing.
type EventsQuery struct {
	// Start/End bound EventDate: Start inclusive, End exclusive, matching
	// the API's `ge`/`lt` operators. Zero values leave the bound open.
	Start time.Time
	End   time.Time

	// BodyID filters to one organizational body. Zero means all bodies.
	BodyID int
}

func (q EventsQuery) filter() string {
	var parts []string
	if !q.Start.IsZero() {
		parts = append(parts, fmt.Sprintf("EventDate ge datetime'%s'", q.Start.Format("2006-01-02")))
	}
	if !q.End.IsZero() {
		parts = append(parts, fmt.Sprintf("EventDate lt datetime'%s'", q.End.Format("2006-01-02")))
	}
	if q.BodyID != 0 {
		parts = append(parts, fmt.Sprintf("EventBodyId eq %d", q.BodyID))
	}
	return strings.Join(parts, " and ")
}

// Events fetches every event matching the query, paging with $top/$skip
// until a short page.
func (c *Client) Events(ctx context.Context, q EventsQuery) ([]Event, error) {
	var all []Event
	for skip := 0; ; skip += DefaultPageSize {
		params := url.Values{}
		params.Set("$top", strconv.Itoa(DefaultPageSize))
		params.Set("$skip", strconv.Itoa(skip))
		if f := q.filter(); f != "" {
			params.Set("$filter", f)
		}

		var page []Event
		if err := c.get(ctx, "events", params, &page); err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		all = append(all, page...)
		if len(page) < DefaultPageSize {
			break
		}
	}

	c.logger.Info("fetched events", "count", len(all),
		"start", q.Start.Format("2006-01-02"), "end", q.End.Format("2006-01-02"))
	return all, nil
}

// FetchRecords fetches the events in [start, end) and normalizes them to
// engine records, in API order.
func (c *Client) FetchRecords(ctx context.Context, q EventsQuery) ([]types.EventRecord, error) {
	events, err := c.Events(ctx, q)
	if err != nil {
		return nil, err
	}
	records := make([]types.EventRecord, 0, len(events))
	for _, ev := range events {
		records = append(records, ev.Record())
	}
	return records, nil
}
