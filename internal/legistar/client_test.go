package legistar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("nyc", "",
		WithBaseURL(srv.URL),
		WithRateLimit(1000),
		WithRetries(3),
		WithBackoff(time.Millisecond),
	)
	return c, srv
}

func TestEventsSinglePage(t *testing.T) {
	var gotPath, gotFilter string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFilter = r.URL.Query().Get("$filter")
		json.NewEncoder(w).Encode([]Event{
			{EventID: 1001, EventBodyName: "Committee on Finance", EventDate: "2025-01-10T00:00:00", EventTime: "10:00 AM"},
		})
	}))

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	events, err := c.Events(context.Background(), EventsQuery{Start: start, End: end})
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "/nyc/events", gotPath)
	assert.Equal(t, "EventDate ge datetime'2025-01-01' and EventDate lt datetime'2025-02-01'", gotFilter)
}

func TestEventsPagination(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := atomic.AddInt32(&calls, 1)
		skip := r.URL.Query().Get("$skip")

		switch call {
		case 1:
			assert.Equal(t, "0", skip)
			full := make([]Event, DefaultPageSize)
			for i := range full {
				full[i] = Event{EventID: i + 1, EventBodyName: "B"}
			}
			json.NewEncoder(w).Encode(full)
		case 2:
			assert.Equal(t, "1000", skip)
			json.NewEncoder(w).Encode([]Event{{EventID: 9999, EventBodyName: "B"}})
		default:
			t.Errorf("unexpected extra call %d", call)
		}
	}))

	events, err := c.Events(context.Background(), EventsQuery{})
	require.NoError(t, err)
	assert.Len(t, events, DefaultPageSize+1)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode([]Event{{EventID: 1, EventBodyName: "B"}})
	}))

	events, err := c.Events(context.Background(), EventsQuery{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such client", http.StatusNotFound)
	}))

	_, err := c.Events(context.Background(), EventsQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "4xx responses are not retried")
}

func TestTokenAppended(t *testing.T) {
	var gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		fmt.Fprint(w, "[]")
	}))
	defer srv.Close()

	c := New("nyc", "sekrit", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := c.Events(context.Background(), EventsQuery{})
	require.NoError(t, err)
	assert.Equal(t, "sekrit", gotToken)
}

func TestEventRecordNormalization(t *testing.T) {
	ev := Event{
		EventID:               4242,
		EventBodyName:         "Committee on Housing and Buildings",
		EventDate:             "2025-03-14T00:00:00",
		EventTime:             "1:00 PM",
		EventAgendaStatusName: "Deferred",
		EventComment:          "Oversight - rent stabilization",
		EventLocation:         "250 Broadway",
		EventAgendaFile:       "https://legistar.example/agenda.pdf",
	}

	rec := ev.Record()
	assert.Equal(t, "4242", rec.ID)
	assert.Equal(t, "2025-03-14", rec.Date)
	assert.Equal(t, "1:00 PM", rec.Time)
	assert.True(t, rec.IsDeferred())
	require.NoError(t, rec.Validate())

	// Date-less events keep an empty date rather than a mangled string.
	ev.EventDate = ""
	assert.Empty(t, ev.Record().Date)
}

func TestBodies(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nyc/bodies", r.URL.Path)
		assert.Equal(t, "BodyActiveFlag eq 1", r.URL.Query().Get("$filter"))
		json.NewEncoder(w).Encode([]Body{{BodyID: 1, BodyName: "City Council", BodyActiveFlag: 1}})
	}))

	bodies, err := c.Bodies(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Equal(t, "City Council", bodies[0].BodyName)
}

func TestMattersFilterAndDetail(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/nyc/matters":
			assert.Equal(t,
				"MatterTypeName eq 'Resolution' and MatterIntroDate ge datetime'2025-01-01'",
				r.URL.Query().Get("$filter"))
			json.NewEncoder(w).Encode([]Matter{
				{MatterID: 501, MatterFile: "Res 0001-2025", MatterTypeName: "Resolution"},
			})
		case "/nyc/matters/501":
			json.NewEncoder(w).Encode(Matter{MatterID: 501, MatterName: "Budget resolution"})
		case "/nyc/matters/501/attachments":
			json.NewEncoder(w).Encode([]MatterAttachment{
				{MatterAttachmentID: 7, MatterAttachmentName: "Fiscal impact statement"},
			})
		default:
			http.NotFound(w, r)
		}
	}))

	ctx := context.Background()
	matters, err := c.Matters(ctx, MattersQuery{
		TypeName:        "Resolution",
		IntroducedSince: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, matters, 1)
	assert.Equal(t, "Res 0001-2025", matters[0].MatterFile)

	m, err := c.Matter(ctx, 501)
	require.NoError(t, err)
	assert.Equal(t, "Budget resolution", m.MatterName)

	atts, err := c.MatterAttachments(ctx, 501)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "Fiscal impact statement", atts[0].MatterAttachmentName)
}
