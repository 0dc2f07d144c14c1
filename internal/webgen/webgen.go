// Package webgen renders the tracked-event state into a static HTML
// site: an updates column on the left and paginated upcoming hearings
// on the right. Output is plain files suitable for GitHub Pages.
package webgen

import (
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/civicsignal/hearingwatch/internal/types"
)

const displayDateLayout = "Monday, January 2, 2006"

// Config controls page generation.
type Config struct {
	Title    string
	SiteDir  string
	PageSize int

	// BadgeWindowDays bounds how long the NEW badge stays on a card.
	BadgeWindowDays int
}

// DefaultConfig returns sensible page-generation defaults.
func DefaultConfig() Config {
	return Config{
		Title:           "NYC Legistar Hearing Monitor",
		SiteDir:         "docs",
		PageSize:        25,
		BadgeWindowDays: 7,
	}
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if c.SiteDir == "" {
		return fmt.Errorf("site directory is required")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive (got %d)", c.PageSize)
	}
	if c.BadgeWindowDays < 0 {
		return fmt.Errorf("badge window must not be negative (got %d)", c.BadgeWindowDays)
	}
	return nil
}

// Generator writes the static site.
type Generator struct {
	config Config
	now    func() time.Time
	logger *slog.Logger
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator with the given configuration.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		config: cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "webgen"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate renders the site into SiteDir. Page 1 is index.html; further
// pages are page2.html, page3.html and so on. Stale pageN.html files
// beyond the current page count are removed so shrinking data does not
// leave orphans behind.
func (g *Generator) Generate(state map[string]*types.TrackedEvent, updates []types.RecentUpdate) error {
	if err := os.MkdirAll(g.config.SiteDir, 0755); err != nil {
		return fmt.Errorf("create site directory: %w", err)
	}

	upcoming := g.upcomingCards(state)
	updateCards := g.updateCards(state, updates)

	totalPages := (len(upcoming) + g.config.PageSize - 1) / g.config.PageSize
	if totalPages == 0 {
		totalPages = 1
	}

	for page := 1; page <= totalPages; page++ {
		start := (page - 1) * g.config.PageSize
		end := start + g.config.PageSize
		if end > len(upcoming) {
			end = len(upcoming)
		}

		data := pageData{
			Title:         g.config.Title,
			GeneratedAt:   g.now().Format(displayDateLayout + " at 3:04 PM"),
			Updates:       updateCards,
			Upcoming:      upcoming[start:end],
			TotalUpcoming: len(upcoming),
			Pagination:    buildPagination(page, totalPages),
		}

		if err := g.writePage(pageFileName(page), data); err != nil {
			return err
		}
	}

	g.removeStalePages(totalPages)
	g.logger.Info("site generated",
		"pages", totalPages,
		"upcoming", len(upcoming),
		"updates", len(updateCards))
	return nil
}

func pageFileName(page int) string {
	if page == 1 {
		return "index.html"
	}
	return fmt.Sprintf("page%d.html", page)
}

func (g *Generator) writePage(name string, data pageData) error {
	path := filepath.Join(g.config.SiteDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := pageTemplate.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

// removeStalePages deletes pageN.html files past the current last page.
func (g *Generator) removeStalePages(totalPages int) {
	for page := totalPages + 1; ; page++ {
		path := filepath.Join(g.config.SiteDir, pageFileName(page))
		if err := os.Remove(path); err != nil {
			return
		}
	}
}

// upcomingCards selects and orders the hearings for the right column:
// anything still carrying a date today or later, except removed events
// and deferrals that already have a replacement on the page.
func (g *Generator) upcomingCards(state map[string]*types.TrackedEvent) []eventCard {
	today := g.now().Format(types.DateLayout)

	var cards []eventCard
	for _, ev := range state {
		if ev.Status == types.StatusDateRemoved || ev.Status == types.StatusDeferredRescheduled {
			continue
		}
		if ev.Latest.Date == "" || ev.Latest.Date < today {
			continue
		}
		cards = append(cards, g.buildEventCard(state, ev))
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].sortDate != cards[j].sortDate {
			return cards[i].sortDate < cards[j].sortDate
		}
		return cards[i].ID < cards[j].ID
	})
	return cards
}

func (g *Generator) buildEventCard(state map[string]*types.TrackedEvent, ev *types.TrackedEvent) eventCard {
	card := eventCard{
		ID:       ev.ID(),
		BodyName: ev.Latest.BodyName,
		Date:     formatDisplayDate(ev.Latest.Date),
		Time:     formatDisplayTime(ev.Latest.Time),
		Location: orDefault(ev.Latest.Location, "TBD"),
		Comment:  ev.Latest.Comment,
		Agenda:   ev.Latest.AgendaLink,
		sortDate: ev.Latest.Date,
	}

	switch ev.Status {
	case types.StatusDeferredPendingMatch:
		card.Deferred = true
		card.RescheduleNote = "Awaiting information"
	case types.StatusDeferredNoMatch:
		card.Deferred = true
		card.RescheduleNote = "None found after grace period"
	case types.StatusActive:
		switch {
		case ev.RescheduledFrom != "":
			card.Rescheduled = true
			if orig, ok := state[ev.RescheduledFrom]; ok {
				card.RescheduledFrom = formatDisplayDate(orig.Latest.Date)
			}
		case ev.PreviousDate != "":
			// Same-id move; the old date lives on the event itself.
			card.Rescheduled = true
			card.RescheduledFrom = formatDisplayDate(ev.PreviousDate)
		case ev.LastAlertType == types.AlertNew && g.withinBadgeWindow(ev.LastAlertAt):
			card.New = true
		}
	}
	return card
}

// updateCards renders the left column from the recent-updates read
// path. The kind of card depends on where the event has landed since
// its alert fired, not just on the alert itself.
func (g *Generator) updateCards(state map[string]*types.TrackedEvent, updates []types.RecentUpdate) []updateCard {
	var cards []updateCard
	for _, u := range updates {
		ev := u.Event
		card := updateCard{
			BodyName: ev.Latest.BodyName,
			Date:     formatDisplayDate(ev.Latest.Date),
			Time:     formatDisplayTime(ev.Latest.Time),
			Location: ev.Latest.Location,
			Agenda:   ev.Latest.AgendaLink,
		}

		switch {
		case u.AlertType == types.AlertNew && ev.RescheduledFrom != "":
			card.Kind = "rescheduled_new"
			card.Heading = "RESCHEDULED EVENT: " + ev.Latest.BodyName
			if orig, ok := state[ev.RescheduledFrom]; ok {
				card.OriginalDate = formatDisplayDate(orig.Latest.Date)
				card.OriginalTime = formatDisplayTime(orig.Latest.Time)
			}
		case u.AlertType == types.AlertNew:
			card.Kind = "new"
			card.Heading = "NEW: " + ev.Latest.BodyName
		case ev.Status == types.StatusDeferredRescheduled:
			card.Kind = "rescheduled_original"
			card.Heading = "DEFERRED & RESCHEDULED: " + ev.Latest.BodyName
			if repl, ok := state[ev.RescheduledTo]; ok {
				card.NewDate = formatDisplayDate(repl.Latest.Date)
				card.NewTime = formatDisplayTime(repl.Latest.Time)
			}
		case ev.Status == types.StatusDeferredNoMatch:
			card.Kind = "deferred_nomatch"
			card.Heading = "DEFERRED (No Match): " + ev.Latest.BodyName
		default:
			card.Kind = "deferred_pending"
			card.Heading = "DEFERRED: " + ev.Latest.BodyName
		}
		cards = append(cards, card)
	}
	return cards
}

// buildPagination produces a windowed page list with first/last anchors
// and ellipsis gaps, the style most static listings use.
func buildPagination(current, total int) pagination {
	p := pagination{Current: current, Total: total}
	if total <= 1 {
		return p
	}

	if current > 1 {
		p.PrevHref = pageFileName(current - 1)
	}
	if current < total {
		p.NextHref = pageFileName(current + 1)
	}

	start := current - 2
	if start < 1 {
		start = 1
	}
	end := current + 2
	if end > total {
		end = total
	}

	if start > 1 {
		p.Items = append(p.Items, pageItem{Label: "1", Href: pageFileName(1)})
		if start > 2 {
			p.Items = append(p.Items, pageItem{Label: "...", Gap: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Items = append(p.Items, pageItem{
			Label:  fmt.Sprintf("%d", i),
			Href:   pageFileName(i),
			Active: i == current,
		})
	}
	if end < total {
		if end < total-1 {
			p.Items = append(p.Items, pageItem{Label: "...", Gap: true})
		}
		p.Items = append(p.Items, pageItem{Label: fmt.Sprintf("%d", total), Href: pageFileName(total)})
	}
	return p
}

func (g *Generator) withinBadgeWindow(alertAt time.Time) bool {
	if g.config.BadgeWindowDays == 0 {
		return false
	}
	cutoff := g.now().AddDate(0, 0, -g.config.BadgeWindowDays)
	return !alertAt.Before(cutoff)
}

func formatDisplayDate(date string) string {
	if date == "" {
		return "TBD"
	}
	t, err := time.Parse(types.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDateLayout)
}

func formatDisplayTime(t string) string {
	if t == "" {
		return "Time TBD"
	}
	return t
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// eventCard is the view model for one upcoming hearing.
type eventCard struct {
	ID              string
	BodyName        string
	Date            string
	Time            string
	Location        string
	Comment         string
	Agenda          string
	New             bool
	Deferred        bool
	Rescheduled     bool
	RescheduledFrom string
	RescheduleNote  string

	sortDate string
}

// updateCard is the view model for one item in the updates column.
type updateCard struct {
	Kind         string
	Heading      string
	BodyName     string
	Date         string
	Time         string
	Location     string
	Agenda       string
	OriginalDate string
	OriginalTime string
	NewDate      string
	NewTime      string
}

type pageItem struct {
	Label  string
	Href   string
	Active bool
	Gap    bool
}

type pagination struct {
	Current  int
	Total    int
	PrevHref string
	NextHref string
	Items    []pageItem
}

type pageData struct {
	Title         string
	GeneratedAt   string
	Updates       []updateCard
	Upcoming      []eventCard
	TotalUpcoming int
	Pagination    pagination
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))
