package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"seriesearch/internal/domain"
)

// Catalog is the TUI-facing subset of the backend client.
type Catalog interface {
	Search(ctx context.Context, query string, topN int) ([]domain.ResultItem, error)
	Recommend(ctx context.Context, userID int, topN int) ([]domain.ResultItem, error)
	SeriesMeta(ctx context.Context, names []string) (map[string]domain.MetaInfo, error)
	Rate(ctx context.Context, name string, score int) error
	Unrate(ctx context.Context, name string) error
	MyRatings(ctx context.Context) (map[string]int, error)
}

// RatingStore is the TUI-facing subset of the session rating store.
type RatingStore interface {
	Install(scores map[string]int)
	Get(name string) (int, bool)
	Set(name string, score int)
	Delete(name string)
}

type paneID int

const (
	paneSearch paneID = iota
	paneRecs
	paneCount
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSearch
	focusRecs
)

type flashLevel int

const (
	flashInfo flashLevel = iota
	flashSuccess
	flashError
)

type flash struct {
	level flashLevel
	text  string
}

// Messages produced by asynchronous commands. Every network completion
// re-enters Update as one of these; generation stamps are compared at apply
// time so superseded responses are dropped rather than cancelled in flight.
type (
	debounceMsg struct{ seq int }

	searchResultsMsg struct {
		gen   int
		items []domain.ResultItem
		err   error
	}

	recsMsg struct {
		items []domain.ResultItem
		err   error
	}

	metaMsg struct {
		pane paneID
		gen  int
		meta map[string]domain.MetaInfo
		err  error
	}

	ratingsLoadedMsg struct {
		scores map[string]int // nil on a failed fetch; the store degrades to empty
	}

	rateDoneMsg struct {
		title string
		score int
		err   error
	}

	unrateDoneMsg struct {
		title string
		err   error
	}
)

// Options carries the tunables the model needs from config.
type Options struct {
	UserID        int
	UserName      string
	TopN          int
	Debounce      time.Duration
	MinQueryLen   int
	SynopsisLimit int
}

// Model is the Bubble Tea model for the discovery client.
type Model struct {
	catalog Catalog
	store   RatingStore
	opts    Options

	input    textinput.Model
	spin     spinner.Model
	panes    [paneCount]pane
	focus    focusArea
	flash    flash
	width    int
	height   int
	ready    bool
	signedIn bool

	lastInput string
	inputSeq  int // bumped per input change; stale debounce ticks are ignored
	searchGen int // bumped per dispatched search; stale responses are dropped

	searching   bool
	loadingRecs bool
}

// New creates a new TUI model instance.
func New(catalog Catalog, store RatingStore, opts Options) Model {
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	if opts.MinQueryLen <= 0 {
		opts.MinQueryLen = 2
	}
	if opts.SynopsisLimit <= 0 {
		opts.SynopsisLimit = 400
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type to search the catalog"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		catalog:  catalog,
		store:    store,
		opts:     opts,
		input:    ti,
		spin:     sp,
		signedIn: opts.UserID != 0,
		flash:    flash{level: flashInfo, text: "Type at least 2 characters to search."},
	}
}

// Init starts the cursor blink and, for signed-in users, the one-shot
// ratings load.
func (m Model) Init() tea.Cmd {
	if m.signedIn {
		return tea.Batch(textinput.Blink, m.loadRatingsCmd())
	}
	return textinput.Blink
}

// Update handles key events and asynchronous completions.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case debounceMsg:
		return m.applyDebounce(msg)

	case searchResultsMsg:
		return m.applySearchResults(msg)

	case recsMsg:
		return m.applyRecs(msg)

	case metaMsg:
		return m.applyMeta(msg)

	case ratingsLoadedMsg:
		m.store.Install(msg.scores)
		// cards rendered before the load picked up rating 0; re-scan them
		cmds := []tea.Cmd{m.attachPane(paneSearch), m.attachPane(paneRecs)}
		if m.signedIn {
			m.loadingRecs = true
			cmds = append(cmds, m.spin.Tick, m.recsCmd())
		}
		return m, tea.Batch(cmds...)

	case rateDoneMsg:
		if msg.err != nil {
			m.flash = flash{flashError, fmt.Sprintf("Could not save rating for %q.", msg.title)}
			return m, nil
		}
		m.flash = flash{flashSuccess, fmt.Sprintf("Saved %d/5 for %q.", msg.score, msg.title)}
		cmd := m.refreshRecs()
		return m, cmd

	case unrateDoneMsg:
		if msg.err != nil {
			m.flash = flash{flashError, fmt.Sprintf("Could not remove rating for %q.", msg.title)}
			return m, nil
		}
		m.flash = flash{flashSuccess, fmt.Sprintf("Removed rating for %q.", msg.title)}
		cmd := m.refreshRecs()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
		return m, tea.Quit
	}
	if msg.String() == "tab" {
		return m.cycleFocus(), nil
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != m.lastInput {
			m.lastInput = m.input.Value()
			var gateCmd tea.Cmd
			m, gateCmd = m.gateInput()
			return m, tea.Batch(cmd, gateCmd)
		}
		return m, cmd
	}

	p := m.focusedPane()
	switch msg.String() {
	case "up", "k":
		p.moveCursor(-1)
		return m, nil
	case "down", "j":
		p.moveCursor(1)
		return m, nil
	case "left", "h":
		m.previewStar(p, -1)
		return m, nil
	case "right", "l":
		m.previewStar(p, 1)
		return m, nil
	case "enter":
		return m.commitRating(p)
	case "x":
		return m.clearRating(p)
	case "esc", "/":
		m.focus = focusInput
		m.input.Focus()
		if c := p.selected(); c != nil {
			c.hover = 0
		}
		return m, textinput.Blink
	}
	return m, nil
}

// gateInput is the request gate: it runs on every effective input change.
// Too-short queries clear the result surface immediately with no network
// call; anything else schedules a debounced dispatch.
func (m Model) gateInput() (Model, tea.Cmd) {
	m.inputSeq++
	q := strings.TrimSpace(m.input.Value())
	if utf8.RuneCountInString(q) < m.opts.MinQueryLen {
		m.searchGen++ // in-flight responses are now stale
		m.searching = false
		m.panes[paneSearch].clear()
		return m, nil
	}
	return m, m.debounceCmd(m.inputSeq)
}

func (m Model) applyDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.inputSeq {
		return m, nil
	}
	q := strings.TrimSpace(m.input.Value())
	if utf8.RuneCountInString(q) < m.opts.MinQueryLen {
		return m, nil
	}
	m.searchGen++
	m.searching = true
	return m, tea.Batch(m.spin.Tick, m.searchCmd(q, m.searchGen))
}

func (m Model) applySearchResults(msg searchResultsMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.searchGen {
		// superseded by a later dispatch; the newer request owns the spinner
		return m, nil
	}
	m.searching = false
	if msg.err != nil {
		m.flash = flash{flashError, "Search failed. Check the server and try again."}
		return m, nil
	}
	m.panes[paneSearch].setItems(msg.items)
	if len(msg.items) == 0 {
		m.flash = flash{flashInfo, "No results."}
		return m, nil
	}
	m.flash = flash{flashInfo, fmt.Sprintf("%d results.", len(msg.items))}
	cmd := m.attachPane(paneSearch)
	return m, cmd
}

func (m Model) applyRecs(msg recsMsg) (tea.Model, tea.Cmd) {
	m.loadingRecs = false
	if msg.err != nil {
		m.flash = flash{flashError, "Could not load recommendations."}
		return m, nil
	}
	m.panes[paneRecs].setItems(msg.items)
	cmd := m.attachPane(paneRecs)
	return m, cmd
}

func (m Model) applyMeta(msg metaMsg) (tea.Model, tea.Cmd) {
	p := &m.panes[msg.pane]
	if msg.gen != p.gen {
		return m, nil
	}
	// enrichment is best-effort: failures degrade to bare cards, but the pane
	// still records that its round trip settled so the view stops waiting
	p.metaSettled = true
	if msg.err != nil {
		return m, nil
	}
	p.applyMeta(msg.meta, m.opts.SynopsisLimit)
	return m, nil
}

// attachPane is the post-render hook run after every batch of card
// insertions. Attachment and enrichment are both idempotent, so calling it
// again over an unchanged pane is a no-op.
func (m *Model) attachPane(id paneID) tea.Cmd {
	p := &m.panes[id]
	missing := p.attach(m.store)
	if len(missing) == 0 {
		return nil
	}
	p.metaSettled = false
	return m.enrichCmd(id, p.gen, missing)
}

func (m *Model) previewStar(p *pane, delta int) {
	c := p.selected()
	if c == nil {
		return
	}
	base := c.hover
	if base == 0 {
		base = c.rating
	}
	base += delta
	if base < 1 {
		base = 1
	}
	if base > 5 {
		base = 5
	}
	c.hover = base
}

func (m Model) commitRating(p *pane) (tea.Model, tea.Cmd) {
	c := p.selected()
	if c == nil || c.hover == 0 {
		return m, nil
	}
	if !m.signedIn {
		m.flash = flash{flashInfo, "Sign in to rate series."}
		return m, nil
	}
	score := c.hover
	c.rating = score
	c.canClear = true
	c.hover = 0
	m.store.Set(c.title, score)
	return m, m.rateCmd(c.title, score)
}

func (m Model) clearRating(p *pane) (tea.Model, tea.Cmd) {
	c := p.selected()
	if c == nil || c.rating == 0 {
		return m, nil
	}
	if !m.signedIn {
		m.flash = flash{flashInfo, "Sign in to rate series."}
		return m, nil
	}
	title := c.title
	c.rating = 0
	c.canClear = false
	c.hover = 0
	m.store.Delete(title)
	return m, m.unrateCmd(title)
}

func (m Model) cycleFocus() Model {
	if old := m.focusedPane(); old != nil {
		if c := old.selected(); c != nil {
			c.hover = 0
		}
	}
	switch m.focus {
	case focusInput:
		m.focus = focusSearch
		m.input.Blur()
	case focusSearch:
		m.focus = focusRecs
	default:
		m.focus = focusInput
		m.input.Focus()
	}
	return m
}

func (m *Model) focusedPane() *pane {
	switch m.focus {
	case focusSearch:
		return &m.panes[paneSearch]
	case focusRecs:
		return &m.panes[paneRecs]
	}
	return nil
}

func (m Model) loading() bool { return m.searching || m.loadingRecs }

func (m *Model) refreshRecs() tea.Cmd {
	if !m.signedIn {
		return nil
	}
	m.loadingRecs = true
	return tea.Batch(m.spin.Tick, m.recsCmd())
}

// --- commands ---

func (m Model) debounceCmd(seq int) tea.Cmd {
	return tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

func (m Model) searchCmd(query string, gen int) tea.Cmd {
	return func() tea.Msg {
		items, err := m.catalog.Search(context.Background(), query, m.opts.TopN)
		return searchResultsMsg{gen: gen, items: items, err: err}
	}
}

func (m Model) recsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.catalog.Recommend(context.Background(), m.opts.UserID, m.opts.TopN)
		return recsMsg{items: items, err: err}
	}
}

func (m Model) enrichCmd(id paneID, gen int, names []string) tea.Cmd {
	return func() tea.Msg {
		meta, err := m.catalog.SeriesMeta(context.Background(), names)
		return metaMsg{pane: id, gen: gen, meta: meta, err: err}
	}
}

func (m Model) rateCmd(title string, score int) tea.Cmd {
	return func() tea.Msg {
		err := m.catalog.Rate(context.Background(), title, score)
		return rateDoneMsg{title: title, score: score, err: err}
	}
}

func (m Model) unrateCmd(title string) tea.Cmd {
	return func() tea.Msg {
		err := m.catalog.Unrate(context.Background(), title)
		return unrateDoneMsg{title: title, err: err}
	}
}

// loadRatingsCmd performs the one-shot ratings fetch off the update loop and
// carries the map back as a message; Update installs it into the store, so
// the store itself never waits on the network.
func (m Model) loadRatingsCmd() tea.Cmd {
	return func() tea.Msg {
		scores, err := m.catalog.MyRatings(context.Background())
		if err != nil {
			return ratingsLoadedMsg{}
		}
		return ratingsLoadedMsg{scores: scores}
	}
}
