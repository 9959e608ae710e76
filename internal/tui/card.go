package tui

import (
	"strings"

	"seriesearch/internal/domain"
)

// card is the client-side state of one rendered result. The title string is
// the join key for both ratings and metadata.
type card struct {
	title    string
	score    float64
	rating   int  // committed score, 0 = unrated
	hover    int  // previewed score, 0 = no preview
	canClear bool // clear affordance visible
	enriched bool // metadata injected, at most once per card instance
	imageURL string
	synopsis string
}

// pane is one observed result container (search results or recommendations).
// gen is bumped every time the card set is replaced; enrichment responses
// stamped with an older gen are dropped instead of touching newer cards.
type pane struct {
	cards       []card
	cursor      int
	gen         int
	metaSettled bool // this card set's enrichment response was applied (or failed)
}

// setItems replaces the pane's cards from freshly fetched rows. Inline
// synopsis/image from the legacy enriched wire shape is discarded here; the
// metadata enricher is authoritative for both.
func (p *pane) setItems(items []domain.ResultItem) {
	p.gen++
	p.metaSettled = false
	p.cards = make([]card, 0, len(items))
	for _, it := range items {
		p.cards = append(p.cards, card{title: it.Name, score: it.Score})
	}
	if p.cursor >= len(p.cards) {
		p.cursor = 0
	}
}

func (p *pane) clear() {
	p.gen++
	p.metaSettled = false
	p.cards = nil
	p.cursor = 0
}

// ratingGetter is the subset of the rating store the attach pass needs.
type ratingGetter interface {
	Get(name string) (int, bool)
}

// attach is the post-render pass run after every batch of card insertions.
// It initializes each card's committed rating from the session store and
// returns the deduplicated titles still lacking metadata. Running it again
// over an unchanged pane re-reads the same store state and returns nothing
// new once every card is enriched, so a repeated pass is a no-op.
func (p *pane) attach(store ratingGetter) []string {
	seen := make(map[string]struct{}, len(p.cards))
	var missing []string
	for i := range p.cards {
		c := &p.cards[i]
		score, ok := store.Get(c.title)
		if !ok {
			score = 0
		}
		c.rating = score
		c.canClear = score > 0
		if c.enriched {
			continue
		}
		name := strings.TrimSpace(c.title)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		missing = append(missing, name)
	}
	return missing
}

// applyMeta injects fetched metadata into cards matched by exact trimmed
// title. Cards already enriched are left untouched; titles absent from the
// response, or present with entirely empty info, are skipped without error.
func (p *pane) applyMeta(meta map[string]domain.MetaInfo, synopsisLimit int) {
	for i := range p.cards {
		c := &p.cards[i]
		if c.enriched {
			continue
		}
		info, ok := meta[strings.TrimSpace(c.title)]
		if !ok || info == (domain.MetaInfo{}) {
			continue
		}
		c.enriched = true
		c.imageURL = info.ImageURL
		c.synopsis = truncateSynopsis(info.Synopsis, synopsisLimit)
	}
}

func (p *pane) selected() *card {
	if len(p.cards) == 0 || p.cursor < 0 || p.cursor >= len(p.cards) {
		return nil
	}
	return &p.cards[p.cursor]
}

func (p *pane) moveCursor(delta int) {
	if len(p.cards) == 0 {
		return
	}
	// hover is a transient preview; leaving the card is the hover exit
	if c := p.selected(); c != nil {
		c.hover = 0
	}
	p.cursor = (p.cursor + delta + len(p.cards)) % len(p.cards)
}

func truncateSynopsis(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
