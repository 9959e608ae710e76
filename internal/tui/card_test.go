package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seriesearch/internal/domain"
)

type mapRatings map[string]int

func (m mapRatings) Get(name string) (int, bool) {
	score, ok := m[name]
	return score, ok
}

func TestSetItemsDiscardsLegacyInlineMeta(t *testing.T) {
	var p pane
	p.setItems([]domain.ResultItem{
		{Name: "Dark", Score: 0.7, Synopsis: "legacy inline text", ImageURL: "http://img/old.jpg"},
	})
	require.Len(t, p.cards, 1)
	assert.Empty(t, p.cards[0].synopsis)
	assert.Empty(t, p.cards[0].imageURL)
	assert.False(t, p.cards[0].enriched)
}

func TestSetItemsBumpsGeneration(t *testing.T) {
	var p pane
	g0 := p.gen
	p.setItems([]domain.ResultItem{{Name: "Lost"}})
	p.setItems([]domain.ResultItem{{Name: "Dark"}})
	assert.Equal(t, g0+2, p.gen)
}

func TestAttachDeduplicatesAndTrimsTitles(t *testing.T) {
	var p pane
	p.setItems([]domain.ResultItem{
		{Name: "Naruto"},
		{Name: " Naruto "},
		{Name: "Dark"},
		{Name: "   "},
	})
	missing := p.attach(mapRatings{"Dark": 3})
	assert.Equal(t, []string{"Naruto", "Dark"}, missing)
	assert.Equal(t, 3, p.cards[2].rating)
	assert.True(t, p.cards[2].canClear)
	assert.Zero(t, p.cards[0].rating)
}

func TestAttachSkipsEnrichedCards(t *testing.T) {
	var p pane
	p.setItems([]domain.ResultItem{{Name: "Naruto"}, {Name: "Dark"}})
	p.applyMeta(map[string]domain.MetaInfo{"Naruto": {Synopsis: "ninja"}}, 400)
	missing := p.attach(mapRatings{})
	assert.Equal(t, []string{"Dark"}, missing)
}

func TestApplyMetaSkipsEmptyInfo(t *testing.T) {
	var p pane
	p.setItems([]domain.ResultItem{{Name: "Naruto"}, {Name: "Dark"}})
	// a title present with entirely empty info is the same as absent
	p.applyMeta(map[string]domain.MetaInfo{
		"Naruto": {},
		"Dark":   {Synopsis: "time travel"},
	}, 400)
	assert.False(t, p.cards[0].enriched)
	assert.True(t, p.cards[1].enriched)

	missing := p.attach(mapRatings{})
	assert.Equal(t, []string{"Naruto"}, missing)
}

func TestApplyMetaSkipsRemovedTitles(t *testing.T) {
	var p pane
	p.setItems([]domain.ResultItem{{Name: "Lost"}})
	// response for titles no longer rendered is simply ignored
	p.applyMeta(map[string]domain.MetaInfo{"Dark": {Synopsis: "gone"}}, 400)
	assert.False(t, p.cards[0].enriched)
}

func TestMoveCursorWrapsAndResetsHover(t *testing.T) {
	var p pane
	p.setItems([]domain.ResultItem{{Name: "A"}, {Name: "B"}})
	p.cards[0].hover = 4
	p.moveCursor(-1)
	assert.Equal(t, 1, p.cursor)
	assert.Zero(t, p.cards[0].hover)
}
