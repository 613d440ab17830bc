package seoentity

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode/utf8"
)

// MinHighlightLength is the shortest entity name, in runes, that is highlighted.
// Shorter names match too much unrelated text.
const MinHighlightLength = 3

// typeColors keys the highlight background by entity type.
var typeColors = map[EntityType]string{
	TypePerson:       "#ffd6a5",
	TypeOrg:          "#caffbf",
	TypeLocation:     "#9bf6ff",
	TypeEvent:        "#ffc6ff",
	TypeWorkOfArt:    "#bdb2ff",
	TypeConsumerGood: "#fdffb6",
	TypeDate:         "#e2ece9",
	TypeNumber:       "#dee2e6",
	TypePrice:        "#b9fbc0",
	TypeAddress:      "#a0c4ff",
	TypePhoneNumber:  "#f1c0e8",
	TypeCardinal:     "#dee2e6",
	TypeOrdinal:      "#dee2e6",
	TypeOther:        "#eeeeee",
}

// TypeColor returns the highlight color for an entity type.
func TypeColor(t EntityType) string {
	if c, ok := typeColors[t]; ok {
		return c
	}
	return typeColors[TypeOther]
}

// span is a claimed byte range of the source text.
type span struct {
	start, end int
	entity     *Entity
}

// Highlight returns text as HTML with every whole-word mention of an entity
// wrapped in a <mark> element. Longer names claim text first, so a mention
// of "New York City" is one span rather than "New York" plus "City". Spans
// never nest or overlap, and all literal text is escaped.
func Highlight(text string, entities []Entity) string {
	candidates := highlightCandidates(entities)

	var claimed []span
	for i := range candidates {
		m := newWordMatcher(candidates[i].Name)
		for _, loc := range m.FindAll(text) {
			claimed = claim(claimed, span{start: loc[0], end: loc[1], entity: &candidates[i]})
		}
	}

	var b strings.Builder
	b.Grow(len(text) + len(claimed)*128)
	pos := 0
	for _, s := range claimed {
		b.WriteString(html.EscapeString(text[pos:s.start]))
		writeMark(&b, text[s.start:s.end], s.entity)
		pos = s.end
	}
	b.WriteString(html.EscapeString(text[pos:]))
	return b.String()
}

// highlightCandidates filters out names too short to highlight and orders
// the rest by descending length.
func highlightCandidates(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if utf8.RuneCountInString(strings.TrimSpace(e.Name)) < MinHighlightLength {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i].Name) > utf8.RuneCountInString(out[j].Name)
	})
	return out
}

// claim inserts s into the sorted span list unless it overlaps a span
// already there.
func claim(claimed []span, s span) []span {
	i := sort.Search(len(claimed), func(i int) bool { return claimed[i].start >= s.start })
	if i > 0 && claimed[i-1].end > s.start {
		return claimed
	}
	if i < len(claimed) && claimed[i].start < s.end {
		return claimed
	}
	claimed = append(claimed, span{})
	copy(claimed[i+1:], claimed[i:])
	claimed[i] = s
	return claimed
}

func writeMark(b *strings.Builder, matched string, e *Entity) {
	typ := string(e.Type)
	fmt.Fprintf(b,
		`<mark class="entity entity-%s" style="background-color:%s" title="%s">%s<span class="entity-label">%s</span></mark>`,
		html.EscapeString(strings.ToLower(typ)),
		TypeColor(e.Type),
		html.EscapeString(fmt.Sprintf("Type: %s | Relevance: %d%%", typ, e.Relevance)),
		html.EscapeString(matched),
		html.EscapeString(typ),
	)
}
