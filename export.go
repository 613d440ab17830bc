package seoentity

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ExportRow is one entity in the tabular export.
type ExportRow struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Relevance   int      `json:"relevance"`
	Salience    float64  `json:"salience"`
	Occurrences int      `json:"occurrences"`
	Link        string   `json:"link"`
	LinkStatus  string   `json:"linkStatus"`
	SchemaTypes []string `json:"schemaTypes"`
}

// csvHeader is the header row written by WriteCSV.
var csvHeader = []string{"name", "type", "relevance", "salience", "occurrences", "link", "link_status", "schema_types"}

// ExportRows converts enriched entities to export rows, stripping any markup
// from text fields.
func ExportRows(entities []EnrichedEntity) []ExportRow {
	rows := make([]ExportRow, 0, len(entities))
	for _, e := range entities {
		schema := make([]string, 0, len(e.SchemaTypes))
		for _, s := range e.SchemaTypes {
			schema = append(schema, StripMarkup(s))
		}
		rows = append(rows, ExportRow{
			Name:        StripMarkup(e.Name),
			Type:        StripMarkup(string(e.Type)),
			Relevance:   e.Relevance,
			Salience:    e.Salience,
			Occurrences: e.OccurrenceCount,
			Link:        e.Link,
			LinkStatus:  string(e.LinkStatus),
			SchemaTypes: schema,
		})
	}
	return rows
}

// WriteJSON writes the entities as an indented JSON array of export rows.
func WriteJSON(w io.Writer, entities []EnrichedEntity) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportRows(entities))
}

// WriteCSV writes the entities as CSV with a header row. Schema types are
// joined with "; ".
func WriteCSV(w io.Writer, entities []EnrichedEntity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range ExportRows(entities) {
		record := []string{
			r.Name,
			r.Type,
			strconv.Itoa(r.Relevance),
			strconv.FormatFloat(r.Salience, 'f', 4, 64),
			strconv.Itoa(r.Occurrences),
			r.Link,
			r.LinkStatus,
			strings.Join(r.SchemaTypes, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StripMarkup removes tags from s, leaving plain text. Entities are only
// unescaped when s contains markup, so plain text such as "AT&T" or
// "a &copy; b" is returned as is.
func StripMarkup(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
