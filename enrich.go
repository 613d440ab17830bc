package seoentity

import (
	"net/url"
	"strings"
)

// WikipediaBaseURL is the prefix of guessed reference links.
const WikipediaBaseURL = "https://en.wikipedia.org/wiki/"

// schemaTypes maps entity types onto candidate schema.org types.
var schemaTypes = map[EntityType][]string{
	TypePerson:       {"Person"},
	TypeOrg:          {"Organization", "LocalBusiness"},
	TypeLocation:     {"Place", "AdministrativeArea", "PostalAddress"},
	TypeEvent:        {"Event"},
	TypeWorkOfArt:    {"CreativeWork"},
	TypeConsumerGood: {"Product"},
	TypeDate:         {"Date"},
	TypePrice:        {"PriceSpecification", "MonetaryAmount"},
	TypeAddress:      {"PostalAddress"},
	TypePhoneNumber:  {"ContactPoint"},
}

// SchemaTypes returns the candidate schema.org types for an entity type.
// Types without a mapping return an empty, non-nil slice.
func SchemaTypes(t EntityType) []string {
	return append([]string{}, schemaTypes[t]...)
}

// Enrich computes an entity's occurrence count in text, its reference link
// and its schema.org candidates.
func Enrich(e Entity, text string) EnrichedEntity {
	link, status := ReferenceLink(e)
	return EnrichedEntity{
		Entity:          e,
		OccurrenceCount: CountOccurrences(e.Name, text),
		Link:            link,
		LinkStatus:      status,
		SchemaTypes:     SchemaTypes(e.Type),
	}
}

// EnrichAll enriches each entity against the same text, keeping order.
func EnrichAll(entities []Entity, text string) []EnrichedEntity {
	out := make([]EnrichedEntity, len(entities))
	for i, e := range entities {
		out[i] = Enrich(e, text)
	}
	return out
}

// ReferenceLink returns the service-provided link when it is a usable
// absolute URL, and a guessed Wikipedia link otherwise. The link is never empty.
func ReferenceLink(e Entity) (string, LinkStatus) {
	if isAbsoluteHTTPURL(e.ReferenceURL) {
		return e.ReferenceURL, LinkConfirmed
	}
	return GuessReferenceURL(e.Name), LinkGuessed
}

// GuessReferenceURL joins the words of name with underscores onto the
// Wikipedia article prefix. An empty name yields the search page.
func GuessReferenceURL(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return WikipediaBaseURL + "Special:Search"
	}
	return WikipediaBaseURL + url.PathEscape(strings.Join(words, "_"))
}

func isAbsoluteHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
