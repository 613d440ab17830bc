package seoentity

import "strings"

// EntityType is a categorical tag from a closed vocabulary.
type EntityType string

// Entity types. Service-specific tags are mapped onto these by ParseEntityType.
const (
	TypePerson       EntityType = "PERSON"
	TypeOrg          EntityType = "ORG"
	TypeLocation     EntityType = "LOCATION"
	TypeEvent        EntityType = "EVENT"
	TypeWorkOfArt    EntityType = "WORK_OF_ART"
	TypeConsumerGood EntityType = "CONSUMER_GOOD"
	TypeDate         EntityType = "DATE"
	TypeNumber       EntityType = "NUMBER"
	TypePrice        EntityType = "PRICE"
	TypeAddress      EntityType = "ADDRESS"
	TypePhoneNumber  EntityType = "PHONE_NUMBER"
	TypeCardinal     EntityType = "CARDINAL"
	TypeOrdinal      EntityType = "ORDINAL"
	TypeOther        EntityType = "OTHER"
)

// EntityTypes lists the vocabulary in display order.
var EntityTypes = []EntityType{
	TypePerson, TypeOrg, TypeLocation, TypeEvent, TypeWorkOfArt,
	TypeConsumerGood, TypeDate, TypeNumber, TypePrice, TypeAddress,
	TypePhoneNumber, TypeCardinal, TypeOrdinal, TypeOther,
}

// typeSynonyms maps upper-cased service tags onto the vocabulary.
// Canonical tags map to themselves.
var typeSynonyms = map[string]EntityType{
	"PERSON":        TypePerson,
	"PER":           TypePerson,
	"PEOPLE":        TypePerson,
	"ORG":           TypeOrg,
	"ORGANIZATION":  TypeOrg,
	"ORGANISATION":  TypeOrg,
	"COMPANY":       TypeOrg,
	"LOCATION":      TypeLocation,
	"LOC":           TypeLocation,
	"GPE":           TypeLocation,
	"PLACE":         TypeLocation,
	"EVENT":         TypeEvent,
	"WORK_OF_ART":   TypeWorkOfArt,
	"CONSUMER_GOOD": TypeConsumerGood,
	"PRODUCT":       TypeConsumerGood,
	"DATE":          TypeDate,
	"NUMBER":        TypeNumber,
	"PRICE":         TypePrice,
	"MONEY":         TypePrice,
	"ADDRESS":       TypeAddress,
	"PHONE_NUMBER":  TypePhoneNumber,
	"PHONE":         TypePhoneNumber,
	"CARDINAL":      TypeCardinal,
	"ORDINAL":       TypeOrdinal,
	"OTHER":         TypeOther,
	"UNKNOWN":       TypeOther,
}

// ParseEntityType maps a service tag onto the closed vocabulary.
// Unrecognized tags map to TypeOther.
func ParseEntityType(s string) EntityType {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, " ", "_")
	if t, ok := typeSynonyms[key]; ok {
		return t
	}
	return TypeOther
}

// RawEntity is one entity as returned by the extraction service, before
// normalization and deduplication.
type RawEntity struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Salience float64 `json:"salience"`

	// ReferenceURL is the service-provided reference link, if any
	// (e.g., a Wikipedia URL).
	ReferenceURL string `json:"referenceUrl,omitempty"`

	// MID is the service's knowledge-graph identifier, if any.
	MID string `json:"mid,omitempty"`
}

// Entity is one unique canonical entity within a single analysis run.
type Entity struct {
	Name         string     `json:"name"`
	Type         EntityType `json:"type"`
	Salience     float64    `json:"salience"`
	Relevance    int        `json:"relevance"`
	ReferenceURL string     `json:"referenceUrl,omitempty"`
	MID          string     `json:"mid,omitempty"`
}

// Raw converts the entity back into the service shape.
func (e Entity) Raw() RawEntity {
	return RawEntity{
		Name:         e.Name,
		Type:         string(e.Type),
		Salience:     e.Salience,
		ReferenceURL: e.ReferenceURL,
		MID:          e.MID,
	}
}

// LinkStatus tells whether an entity's reference link came from the service.
type LinkStatus string

// Link statuses.
const (
	LinkConfirmed LinkStatus = "confirmed"
	LinkGuessed   LinkStatus = "guessed"
)

// EnrichedEntity is an Entity with derived metadata.
type EnrichedEntity struct {
	Entity

	OccurrenceCount int        `json:"occurrenceCount"`
	Link            string     `json:"link"`
	LinkStatus      LinkStatus `json:"linkStatus"`
	SchemaTypes     []string   `json:"schemaTypes"`
}
