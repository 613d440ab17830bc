package seoentity

import (
	"math"
	"sort"
)

// Aggregate normalizes and deduplicates raw service entities.
//
// Entities are keyed by normalized name. On collision the higher salience
// wins; on a tie the first one seen is kept. Entities whose name normalizes
// to empty are dropped. The result keeps first-seen order; callers sort
// before display (see SortBySalience).
func Aggregate(raw []RawEntity) []Entity {
	index := make(map[string]int, len(raw))
	entities := make([]Entity, 0, len(raw))

	for _, r := range raw {
		name := Normalize(r.Name)
		if name == "" {
			continue
		}

		salience := clampSalience(r.Salience)
		e := Entity{
			Name:         name,
			Type:         ParseEntityType(r.Type),
			Salience:     salience,
			Relevance:    Relevance(salience),
			ReferenceURL: r.ReferenceURL,
			MID:          r.MID,
		}

		if i, ok := index[name]; ok {
			if e.Salience > entities[i].Salience {
				entities[i] = e
			}
			continue
		}
		index[name] = len(entities)
		entities = append(entities, e)
	}

	return entities
}

// Relevance converts a salience in [0,1] into an integer percentage.
func Relevance(salience float64) int {
	return int(math.Round(clampSalience(salience) * 100))
}

func clampSalience(s float64) float64 {
	switch {
	case math.IsNaN(s), s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// SortBySalience sorts entities by descending salience, breaking ties by name.
func SortBySalience(entities []Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		if entities[i].Salience != entities[j].Salience {
			return entities[i].Salience > entities[j].Salience
		}
		return entities[i].Name < entities[j].Name
	})
}
