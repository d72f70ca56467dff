package models

import "strings"

// MediaType distinguishes movies from series.
type MediaType string

// Known media types.
const (
	MediaMovie  MediaType = "movie"
	MediaSeries MediaType = "series"
)

// CastMember is one credited actor of an entity.
type CastMember struct {
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Character string `json:"character"`
}

// Entity is a movie or series as supplied by a catalog. Entities are read-only
// inputs to graph construction.
type Entity struct {
	ID    string       `json:"id"`
	Key   string       `json:"key"`
	Title string       `json:"title"`
	Year  int          `json:"year"`
	Type  MediaType    `json:"type"`
	Cast  []CastMember `json:"cast"`
}

// LookupKey returns the catalog key for the entity, falling back to its id.
func (e *Entity) LookupKey() string {
	if e.Key != "" {
		return e.Key
	}

	return e.ID
}

// ActorIDs returns the set of actor ids credited on the entity.
func (e *Entity) ActorIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Cast))
	for _, m := range e.Cast {
		if m.ActorID == "" {
			continue
		}
		ids[m.ActorID] = struct{}{}
	}

	return ids
}

// Character returns the character the actor plays in this entity.
func (e *Entity) Character(actorID string) (string, bool) {
	for _, m := range e.Cast {
		if m.ActorID == actorID {
			return m.Character, m.Character != ""
		}
	}

	return "", false
}

// Validate reports whether the entity carries enough data to take part in a graph.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}

	if e.Cast == nil {
		return ErrMissingCast
	}

	return nil
}

// Match pairs a corpus entity with the actor ids it shares with a center entity.
type Match struct {
	Entity         Entity   `json:"entity"`
	SharedActorIDs []string `json:"shared_actor_ids"`
}

// TitleSummary is a search hit: an entity without its cast.
type TitleSummary struct {
	ID    string    `json:"id"`
	Key   string    `json:"key"`
	Title string    `json:"title"`
	Year  int       `json:"year"`
	Type  MediaType `json:"type"`
}

// Summary returns the search view of the entity.
func (e *Entity) Summary() TitleSummary {
	return TitleSummary{ID: e.ID, Key: e.LookupKey(), Title: e.Title, Year: e.Year, Type: e.Type}
}
