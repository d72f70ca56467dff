// Package graph derives a connection graph from cast overlap between titles.
//
// Build is a pure function: identical inputs always produce an identical
// model, with the center node first and connected titles in corpus order.
package graph

import (
	"fmt"

	"github.com/persistorai/actorweb/internal/models"
)

// Skipped records a corpus entry that was left out of the model for a reason
// other than having no shared cast.
type Skipped struct {
	ID     string
	Reason error
}

func (s Skipped) String() string {
	return fmt.Sprintf("%s: %v", s.ID, s.Reason)
}

// Build links center to every corpus entity that shares at least one actor
// with it. Entities without shared cast are excluded silently; malformed or
// duplicate entries are excluded and reported in the returned slice.
func Build(center models.Entity, corpus []models.Entity) (*models.GraphModel, []Skipped) {
	g := &models.GraphModel{
		Nodes: []models.Node{},
		Edges: []models.Edge{},
		Casts: map[string]map[string]string{},
	}

	if center.ID == "" {
		return g, []Skipped{{ID: center.Title, Reason: models.ErrMissingID}}
	}

	g.CenterID = center.ID
	g.Nodes = append(g.Nodes, newNode(&center, true, 0))
	g.Casts[center.ID] = castIndex(&center)

	var skipped []Skipped

	present := map[string]bool{center.ID: true}

	for i := range corpus {
		e := &corpus[i]
		if e.ID == center.ID {
			continue
		}

		if err := e.Validate(); err != nil {
			skipped = append(skipped, Skipped{ID: e.ID, Reason: err})
			continue
		}

		if present[e.ID] {
			skipped = append(skipped, Skipped{ID: e.ID, Reason: models.ErrDuplicateNode})
			continue
		}

		shared := sharedActors(&center, e)
		if len(shared) == 0 {
			continue
		}

		present[e.ID] = true
		g.Nodes = append(g.Nodes, newNode(e, false, len(shared)))
		g.Edges = append(g.Edges, models.Edge{
			Source:       center.ID,
			Target:       e.ID,
			SharedActors: shared,
			Weight:       len(shared),
		})
		g.Casts[e.ID] = castIndex(e)
	}

	return g, skipped
}

// BuildFromMatches builds a model from catalog matches. The shared actor ids
// carried by the matches are advisory; overlap is recomputed from the casts.
func BuildFromMatches(center models.Entity, matches []models.Match) (*models.GraphModel, []Skipped) {
	corpus := make([]models.Entity, 0, len(matches))
	for _, m := range matches {
		corpus = append(corpus, m.Entity)
	}

	return Build(center, corpus)
}

// SharedActorIDs returns the actor ids credited on both a and b, in the
// order they appear in a's cast.
func SharedActorIDs(a, b *models.Entity) []string {
	other := b.ActorIDs()
	seen := make(map[string]bool, len(a.Cast))

	var ids []string

	for _, m := range a.Cast {
		if m.ActorID == "" || seen[m.ActorID] {
			continue
		}
		seen[m.ActorID] = true

		if _, ok := other[m.ActorID]; ok {
			ids = append(ids, m.ActorID)
		}
	}

	return ids
}

// ConnectionStrength returns the number of actors a and b share.
func ConnectionStrength(a, b *models.Entity) int {
	return len(SharedActorIDs(a, b))
}

// Connections returns the corpus entries sharing cast with center, in corpus
// order, excluding center itself.
func Connections(center *models.Entity, corpus []models.Entity) []models.Match {
	var matches []models.Match

	for i := range corpus {
		if corpus[i].ID == center.ID {
			continue
		}

		if ids := SharedActorIDs(center, &corpus[i]); len(ids) > 0 {
			matches = append(matches, models.Match{Entity: corpus[i], SharedActorIDs: ids})
		}
	}

	return matches
}

func sharedActors(center, other *models.Entity) []models.SharedActor {
	ids := SharedActorIDs(center, other)
	if len(ids) == 0 {
		return nil
	}

	shared := make([]models.SharedActor, 0, len(ids))
	for _, id := range ids {
		name, inSource := actorCredit(center, id)
		_, inTarget := actorCredit(other, id)
		shared = append(shared, models.SharedActor{
			ActorID:           id,
			ActorName:         name,
			CharacterInSource: inSource,
			CharacterInTarget: inTarget,
		})
	}

	return shared
}

func actorCredit(e *models.Entity, actorID string) (name, character string) {
	for _, m := range e.Cast {
		if m.ActorID == actorID {
			return m.ActorName, m.Character
		}
	}

	return "", ""
}

func castIndex(e *models.Entity) map[string]string {
	idx := make(map[string]string, len(e.Cast))
	for _, m := range e.Cast {
		if m.ActorID == "" {
			continue
		}
		if _, ok := idx[m.ActorID]; !ok {
			idx[m.ActorID] = m.Character
		}
	}

	return idx
}

func newNode(e *models.Entity, center bool, weight int) models.Node {
	return models.Node{
		ID:        e.ID,
		Key:       e.LookupKey(),
		Title:     e.Title,
		Year:      e.Year,
		MediaType: e.Type,
		IsCenter:  center,
		Weight:    weight,
	}
}
