package reconcile

import (
	"sort"

	"tablesync/core/entity"
)

// Plan holds the mutations that converge a target table onto its source.
type Plan struct {
	// Table is the table both sets were fetched from.
	Table string

	// Upserts are entities present in the source and absent from the target.
	Upserts []entity.Entity

	// Deletes are entities present in the target and absent from the source.
	Deletes []entity.Entity
}

// Empty reports whether the plan has nothing to apply.
func (p *Plan) Empty() bool {
	return len(p.Upserts) == 0 && len(p.Deletes) == 0
}

// Summary returns the plan counts.
func (p *Plan) Summary() PlanSummary {
	return PlanSummary{Upserts: len(p.Upserts), Deletes: len(p.Deletes)}
}

// Diff computes the symmetric difference of source and target by entity equality.
// Both sets must belong to table: equality ignores the table name. Duplicates
// collapse, and both lists are ordered by id then key so plans are deterministic.
func Diff(table string, source, target []entity.Entity) *Plan {
	sourceSet := index(source)
	targetSet := index(target)

	return &Plan{
		Table:   table,
		Upserts: subtract(sourceSet, targetSet),
		Deletes: subtract(targetSet, sourceSet),
	}
}

func index(entities []entity.Entity) map[string]entity.Entity {
	set := make(map[string]entity.Entity, len(entities))
	for _, e := range entities {
		set[e.Key()] = e
	}
	return set
}

// subtract returns a − b.
func subtract(a, b map[string]entity.Entity) []entity.Entity {
	out := make([]entity.Entity, 0)
	for key, e := range a {
		if _, ok := b[key]; !ok {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ID() != out[j].ID() {
			return out[i].ID() < out[j].ID()
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}
