package planner

import (
	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// Build turns a validated Resolved request into a Plan. It never returns an
// error for a request the validator already accepted, except
// PlanInfeasible for the one case validation cannot rule out: a derived
// measure resolving to zero aggregate dependencies.
func Build(resolved *request.Resolved) (*Plan, error) {
	baseAlias := resolved.Flow.BaseAlias

	baseFilters, joinedFilters := partitionFilters(resolved.Filters, baseAlias)

	aggregateLayer, err := collectAggregateLayer(resolved.Measures)
	if err != nil {
		return nil, err
	}

	referenced := map[string]bool{baseAlias: true}
	for _, d := range resolved.Dimensions {
		referenced[d.Alias] = true
	}
	for _, m := range aggregateLayer {
		referenced[m.Alias] = true
	}
	for _, m := range resolved.Measures {
		referenced[m.Alias] = true
	}
	for _, f := range resolved.Filters {
		referenced[f.Field.Alias] = true
	}
	for _, o := range resolved.Order {
		referenced[o.Field.Alias] = true
	}

	closeJoinDependencies(resolved.Flow, referenced)

	joinedAliases := make([]string, 0, len(resolved.Flow.Joins))
	for _, j := range resolved.Flow.Joins {
		if referenced[j.Alias] {
			joinedAliases = append(joinedAliases, j.Alias)
		}
	}

	shape := ShapeFlat
	if len(joinedFilters) > 0 {
		shape = ShapePreAggregate
	}

	return &Plan{
		Shape:             shape,
		Resolved:          resolved,
		JoinedAliases:     joinedAliases,
		Dimensions:        resolved.Dimensions,
		ProjectedMeasures: resolved.Measures,
		AggregateLayer:    aggregateLayer,
		BaseFilters:       baseFilters,
		JoinedFilters:     joinedFilters,
		Order:             resolved.Order,
		Limit:             resolved.Limit,
		Offset:            resolved.Offset,
		PageSize:          resolved.PageSize,
		Cursor:            resolved.Cursor,
	}, nil
}

func partitionFilters(filters []request.ResolvedFilter, baseAlias string) (base, joined []request.ResolvedFilter) {
	for _, f := range filters {
		if f.Field.Alias == baseAlias {
			base = append(base, f)
		} else {
			joined = append(joined, f)
		}
	}
	return base, joined
}

// closeJoinDependencies expands referenced to include, for every joined
// alias already referenced, the alias its ON clause reads from
// (ToTableAlias) — transitively — so a join in the middle of a chain is
// never pruned out from under a join that depends on it.
func closeJoinDependencies(flow *catalog.SemanticFlow, referenced map[string]bool) {
	changed := true
	for changed {
		changed = false
		for _, j := range flow.Joins {
			if !referenced[j.Alias] {
				continue
			}
			if !referenced[j.ToTableAlias] {
				referenced[j.ToTableAlias] = true
				changed = true
			}
		}
	}
}

// collectAggregateLayer flattens every requested measure to the set of
// aggregate measures that must be computed, deduplicated by qualified name
// in first-appearance order (§4.3 "Determinism": projection order is a
// pure function of the request).
func collectAggregateLayer(measures []request.ResolvedMeasure) ([]request.ResolvedMeasure, error) {
	seen := map[string]bool{}
	var out []request.ResolvedMeasure

	var walk func(m request.ResolvedMeasure) error
	walk = func(m request.ResolvedMeasure) error {
		if m.Kind == catalog.MeasureAggregate {
			if !seen[m.Qualified()] {
				seen[m.Qualified()] = true
				out = append(out, m)
			}
			return nil
		}
		if len(m.Dependencies) == 0 {
			return semaerr.ErrPlanInfeasible.New("derived measure " + m.Qualified() + " has no base measures to aggregate")
		}
		for _, dep := range m.Dependencies {
			if err := walk(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, m := range measures {
		if err := walk(m); err != nil {
			return nil, err
		}
	}

	return out, nil
}
