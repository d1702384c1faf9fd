// Package validator implements the Request Validator (C2): resolving a
// wire-shaped request against a catalog and flow into the canonical,
// strongly-typed request the Plan Builder and SQL Renderer operate on.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/request"
	"github.com/semaflow-labs/semaflow/semaerr"
)

var identTokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// fieldKind restricts which map of a SemanticTable a bare or qualified name
// may resolve against.
type fieldKind int

const (
	kindDimension fieldKind = iota
	kindMeasure
	kindAny
)

// Validate resolves req against flowName in cat, producing a Resolved
// request or one of the error kinds named in spec §4.2.
func Validate(cat *catalog.Catalog, flowName string, req request.Request) (*request.Resolved, error) {
	flow, ok := cat.Flows[flowName]
	if !ok {
		return nil, semaerr.ErrUnknownFlow.New(flowName)
	}

	aliasTables, err := aliasTableMap(cat, flow)
	if err != nil {
		return nil, err
	}

	if len(req.Dimensions) == 0 && len(req.Measures) == 0 {
		return nil, semaerr.ErrUnsupportedOp.New("request must select at least one dimension or measure")
	}

	if req.UsesOffsetPagination() && req.UsesCursorPagination() {
		return nil, semaerr.ErrMalformedPagination.New("limit/offset and page_size/cursor are mutually exclusive")
	}

	dims := make([]request.Field, 0, len(req.Dimensions))
	for _, raw := range req.Dimensions {
		f, err := resolveField(flow, aliasTables, raw, kindDimension)
		if err != nil {
			return nil, err
		}
		dims = append(dims, f)
	}

	measures := make([]request.ResolvedMeasure, 0, len(req.Measures))
	for _, raw := range req.Measures {
		rm, err := resolveMeasure(flow, aliasTables, raw)
		if err != nil {
			return nil, err
		}
		measures = append(measures, rm)
	}

	selected := make(map[string]bool, len(dims)+len(measures))
	for _, d := range dims {
		selected[d.Qualified()] = true
	}
	for _, m := range measures {
		selected[m.Qualified()] = true
	}

	filters := make([]request.ResolvedFilter, 0, len(req.Filters))
	for _, raw := range req.Filters {
		rf, err := resolveFilter(flow, aliasTables, raw)
		if err != nil {
			return nil, err
		}
		filters = append(filters, rf)
	}

	order := make([]request.ResolvedOrder, 0, len(req.Order))
	for _, raw := range req.Order {
		f, err := resolveField(flow, aliasTables, raw.Column, kindAny)
		if err != nil {
			return nil, err
		}
		if !selected[f.Qualified()] {
			return nil, semaerr.ErrUnsupportedOp.New(fmt.Sprintf("order column %q must appear in dimensions or measures", f.Qualified()))
		}
		dir := raw.Direction
		if dir == "" {
			dir = request.Asc
		}
		if dir != request.Asc && dir != request.Desc {
			return nil, semaerr.ErrUnsupportedOp.New(fmt.Sprintf("order direction %q", raw.Direction))
		}
		order = append(order, request.ResolvedOrder{Field: f, Direction: dir})
	}

	return &request.Resolved{
		Flow:        flow,
		AliasTables: aliasTables,
		Dimensions:  dims,
		Measures:   measures,
		Filters:    filters,
		Order:      order,
		Limit:      req.Limit,
		Offset:     req.Offset,
		PageSize:   req.PageSize,
		Cursor:     req.Cursor,
	}, nil
}

// aliasTableMap resolves every alias declared in flow to its SemanticTable,
// failing fast if the catalog was never Build()-validated (a programmer
// error, but one worth catching here rather than panicking downstream).
func aliasTableMap(cat *catalog.Catalog, flow *catalog.SemanticFlow) (map[string]*catalog.SemanticTable, error) {
	out := make(map[string]*catalog.SemanticTable, len(flow.Joins)+1)
	base, ok := cat.Tables[flow.BaseTableName]
	if !ok {
		return nil, semaerr.ErrCatalogInvalid.New("flow " + flow.Name + ": base table not found; catalog was not Build()-validated")
	}
	out[flow.BaseAlias] = base
	for _, j := range flow.Joins {
		t, ok := cat.Tables[j.SemanticTableName]
		if !ok {
			return nil, semaerr.ErrCatalogInvalid.New("flow " + flow.Name + ": join table not found; catalog was not Build()-validated")
		}
		out[j.Alias] = t
	}
	return out, nil
}

// resolveField resolves one raw "alias.field" or bare "field" string to a
// canonical Field, restricted to kind's map(s).
func resolveField(flow *catalog.SemanticFlow, aliasTables map[string]*catalog.SemanticTable, raw string, kind fieldKind) (request.Field, error) {
	if raw == "" {
		return request.Field{}, semaerr.ErrUnknownField.New("(empty)")
	}

	if alias, field, ok := strings.Cut(raw, "."); ok {
		table, ok := aliasTables[alias]
		if !ok {
			return request.Field{}, semaerr.ErrUnknownField.New(raw)
		}
		if !hasField(table, field, kind) {
			return request.Field{}, semaerr.ErrUnknownField.New(raw)
		}
		return request.Field{Alias: alias, Name: field, Table: table}, nil
	}

	// Bare name: must be unique across every in-scope alias (§3 "Qualified
	// names"). Iterate aliases in declaration order for a deterministic
	// first-match when reporting ambiguity.
	var matches []request.Field
	for _, alias := range flow.Aliases() {
		table := aliasTables[alias]
		if hasField(table, raw, kind) {
			matches = append(matches, request.Field{Alias: alias, Name: raw, Table: table})
		}
	}
	switch len(matches) {
	case 0:
		return request.Field{}, semaerr.ErrUnknownField.New(raw)
	case 1:
		return matches[0], nil
	default:
		return request.Field{}, semaerr.ErrAmbiguous.New(raw)
	}
}

func hasField(table *catalog.SemanticTable, name string, kind fieldKind) bool {
	switch kind {
	case kindDimension:
		_, ok := table.Dimensions[name]
		return ok
	case kindMeasure:
		_, ok := table.Measures[name]
		return ok
	default:
		if _, ok := table.Dimensions[name]; ok {
			return true
		}
		_, ok := table.Measures[name]
		return ok
	}
}

// resolveMeasure resolves raw to a ResolvedMeasure, recursively resolving a
// derived measure's dependencies to the aggregate measures it ultimately
// rests on, on the same alias (derived measures reference sibling measures
// on their own table, per spec §3).
func resolveMeasure(flow *catalog.SemanticFlow, aliasTables map[string]*catalog.SemanticTable, raw string) (request.ResolvedMeasure, error) {
	f, err := resolveField(flow, aliasTables, raw, kindMeasure)
	if err != nil {
		return request.ResolvedMeasure{}, err
	}
	return resolveMeasureOnAlias(f.Alias, f.Table, f.Name, map[string]bool{})
}

func resolveMeasureOnAlias(alias string, table *catalog.SemanticTable, name string, visiting map[string]bool) (request.ResolvedMeasure, error) {
	m, ok := table.Measures[name]
	if !ok {
		return request.ResolvedMeasure{}, semaerr.ErrUnknownField.New(alias + "." + name)
	}
	if visiting[name] {
		return request.ResolvedMeasure{}, semaerr.ErrPlanInfeasible.New("measure cycle detected at " + alias + "." + name)
	}

	field := request.Field{Alias: alias, Name: name, Table: table}
	if m.Kind == catalog.MeasureAggregate {
		return request.ResolvedMeasure{Field: field, Kind: m.Kind, Measure: m}, nil
	}

	visiting[name] = true
	deps := dependencyNames(m.PostExpr, table.Measures)
	resolvedDeps := make([]request.ResolvedMeasure, 0, len(deps))
	for _, dep := range deps {
		rd, err := resolveMeasureOnAlias(alias, table, dep, visiting)
		if err != nil {
			return request.ResolvedMeasure{}, err
		}
		resolvedDeps = append(resolvedDeps, rd)
	}
	delete(visiting, name)

	if len(resolvedDeps) == 0 {
		return request.ResolvedMeasure{}, semaerr.ErrPlanInfeasible.New("derived measure " + alias + "." + name + " has no resolvable base measures")
	}

	return request.ResolvedMeasure{Field: field, Kind: m.Kind, Measure: m, Dependencies: resolvedDeps}, nil
}

func resolveFilter(flow *catalog.SemanticFlow, aliasTables map[string]*catalog.SemanticTable, raw request.Filter) (request.ResolvedFilter, error) {
	f, err := resolveField(flow, aliasTables, raw.Field, kindAny)
	if err != nil {
		return request.ResolvedFilter{}, err
	}
	if !request.ValidOps[raw.Op] {
		return request.ResolvedFilter{}, semaerr.ErrUnsupportedOp.New(string(raw.Op))
	}
	if err := checkFilterValueShape(raw); err != nil {
		return request.ResolvedFilter{}, err
	}
	return request.ResolvedFilter{Field: f, Op: raw.Op, Value: raw.Value}, nil
}

func checkFilterValueShape(f request.Filter) error {
	switch f.Op {
	case request.OpIn, request.OpNotIn:
		seq, ok := f.Value.([]interface{})
		if !ok || len(seq) == 0 {
			return semaerr.ErrTypeMismatch.New(fmt.Sprintf("%s value for %q must be a non-empty sequence", f.Op, f.Field))
		}
	case request.OpLike, request.OpILike:
		if _, ok := f.Value.(string); !ok {
			return semaerr.ErrTypeMismatch.New(fmt.Sprintf("%s value for %q must be a string", f.Op, f.Field))
		}
	}
	return nil
}

func dependencyNames(postExpr string, measures map[string]catalog.Measure) []string {
	tokens := identTokenRe.FindAllString(postExpr, -1)
	seen := make(map[string]bool)
	var deps []string
	for _, tok := range tokens {
		if _, ok := measures[tok]; ok && !seen[tok] {
			seen[tok] = true
			deps = append(deps, tok)
		}
	}
	return deps
}
