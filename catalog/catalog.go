package catalog

import (
	"regexp"
	"sort"
)

// Catalog is the full set of tables, flows and data sources a Handle is
// constructed from. It is built incrementally (AddTable/AddFlow/AddDataSource)
// and then frozen by Build, which runs the cross-entity validation pass §4.1
// defers from the individual constructors. A Catalog that has not been
// through Build successfully must never be handed to a Handle.
type Catalog struct {
	Tables      map[string]*SemanticTable
	Flows       map[string]*SemanticFlow
	DataSources map[string]DataSource
}

// New returns an empty Catalog ready for incremental construction.
func New() *Catalog {
	return &Catalog{
		Tables:      make(map[string]*SemanticTable),
		Flows:       make(map[string]*SemanticFlow),
		DataSources: make(map[string]DataSource),
	}
}

// AddTable registers a SemanticTable. Re-adding a name overwrites; catalog
// files are expected to be loaded once, in full, before Build.
func (c *Catalog) AddTable(t *SemanticTable) {
	c.Tables[t.Name] = t
}

// AddFlow registers a SemanticFlow.
func (c *Catalog) AddFlow(f *SemanticFlow) {
	c.Flows[f.Name] = f
}

// AddDataSource registers a DataSource descriptor.
func (c *Catalog) AddDataSource(d DataSource) {
	c.DataSources[d.Name] = d
}

// identRe matches a bare column reference: something Build can check
// against a table's declared Columns without attempting to parse general
// SQL expressions, which Non-goals explicitly excludes. Expressions built
// from more than one identifier (function calls, arithmetic) are left
// unchecked here; they are the user's responsibility, same as any
// unvalidated SQL fragment accepted verbatim by the renderer.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Build runs the deep, cross-entity validation pass: physical column
// references, join alias ordering, the derived-measure DAG, and the rule
// that only aggregate measures carry a filter. It returns
// semaerr.ErrCatalogInvalid on the first problem found, in deterministic
// order (tables sorted by name, then flows sorted by name) so that catalogs
// failing the same way always fail with the same message.
func (c *Catalog) Build() error {
	names := sortedKeys(c.Tables)
	for _, name := range names {
		t := c.Tables[name]
		if err := c.validateTableColumns(t); err != nil {
			return err
		}
		if err := c.validateMeasureDAG(t); err != nil {
			return err
		}
		for _, mName := range sortedKeys(t.Measures) {
			if m := t.Measures[mName]; m.Kind == MeasureDerived && m.Filter != "" {
				return errStructural("table %q: derived measure %q cannot carry a filter", t.Name, mName)
			}
		}
	}

	flowNames := sortedKeys(c.Flows)
	for _, name := range flowNames {
		f := c.Flows[name]
		if err := c.validateFlow(f); err != nil {
			return err
		}
	}

	return nil
}

func (c *Catalog) validateTableColumns(t *SemanticTable) error {
	if len(t.Columns) == 0 {
		return nil // declarative column list not provided; skip the check
	}
	cols := make(map[string]bool, len(t.Columns))
	for _, col := range t.Columns {
		cols[col] = true
	}
	checkExpr := func(kind, name, expr string) error {
		if identRe.MatchString(expr) && !cols[expr] {
			return errStructural("table %q: %s %q references unknown column %q", t.Name, kind, name, expr)
		}
		return nil
	}
	for _, dName := range sortedKeys(t.Dimensions) {
		d := t.Dimensions[dName]
		if err := checkExpr("dimension", d.Name, d.Expr); err != nil {
			return err
		}
	}
	for _, mName := range sortedKeys(t.Measures) {
		m := t.Measures[mName]
		if m.Kind == MeasureAggregate {
			if err := checkExpr("measure", m.Name, m.Expr); err != nil {
				return err
			}
		}
	}
	if t.PrimaryKey != "" && !cols[t.PrimaryKey] {
		return errStructural("table %q: primary_key %q is not a declared column", t.Name, t.PrimaryKey)
	}
	return nil
}

// validateMeasureDAG extracts each derived measure's dependency set (the
// subset of identifiers in PostExpr that name another measure on the same
// table) and rejects cycles via depth-first traversal, per spec §3's
// "derived measures form a DAG; cycles are rejected at catalog build time".
func (c *Catalog) validateMeasureDAG(t *SemanticTable) error {
	deps := make(map[string][]string, len(t.Measures))
	for _, m := range t.Measures {
		if m.Kind != MeasureDerived {
			continue
		}
		deps[m.Name] = measureDependencies(m.PostExpr, t.Measures)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(deps))

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return errStructural("table %q: derived measure cycle: %s -> %s", t.Name, joinNames(stack), name)
		}
		color[name] = gray
		for _, dep := range deps[name] {
			if err := visit(dep, append(stack, name)); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}

	for _, name := range sortedKeys(deps) {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}

// measureDependencies returns the bare identifiers in expr that name a
// measure in measures, sorted for determinism.
func measureDependencies(expr string, measures map[string]Measure) []string {
	tokens := identTokenRe.FindAllString(expr, -1)
	seen := make(map[string]bool)
	var deps []string
	for _, tok := range tokens {
		if _, ok := measures[tok]; ok && !seen[tok] {
			seen[tok] = true
			deps = append(deps, tok)
		}
	}
	sort.Strings(deps)
	return deps
}

var identTokenRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

func (c *Catalog) validateFlow(f *SemanticFlow) error {
	base, ok := c.Tables[f.BaseTableName]
	if !ok {
		return errStructural("flow %q: base_table %q is not a declared table", f.Name, f.BaseTableName)
	}

	seenAliases := map[string]*SemanticTable{f.BaseAlias: base}
	for _, j := range f.Joins {
		jt, ok := c.Tables[j.SemanticTableName]
		if !ok {
			return errStructural("flow %q: join %q: semantic_table %q is not a declared table", f.Name, j.Alias, j.SemanticTableName)
		}
		leftTable, ok := seenAliases[j.ToTableAlias]
		if !ok {
			return errStructural("flow %q: join %q: to_table_alias %q is not an earlier-declared alias", f.Name, j.Alias, j.ToTableAlias)
		}
		for _, k := range j.JoinKeys {
			if err := requireColumn(leftTable, k.LeftCol, f.Name, j.Alias, "join key left_col"); err != nil {
				return err
			}
			if err := requireColumn(jt, k.RightCol, f.Name, j.Alias, "join key right_col"); err != nil {
				return err
			}
		}
		seenAliases[j.Alias] = jt
	}
	return nil
}

func requireColumn(t *SemanticTable, col, flowName, alias, what string) error {
	if len(t.Columns) == 0 || col == "" {
		return nil
	}
	for _, c := range t.Columns {
		if c == col {
			return nil
		}
	}
	return errStructural("flow %q: join %q: %s %q not a physical column of table %q", flowName, alias, what, col, t.Name)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}
