package catalog

// SemanticFlow is a named bundle of one base SemanticTable plus an ordered
// list of joins, producing a reusable query context. Aliases across base +
// joins must be unique within the flow.
type SemanticFlow struct {
	Name           string
	BaseTableName  string // ref, resolved against the catalog at Build
	BaseAlias      string
	Joins          []FlowJoin
	Description    string
}

// NewSemanticFlow builds a SemanticFlow, checking only alias uniqueness
// here (a structural property of the flow's own join list). Whether each
// join's to_table_alias resolves to a real, earlier-declared alias, and
// whether SemanticTableName/BaseTableName name real catalog tables, are
// checked by Build.
func NewSemanticFlow(name, baseTableName, baseAlias string, joins []FlowJoin, opts ...FlowOption) (*SemanticFlow, error) {
	if name == "" {
		return nil, errStructural("flow name must not be empty")
	}
	if baseTableName == "" {
		return nil, errStructural("flow %q: base_table must not be empty", name)
	}
	if baseAlias == "" {
		return nil, errStructural("flow %q: base_alias must not be empty", name)
	}

	seen := map[string]bool{baseAlias: true}
	joinsCopy := make([]FlowJoin, len(joins))
	for i, j := range joins {
		if seen[j.Alias] {
			return nil, errStructural("flow %q: duplicate alias %q", name, j.Alias)
		}
		seen[j.Alias] = true
		joinsCopy[i] = j
	}

	f := &SemanticFlow{
		Name:          name,
		BaseTableName: baseTableName,
		BaseAlias:     baseAlias,
		Joins:         joinsCopy,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// FlowOption customizes an optional SemanticFlow attribute.
type FlowOption func(*SemanticFlow)

func WithFlowDescription(desc string) FlowOption {
	return func(f *SemanticFlow) { f.Description = desc }
}

// Aliases returns every alias declared in the flow, base first, in
// declaration order. Declaration order is what the Plan Builder uses for
// deterministic join emission (§4.3).
func (f *SemanticFlow) Aliases() []string {
	aliases := make([]string, 0, len(f.Joins)+1)
	aliases = append(aliases, f.BaseAlias)
	for _, j := range f.Joins {
		aliases = append(aliases, j.Alias)
	}
	return aliases
}

// JoinByAlias returns the FlowJoin declared under alias, or (FlowJoin{}, false)
// if alias is the base alias or unknown.
func (f *SemanticFlow) JoinByAlias(alias string) (FlowJoin, bool) {
	for _, j := range f.Joins {
		if j.Alias == alias {
			return j, true
		}
	}
	return FlowJoin{}, false
}
