package catalog

// JoinKey is one equality predicate of a FlowJoin's ON clause.
type JoinKey struct {
	LeftCol  string
	RightCol string
}

// FlowJoin joins one further SemanticTable into a flow under a fresh alias.
type FlowJoin struct {
	SemanticTableName string // ref, resolved against the catalog at Build
	Alias             string
	ToTableAlias      string // must name an earlier-declared alias
	JoinType          JoinType
	JoinKeys          []JoinKey
}

// NewFlowJoin builds a FlowJoin. Whether ToTableAlias actually resolves to
// an earlier alias, and whether each key column exists on its side, are
// flow-level invariants checked by Build once the full alias ordering is
// known.
func NewFlowJoin(semanticTableName, alias, toTableAlias string, joinType JoinType, keys []JoinKey) (FlowJoin, error) {
	if semanticTableName == "" {
		return FlowJoin{}, errStructural("join: semantic_table must not be empty")
	}
	if alias == "" {
		return FlowJoin{}, errStructural("join: alias must not be empty")
	}
	if toTableAlias == "" {
		return FlowJoin{}, errStructural("join %q: to_table_alias must not be empty", alias)
	}
	if !validJoinTypes[joinType] {
		return FlowJoin{}, errStructural("join %q: unknown join_type %q", alias, joinType)
	}
	if len(keys) == 0 {
		return FlowJoin{}, errStructural("join %q: join_keys must be non-empty", alias)
	}
	for _, k := range keys {
		if k.LeftCol == "" || k.RightCol == "" {
			return FlowJoin{}, errStructural("join %q: join key columns must not be empty", alias)
		}
	}

	keysCopy := make([]JoinKey, len(keys))
	copy(keysCopy, keys)

	return FlowJoin{
		SemanticTableName: semanticTableName,
		Alias:             alias,
		ToTableAlias:      toTableAlias,
		JoinType:          joinType,
		JoinKeys:          keysCopy,
	}, nil
}
