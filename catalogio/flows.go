package catalogio

import "github.com/semaflow-labs/semaflow/catalog"

// flowFile is the yaml shape of one file under flows/.
type flowFile struct {
	Name          string     `yaml:"name"`
	BaseTableName string     `yaml:"base_table"`
	BaseAlias     string     `yaml:"base_alias"`
	Description   string     `yaml:"description"`
	Joins         []joinFile `yaml:"joins"`
}

type joinFile struct {
	SemanticTableName string        `yaml:"semantic_table"`
	Alias             string        `yaml:"alias"`
	ToTableAlias      string        `yaml:"to_table_alias"`
	JoinType          string        `yaml:"join_type"`
	JoinKeys          []joinKeyFile `yaml:"join_keys"`
}

type joinKeyFile struct {
	LeftCol  string `yaml:"left_col"`
	RightCol string `yaml:"right_col"`
}

func loadFlows(dir string) ([]*catalog.SemanticFlow, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}

	var flows []*catalog.SemanticFlow
	for _, path := range files {
		var ff flowFile
		if err := readYAML(path, &ff); err != nil {
			return nil, err
		}
		f, err := buildFlow(ff)
		if err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, nil
}

func buildFlow(ff flowFile) (*catalog.SemanticFlow, error) {
	joins := make([]catalog.FlowJoin, 0, len(ff.Joins))
	for _, jf := range ff.Joins {
		keys := make([]catalog.JoinKey, 0, len(jf.JoinKeys))
		for _, kf := range jf.JoinKeys {
			keys = append(keys, catalog.JoinKey{LeftCol: kf.LeftCol, RightCol: kf.RightCol})
		}
		j, err := catalog.NewFlowJoin(jf.SemanticTableName, jf.Alias, jf.ToTableAlias, catalog.JoinType(jf.JoinType), keys)
		if err != nil {
			return nil, err
		}
		joins = append(joins, j)
	}

	opts := []catalog.FlowOption{}
	if ff.Description != "" {
		opts = append(opts, catalog.WithFlowDescription(ff.Description))
	}
	return catalog.NewSemanticFlow(ff.Name, ff.BaseTableName, ff.BaseAlias, joins, opts...)
}
