package semaflow

import (
	"github.com/semaflow-labs/semaflow/catalog"
	"github.com/semaflow-labs/semaflow/semaerr"
)

// FieldSchema describes one dimension or measure in a flow's schema view.
type FieldSchema struct {
	Description string          `json:"description"`
	DataType    catalog.DataType `json:"data_type"`
}

// FlowSchema mirrors the `GET /flows/{flow}` response shape (§6): name,
// description, declared time dimension, and every dimension/measure keyed
// by its qualified name.
type FlowSchema struct {
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	TimeDimension string                 `json:"time_dimension"`
	Dimensions    map[string]FieldSchema `json:"dimensions"`
	Measures      map[string]FieldSchema `json:"measures"`
}

// GetFlow builds the schema view of flowName, inferring each measure's
// data_type from its catalog.Measure as SPEC_FULL.md's "Schema
// introspection endpoint shape" describes: an aggregate measure's type
// comes from AggFunc.ResultDataType; a derived measure, having no
// aggregation function of its own, is reported as a float — the result
// type of the arithmetic post_expr it evaluates.
func (h *Handle) GetFlow(flowName string) (*FlowSchema, error) {
	flow, ok := h.catalog.Flows[flowName]
	if !ok {
		return nil, semaerr.ErrUnknownFlow.New(flowName)
	}

	schema := &FlowSchema{
		Name:        flow.Name,
		Description: flow.Description,
		Dimensions:  map[string]FieldSchema{},
		Measures:    map[string]FieldSchema{},
	}

	for _, alias := range flow.Aliases() {
		table, ok := h.catalog.Tables[tableNameForAlias(flow, alias)]
		if !ok {
			continue
		}
		if alias == flow.BaseAlias && table.TimeDimension != "" {
			schema.TimeDimension = alias + "." + table.TimeDimension
		}
		for name, dim := range table.Dimensions {
			schema.Dimensions[alias+"."+name] = FieldSchema{
				Description: dim.Description,
				DataType:    dim.DataType,
			}
		}
		for name, m := range table.Measures {
			dt := catalog.DataTypeFloat
			if m.Kind == catalog.MeasureAggregate {
				dt = m.Agg.ResultDataType()
			}
			schema.Measures[alias+"."+name] = FieldSchema{
				Description: m.Description,
				DataType:    dt,
			}
		}
	}

	return schema, nil
}

// tableNameForAlias resolves a flow alias back to its SemanticTable name:
// the base alias names the flow's BaseTableName, every joined alias names
// its own join's SemanticTableName.
func tableNameForAlias(flow *catalog.SemanticFlow, alias string) string {
	if alias == flow.BaseAlias {
		return flow.BaseTableName
	}
	if j, ok := flow.JoinByAlias(alias); ok {
		return j.SemanticTableName
	}
	return ""
}
