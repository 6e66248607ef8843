package mongodb

import (
	"fmt"

	"github.com/mqlconform/mqlconform/mql"
	"github.com/mqlconform/mqlconform/providers"
	"github.com/mqlconform/mqlconform/query"
	"github.com/mqlconform/mqlconform/schema"
	"go.mongodb.org/mongo-driver/bson"
)

// Translate compiles a structured query into a single MongoDB command.
// Translation is pure; the provider needs no server connection for it.
func (p *Provider) Translate(q *query.Query) (*mql.Command, error) {
	if q == nil {
		return nil, fmt.Errorf("query is nil")
	}

	model, err := p.registry.Get(q.Model)
	if err != nil {
		return nil, err
	}

	if err := p.checkUnsupported(q); err != nil {
		return nil, err
	}

	resolve := func(field string) (string, error) {
		return p.registry.ElementName(q.Model, field)
	}

	filter, err := buildConditions(q.Conditions, resolve)
	if err != nil {
		return nil, err
	}

	// A bare filter, optionally with a projection, stays a find command.
	// Everything else becomes an aggregation pipeline.
	if p.isPlainFind(q) {
		cmd := &mql.Command{
			Operation:  mql.OpFind,
			Collection: model.Collection,
			Filter:     filter,
		}
		if len(q.Projection) > 0 {
			proj, err := p.buildProjection(q)
			if err != nil {
				return nil, err
			}
			cmd.Projection = proj
		}
		return cmd, nil
	}

	pipeline, err := p.buildPipeline(q, model, filter, resolve)
	if err != nil {
		return nil, err
	}

	return &mql.Command{
		Operation:  mql.OpAggregate,
		Collection: model.Collection,
		Pipeline:   pipeline,
	}, nil
}

// checkUnsupported rejects query shapes with documented MQL limitations
func (p *Provider) checkUnsupported(q *query.Query) error {
	grouped := len(q.GroupBy) > 0 || len(q.Aggregates) > 0

	if q.Distinct {
		if len(q.Projection) != 1 {
			return providers.Unsupportedf("DISTINCT requires exactly one projected field, got %d", len(q.Projection))
		}
		if grouped {
			return providers.Unsupportedf("DISTINCT cannot be combined with GroupBy or aggregates")
		}
		if len(q.Includes) > 0 {
			return providers.Unsupportedf("DISTINCT cannot be combined with Include")
		}
	}

	for _, inc := range q.Includes {
		if inc.Skip > 0 || inc.Take > 0 {
			return providers.Unsupportedf("paging inside Include(%s) cannot be expressed in a single $lookup stage", inc.Relation)
		}
		if grouped {
			return providers.Unsupportedf("Include(%s) cannot be combined with GroupBy or aggregates", inc.Relation)
		}
	}

	if q.Vector != nil && (grouped || q.Distinct) {
		return providers.Unsupportedf("vector search cannot be combined with grouping or DISTINCT")
	}

	if len(q.Having) > 0 && !grouped {
		return fmt.Errorf("HAVING requires GroupBy or aggregates")
	}

	if len(q.GroupBy) > 0 && len(q.Aggregates) == 0 {
		return fmt.Errorf("GroupBy without aggregates has no result shape")
	}

	return nil
}

func (p *Provider) isPlainFind(q *query.Query) bool {
	return len(q.Orders) == 0 &&
		len(q.GroupBy) == 0 &&
		len(q.Aggregates) == 0 &&
		len(q.Includes) == 0 &&
		len(q.Having) == 0 &&
		!q.Distinct &&
		q.Vector == nil &&
		!q.HasPaging()
}

func (p *Provider) buildPipeline(q *query.Query, model *schema.Schema, filter bson.D, resolve fieldResolver) ([]bson.D, error) {
	var pipeline []bson.D

	if q.Vector != nil {
		stage, err := p.buildVectorSearchStage(q, filter)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, stage)
	} else if filter != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: filter}})
	}

	for _, inc := range q.Includes {
		stages, err := p.buildLookupStages(q.Model, inc)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, stages...)
	}

	grouped := len(q.GroupBy) > 0 || len(q.Aggregates) > 0
	if grouped {
		stages, err := p.buildGroupStages(q, resolve)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, stages...)
	}

	if q.Distinct {
		stages, err := p.buildDistinctStages(q)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, stages...)
	}

	if len(q.Orders) > 0 {
		sort, err := p.buildSort(q, grouped)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: sort}})
	}

	if q.SkipN >= 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: q.SkipN}})
	}
	if q.TakeN >= 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: q.TakeN}})
	}

	if len(q.Projection) > 0 && !q.Distinct && !grouped {
		proj, err := p.buildProjection(q)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: proj}})
	}

	return pipeline, nil
}

// buildVectorSearchStage emits $vectorSearch; a filter folds into the stage
// because $vectorSearch must be the first pipeline stage.
func (p *Provider) buildVectorSearchStage(q *query.Query, filter bson.D) (bson.D, error) {
	vs := q.Vector
	element, err := p.registry.ElementName(q.Model, vs.Field)
	if err != nil {
		return nil, err
	}

	field, err := p.registry.Get(q.Model)
	if err != nil {
		return nil, err
	}
	vecField, err := field.GetField(vs.Field)
	if err != nil {
		return nil, err
	}
	if vecField.Type != schema.FieldTypeVector {
		return nil, fmt.Errorf("field %s.%s is not a vector field", q.Model, vs.Field)
	}
	if vecField.VectorDims != len(vs.Vector) {
		return nil, fmt.Errorf("query vector has %d dimensions, field %s.%s has %d",
			len(vs.Vector), q.Model, vs.Field, vecField.VectorDims)
	}

	queryVector := make(bson.A, len(vs.Vector))
	for i, v := range vs.Vector {
		queryVector[i] = v
	}

	stage := bson.D{
		{Key: "index", Value: vs.Index},
		{Key: "path", Value: element},
		{Key: "queryVector", Value: queryVector},
		{Key: "numCandidates", Value: vs.Candidates},
		{Key: "limit", Value: vs.Limit},
	}
	if filter != nil {
		stage = append(stage, bson.E{Key: "filter", Value: filter})
	}
	return bson.D{{Key: "$vectorSearch", Value: stage}}, nil
}

func (p *Provider) buildLookupStages(modelName string, inc query.Include) ([]bson.D, error) {
	rel, err := p.registry.Relation(modelName, inc.Relation)
	if err != nil {
		return nil, err
	}
	from, err := p.registry.CollectionName(rel.Model)
	if err != nil {
		return nil, err
	}

	var localField, foreignField string
	switch rel.Type {
	case schema.RelationOneToMany:
		localField, err = p.registry.ElementName(modelName, rel.References)
		if err != nil {
			return nil, err
		}
		foreignField, err = p.registry.ElementName(rel.Model, rel.ForeignKey)
		if err != nil {
			return nil, err
		}
	case schema.RelationManyToOne, schema.RelationOneToOne:
		localField, err = p.registry.ElementName(modelName, rel.ForeignKey)
		if err != nil {
			return nil, err
		}
		foreignField, err = p.registry.ElementName(rel.Model, rel.References)
		if err != nil {
			return nil, err
		}
	default:
		return nil, providers.Unsupportedf("relation type %s cannot be expressed with $lookup", rel.Type)
	}

	stages := []bson.D{{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: foreignField},
		{Key: "as", Value: inc.Relation},
	}}}}

	// To-one relations unwind the single-element array $lookup produces
	if rel.Type == schema.RelationManyToOne || rel.Type == schema.RelationOneToOne {
		stages = append(stages, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + inc.Relation},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}

	return stages, nil
}

func (p *Provider) buildGroupStages(q *query.Query, resolve fieldResolver) ([]bson.D, error) {
	// A lone Count with no grouping is the $count shorthand
	if len(q.GroupBy) == 0 && len(q.Aggregates) == 1 && q.Aggregates[0].Type == query.AggregateCount {
		return []bson.D{{{Key: "$count", Value: q.Aggregates[0].Alias}}}, nil
	}

	var groupKey any
	switch len(q.GroupBy) {
	case 0:
		groupKey = nil
	case 1:
		element, err := resolve(q.GroupBy[0])
		if err != nil {
			return nil, err
		}
		groupKey = "$" + element
	default:
		key := bson.D{}
		for _, field := range q.GroupBy {
			element, err := resolve(field)
			if err != nil {
				return nil, err
			}
			key = append(key, bson.E{Key: field, Value: "$" + element})
		}
		groupKey = key
	}

	group := bson.D{{Key: "_id", Value: groupKey}}
	for _, agg := range q.Aggregates {
		accum, err := p.buildAccumulator(q, agg, resolve)
		if err != nil {
			return nil, err
		}
		group = append(group, bson.E{Key: agg.Alias, Value: accum})
	}

	stages := []bson.D{{{Key: "$group", Value: group}}}

	if len(q.Having) > 0 {
		// HAVING filters on aggregate aliases, which are already element names
		havingFilter, err := buildConditions(q.Having, func(field string) (string, error) {
			return field, nil
		})
		if err != nil {
			return nil, err
		}
		stages = append(stages, bson.D{{Key: "$match", Value: havingFilter}})
	}

	return stages, nil
}

func (p *Provider) buildAccumulator(q *query.Query, agg query.Aggregate, resolve fieldResolver) (bson.D, error) {
	if agg.Alias == "" {
		return nil, fmt.Errorf("aggregate %s needs an alias", agg.Type)
	}

	if agg.Type == query.AggregateCount {
		return bson.D{{Key: "$sum", Value: 1}}, nil
	}

	if agg.Field == "" {
		return nil, fmt.Errorf("aggregate %s needs a field", agg.Type)
	}
	element, err := resolve(agg.Field)
	if err != nil {
		return nil, err
	}
	ref := "$" + element

	switch agg.Type {
	case query.AggregateSum:
		return bson.D{{Key: "$sum", Value: ref}}, nil
	case query.AggregateAvg:
		return bson.D{{Key: "$avg", Value: ref}}, nil
	case query.AggregateMin:
		return bson.D{{Key: "$min", Value: ref}}, nil
	case query.AggregateMax:
		return bson.D{{Key: "$max", Value: ref}}, nil
	default:
		return nil, providers.Unsupportedf("aggregate %s has no MQL accumulator", agg.Type)
	}
}

// buildDistinctStages deduplicates a single projected field via $group
func (p *Provider) buildDistinctStages(q *query.Query) ([]bson.D, error) {
	element, err := p.registry.ElementName(q.Model, q.Projection[0])
	if err != nil {
		return nil, err
	}
	return []bson.D{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + element}}}},
		{{Key: "$project", Value: bson.D{
			{Key: element, Value: "$_id"},
			{Key: "_id", Value: 0},
		}}},
	}, nil
}

func (p *Provider) buildSort(q *query.Query, grouped bool) (bson.D, error) {
	sort := bson.D{}
	for _, order := range q.Orders {
		element, err := p.resolveSortField(q, order.Field, grouped)
		if err != nil {
			return nil, err
		}
		direction := 1
		if order.Direction == query.Desc {
			direction = -1
		}
		sort = append(sort, bson.E{Key: element, Value: direction})
	}
	return sort, nil
}

// resolveSortField maps a sort field to whatever element name it has at the
// point the $sort stage runs.
func (p *Provider) resolveSortField(q *query.Query, field string, grouped bool) (string, error) {
	if grouped {
		for _, agg := range q.Aggregates {
			if agg.Alias == field {
				return field, nil
			}
		}
		for _, g := range q.GroupBy {
			if g == field {
				if len(q.GroupBy) == 1 {
					return "_id", nil
				}
				return "_id." + field, nil
			}
		}
		return "", fmt.Errorf("sort field %s is not part of the grouped result shape", field)
	}
	if q.Distinct {
		// Distinct output carries only the projected element
		if field != q.Projection[0] {
			return "", fmt.Errorf("sort field %s is not part of the distinct result shape", field)
		}
		return p.registry.ElementName(q.Model, q.Projection[0])
	}
	return p.registry.ElementName(q.Model, field)
}

func (p *Provider) buildProjection(q *query.Query) (bson.D, error) {
	proj := bson.D{}
	sawPrimaryKey := false
	for _, field := range q.Projection {
		element, err := p.registry.ElementName(q.Model, field)
		if err != nil {
			return nil, err
		}
		if element == "_id" {
			sawPrimaryKey = true
		}
		proj = append(proj, bson.E{Key: element, Value: 1})
	}
	if !sawPrimaryKey {
		proj = append(proj, bson.E{Key: "_id", Value: 0})
	}
	return proj, nil
}
