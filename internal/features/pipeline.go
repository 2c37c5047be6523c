package features

import (
	"engagedash/internal/models"
)

// Pipeline runs derive, encode and select with one set of settings. Both the
// dataset path and the schema inference go through it.
type Pipeline struct {
	Categoricals []string
	Exclude      []string
	Target       string
	Schema       *FeatureSchema
}

// DefaultPipeline returns the pipeline used when no configuration overrides it.
func DefaultPipeline() Pipeline {
	return Pipeline{
		Categoricals: DefaultCategoricals,
		Exclude:      DefaultExclude,
		Target:       DefaultTarget,
	}
}

// Result holds every intermediate product of a pipeline run.
type Result struct {
	Derived    *Frame
	Encoded    *Frame
	Indicators []string
	Schema     *FeatureSchema
	Dataset    *Dataset
}

// Run processes posts end to end. When p.Schema is nil the schema is inferred
// from the posts and returned in Result.Schema.
func (p Pipeline) Run(posts []models.Post) (*Result, error) {
	derived, err := Derive(posts)
	if err != nil {
		return nil, err
	}

	schema := p.Schema
	if schema == nil {
		if schema, err = InferSchema(derived, p.Categoricals, p.Exclude, p.Target); err != nil {
			return nil, err
		}
	}

	categoricals := p.Categoricals
	if p.Schema != nil {
		categoricals = schema.CategoricalColumns()
	}

	encoded, indicators, err := NewEncoder(schema).Encode(derived, categoricals)
	if err != nil {
		return nil, err
	}

	target := p.Target
	if schema.Target != "" {
		target = schema.Target
	}
	ds, err := Selector{Exclude: p.Exclude, Target: target, Schema: schema}.Select(encoded)
	if err != nil {
		return nil, err
	}

	return &Result{
		Derived:    derived,
		Encoded:    encoded,
		Indicators: indicators,
		Schema:     schema,
		Dataset:    ds,
	}, nil
}
