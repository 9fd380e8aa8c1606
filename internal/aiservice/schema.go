package aiservice

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const stringOrList = `{"oneOf": [
	{"type": "string"},
	{"type": "array", "items": {"type": "string"}},
	{"type": "null"}
]}`

const breakdownSchema = `{
	"type": ["object", "null"],
	"properties": {
		"skillsMatch":     {"type": ["number", "null"]},
		"experienceMatch": {"type": ["number", "null"]},
		"educationMatch":  {"type": ["number", "null"]},
		"semanticMatch":   {"type": ["number", "null"]},
		"locationMatch":   {"type": ["number", "null"]}
	}
}`

const singleSchema = `{
	"type": "object",
	"required": ["compatibilityScore"],
	"properties": {
		"compatibilityScore": {"type": "number", "minimum": 0, "maximum": 1},
		"matchPercentage":    {"type": ["integer", "null"]},
		"breakdown":          ` + breakdownSchema + `,
		"matchedSkills":      ` + stringOrList + `,
		"missingSkills":      ` + stringOrList + `,
		"recommendations":    ` + stringOrList + `,
		"explanation":        {"type": ["string", "null"]},
		"matchQuality":       {"type": ["string", "null"]}
	}
}`

const batchSchema = `{
	"type": "object",
	"required": ["matches"],
	"properties": {
		"totalCandidates":  {"type": ["integer", "null"]},
		"averageScore":     {"type": ["number", "null"]},
		"topSkillsMatched": ` + stringOrList + `,
		"matches": {
			"type": "array",
			"items": {
				"allOf": [{"$ref": "single.json"}],
				"required": ["candidateId"],
				"properties": {
					"candidateId": {"type": "string"},
					"rank":        {"type": ["integer", "null"]}
				}
			}
		}
	}
}`

const explainSchema = `{
	"type": "object",
	"required": ["compatibilityScore"],
	"properties": {
		"compatibilityScore":     {"type": "number", "minimum": 0, "maximum": 1},
		"breakdown":              ` + breakdownSchema + `,
		"detailedAnalysis":       {"type": ["object", "null"]},
		"strengths":              ` + stringOrList + `,
		"weaknesses":             ` + stringOrList + `,
		"suggestions":            ` + stringOrList + `,
		"decisionRecommendation": {"type": ["string", "null"]}
	}
}`

const healthSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status":  {"type": "string"},
		"message": {"type": ["string", "null"]}
	}
}`

type schemas struct {
	single  *jsonschema.Schema
	batch   *jsonschema.Schema
	explain *jsonschema.Schema
	health  *jsonschema.Schema
}

func compileSchemas() (schemas, error) {
	c := jsonschema.NewCompiler()
	resources := map[string]string{
		"single.json":  singleSchema,
		"batch.json":   batchSchema,
		"explain.json": explainSchema,
		"health.json":  healthSchema,
	}
	for name, src := range resources {
		if err := c.AddResource(name, bytes.NewReader([]byte(src))); err != nil {
			return schemas{}, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	var out schemas
	var err error
	if out.single, err = c.Compile("single.json"); err != nil {
		return schemas{}, fmt.Errorf("compile single schema: %w", err)
	}
	if out.batch, err = c.Compile("batch.json"); err != nil {
		return schemas{}, fmt.Errorf("compile batch schema: %w", err)
	}
	if out.explain, err = c.Compile("explain.json"); err != nil {
		return schemas{}, fmt.Errorf("compile explain schema: %w", err)
	}
	if out.health, err = c.Compile("health.json"); err != nil {
		return schemas{}, fmt.Errorf("compile health schema: %w", err)
	}
	return out, nil
}

// validate checks raw against s before any typed decoding happens.
func validate(s *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("response schema: %w", err)
	}
	return nil
}
