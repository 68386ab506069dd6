package tutorapi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const limitsSchemaURL = "schema://limits.json"

// limitsSchema is the contract of the limits endpoint. The sessions block is
// optional; without it the learner gets one session a day.
const limitsSchema = `{
	"type": "object",
	"required": ["subscription_type"],
	"properties": {
		"subscription_type": {"type": "string"},
		"is_trial": {"type": "boolean"},
		"limits": {
			"type": "object",
			"properties": {
				"sessions": {
					"type": "object",
					"required": ["max", "used"],
					"properties": {
						"max": {"type": "integer", "minimum": 0},
						"used": {"type": "integer", "minimum": 0}
					}
				}
			}
		}
	}
}`

var compileLimitsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(limitsSchema))
	if err != nil {
		return nil, fmt.Errorf("parse limits schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(limitsSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(limitsSchemaURL)
})

// validateLimits checks a decoded limits payload against the schema.
func validateLimits(payload any) error {
	sch, err := compileLimitsSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(payload); err != nil {
		return fmt.Errorf("invalid limits payload: %w", err)
	}
	return nil
}
