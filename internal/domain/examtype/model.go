package examtype

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/platform/apierr"
)

// ReferenceRange is the inclusive normal interval for one population
// category ("male", "female", "child", ...).
type ReferenceRange struct {
	Min float64 `json:"min" bson:"min"`
	Max float64 `json:"max" bson:"max"`
}

// Contains reports whether v lies inside the range, bounds included.
func (r ReferenceRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ExamType describes one measurable analyte.
type ExamType struct {
	ID              primitive.ObjectID        `json:"id" bson:"_id"`
	Name            string                    `json:"name" bson:"name"`
	Description     string                    `json:"description" bson:"description"`
	Unit            *string                   `json:"unit,omitempty" bson:"unit,omitempty"`
	ReferenceValues map[string]ReferenceRange `json:"reference_values" bson:"reference_values"`
	CreatedAt       time.Time                 `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at" bson:"updated_at"`
}

// RangeFor returns the reference range for a category, if one is defined.
func (e *ExamType) RangeFor(category string) (ReferenceRange, bool) {
	r, ok := e.ReferenceValues[strings.ToLower(category)]
	return r, ok
}

func (e *ExamType) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return apierr.Invalid("name is required")
	}
	if e.ReferenceValues == nil {
		e.ReferenceValues = map[string]ReferenceRange{}
	}
	normalized, err := normalizeRanges(e.ReferenceValues)
	if err != nil {
		return err
	}
	e.ReferenceValues = normalized
	return nil
}

// Patch is the body of a partial update. A present reference_values map
// replaces the stored one.
type Patch struct {
	Name            *string                   `json:"name,omitempty"`
	Description     *string                   `json:"description,omitempty"`
	Unit            *string                   `json:"unit,omitempty"`
	ReferenceValues map[string]ReferenceRange `json:"reference_values,omitempty"`
}

func (p *Patch) Fields() (map[string]interface{}, error) {
	set := map[string]interface{}{}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apierr.Invalid("name must not be empty")
		}
		set["name"] = name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Unit != nil {
		set["unit"] = *p.Unit
	}
	if p.ReferenceValues != nil {
		ranges, err := normalizeRanges(p.ReferenceValues)
		if err != nil {
			return nil, err
		}
		set["reference_values"] = ranges
	}
	return set, nil
}

func normalizeRanges(in map[string]ReferenceRange) (map[string]ReferenceRange, error) {
	out := make(map[string]ReferenceRange, len(in))
	for category, r := range in {
		key := strings.ToLower(strings.TrimSpace(category))
		if key == "" {
			return nil, apierr.Invalid("reference_values category must not be empty")
		}
		if r.Min > r.Max {
			return nil, apierr.Invalid("reference_values[%s]: min %g is greater than max %g", key, r.Min, r.Max)
		}
		out[key] = r
	}
	return out, nil
}
