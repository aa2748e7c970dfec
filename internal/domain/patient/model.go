package patient

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/domain/person"
)

// Patient is stored in the patients collection.
type Patient struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	person.Details `bson:",inline"`
	Diseases       []string  `json:"diseases" bson:"diseases"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// Patch is the body of a partial update.
type Patch struct {
	person.DetailsPatch
	Diseases *[]string `json:"diseases,omitempty"`
}

// Fields returns the stored fields to set, without updated_at.
func (p *Patch) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	p.DetailsPatch.Fields(set)
	if p.Diseases != nil {
		set["diseases"] = normalizeDiseases(*p.Diseases)
	}
	return set
}

// Apply merges the patch into pt.
func (p *Patch) Apply(pt *Patient) {
	p.DetailsPatch.Apply(&pt.Details)
	if p.Diseases != nil {
		pt.Diseases = normalizeDiseases(*p.Diseases)
	}
}

// ListQuery selects a page of patients. Search matches name or email,
// case-insensitively, anywhere in the value.
type ListQuery struct {
	Skip   int
	Limit  int
	Search string
}

func normalizeDiseases(in []string) []string {
	out := make([]string, 0, len(in))
	for _, d := range in {
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
