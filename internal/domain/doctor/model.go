package doctor

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/healthtracker/healthtracker/internal/domain/person"
)

// Doctor is stored in the doctors collection and referenced, optionally, by
// blood tests.
type Doctor struct {
	ID             primitive.ObjectID `json:"id" bson:"_id"`
	person.Details `bson:",inline"`
	Specialty      string    `json:"specialty" bson:"specialty"`
	LicenseNumber  string    `json:"license_number" bson:"license_number"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type Patch struct {
	person.DetailsPatch
	Specialty     *string `json:"specialty,omitempty"`
	LicenseNumber *string `json:"license_number,omitempty"`
}

func (p *Patch) Fields() map[string]interface{} {
	set := map[string]interface{}{}
	p.DetailsPatch.Fields(set)
	if p.Specialty != nil {
		set["specialty"] = strings.TrimSpace(*p.Specialty)
	}
	if p.LicenseNumber != nil {
		set["license_number"] = strings.TrimSpace(*p.LicenseNumber)
	}
	return set
}
