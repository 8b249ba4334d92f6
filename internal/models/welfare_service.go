package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// WelfareService is one entry of the public welfare-service catalog, synced
// periodically from the open data portal.
type WelfareService struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ServiceID string `gorm:"column:service_id;type:text;uniqueIndex" json:"service_id"` // portal identifier
	Name      string `gorm:"column:name;type:text;index" json:"name"`
	Summary   string `gorm:"column:summary;type:text" json:"summary"`
	Agency    string `gorm:"column:agency;type:text" json:"agency"`
	Phone     string `gorm:"column:phone;type:text" json:"phone"`

	Regions pq.StringArray `gorm:"column:regions;type:text[]" json:"regions"` // ex: ["서울특별시","강서구"]
	Targets pq.StringArray `gorm:"column:targets;type:text[]" json:"targets"` // ex: ["노인","저소득"]

	// raw portal payload, structure varies per service
	Extras datatypes.JSON `gorm:"column:extras;type:jsonb" json:"extras,omitempty"`

	SyncedAt  time.Time `gorm:"column:synced_at;type:timestamptz" json:"synced_at"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (WelfareService) TableName() string { return "welfare_services" }
