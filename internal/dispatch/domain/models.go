package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
	resourcedomain "github.com/smallbiznis/sathi/internal/resource/domain"
)

// DispatchLog is the append-only record of one committed dispatch. The
// Request and Resource associations only carry the foreign keys for
// migrations; repositories never load them.
type DispatchLog struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	CrisisRequestID    snowflake.ID `json:"crisis_request_id" gorm:"not null;index"`
	ResourceID         snowflake.ID `json:"resource_id" gorm:"not null;index"`
	DispatchedQuantity int          `json:"dispatched_quantity" gorm:"not null;check:dispatched_quantity > 0"`
	DispatchedAt       time.Time    `json:"dispatched_at" gorm:"not null;index"`
	Notes              *string      `json:"notes" gorm:"type:text"`

	Request  *crisisdomain.CrisisRequest `json:"-" gorm:"foreignKey:CrisisRequestID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Resource *resourcedomain.Resource    `json:"-" gorm:"foreignKey:ResourceID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
}

func (DispatchLog) TableName() string { return "dispatch_logs" }
