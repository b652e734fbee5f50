package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/omarhijazi/souqline-backend/pkg/enums"
)

// StoreIntegration holds the per-storefront webhook credentials used to
// authenticate and route inbound order events.
type StoreIntegration struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Type          enums.IntegrationType `gorm:"column:type;type:text;not null"`
	StoreID       string                `gorm:"column:store_id;not null;uniqueIndex"`
	WebhookSecret string                `gorm:"column:webhook_secret;not null"`
	IsActive      bool                  `gorm:"column:is_active;not null;default:true"`
	UserID        uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
