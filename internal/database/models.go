package database

import (
	"strings"
	"time"
)

// DefaultSLADays applies to claims whose category has no SLA configured
const DefaultSLADays = 7

// Category groups claim items and carries the SLA and approver for them
type Category struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string       `gorm:"type:text" json:"description"`
	SLADays     int          `gorm:"column:sla_days" json:"sla_days"`
	Approver    ApproverRole `gorm:"type:varchar(64);index" json:"approver,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// EffectiveSLADays returns the configured SLA or DefaultSLADays when unset
func (c *Category) EffectiveSLADays() int {
	if c == nil || c.SLADays <= 0 {
		return DefaultSLADays
	}
	return c.SLADays
}

// User is a staff account. Users holding an ApproverRole receive routed claims.
type User struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"size:255" json:"name"`
	Email        string       `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string       `gorm:"type:text" json:"-"`
	ApproverRole ApproverRole `gorm:"type:varchar(64);index" json:"approver_role,omitempty"`
	Active       bool         `gorm:"not null" json:"active"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// DisplayName falls back to the email when the user has no name
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}

// Claim is one warranty claim. Intake creates one claim per submitted line item.
type Claim struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OrderID       string      `gorm:"size:64;not null;index" json:"order_id"`
	ClaimNumber   string      `gorm:"uniqueIndex;size:64;not null" json:"claim_number"`
	CustomerName  string      `gorm:"size:255" json:"customer_name"`
	CustomerEmail string      `gorm:"size:255;not null" json:"customer_email"`
	CustomerPhone string      `gorm:"size:32" json:"customer_phone"`
	DeliveryDate  *time.Time  `json:"delivery_date,omitempty"`
	CategoryID    uint        `gorm:"not null;index" json:"category_id"`
	Status        ClaimStatus `gorm:"type:varchar(32);not null;default:'new';index" json:"status"`
	CreatedBy     uint        `gorm:"not null;index" json:"created_by"`
	AssignedTo    *uint       `gorm:"index" json:"assigned_to,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Items []ClaimItem  `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Notes []ClaimNote  `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"notes,omitempty"`
	Media []ClaimMedia `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
}

// ClaimItem is the product line a claim was raised for
type ClaimItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClaimID     uint      `gorm:"not null;index" json:"claim_id"`
	SKU         string    `gorm:"column:sku;size:64;not null" json:"sku"`
	ProductName string    `gorm:"size:255" json:"product_name"`
	ProductType string    `gorm:"size:128" json:"product_type"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ClaimNote is an append-only audit entry on a claim
type ClaimNote struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	ClaimID       uint         `gorm:"not null;index" json:"claim_id"`
	Note          string       `gorm:"type:text;not null" json:"note"`
	StatusChanged bool         `gorm:"default:false" json:"status_changed"`
	OldStatus     *ClaimStatus `gorm:"type:varchar(32)" json:"old_status,omitempty"`
	NewStatus     *ClaimStatus `gorm:"type:varchar(32)" json:"new_status,omitempty"`
	CreatedBy     uint         `gorm:"not null" json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ClaimMedia references an uploaded photo or video attached to a claim item.
// The file itself lives in external storage under StorageKey.
type ClaimMedia struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClaimID     uint      `gorm:"not null;index" json:"claim_id"`
	ItemID      uint      `gorm:"not null;index" json:"item_id"`
	StorageKey  string    `gorm:"size:512;not null" json:"storage_key"`
	ContentType string    `gorm:"size:128" json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "claim_categories"
}

func (User) TableName() string {
	return "users"
}

func (Claim) TableName() string {
	return "claims"
}

func (ClaimItem) TableName() string {
	return "claim_items"
}

func (ClaimNote) TableName() string {
	return "claim_notes"
}

func (ClaimMedia) TableName() string {
	return "claim_media"
}
