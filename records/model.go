package records

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model carries the columns every collection shares. Embed it in record
// types.
type Model struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random id when none was supplied.
func (m *Model) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// GetID returns the record id.
func (m Model) GetID() string { return m.ID }
