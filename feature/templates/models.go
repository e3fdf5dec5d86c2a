package templates

import "time"

// Template is a reusable deck template row.
type Template struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"uniqueIndex;size:128" json:"slug"`
	Name      string    `gorm:"size:255" json:"name"`
	Theme     string    `gorm:"size:64" json:"theme"`
	Body      string    `gorm:"type:longtext" json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default gorm table name.
func (Template) TableName() string {
	return "deck_templates"
}
