package models

import "time"

// Exercise is a catalog movement used by workout plans
type Exercise struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string `gorm:"size:255;not null;index" json:"name"`
	MuscleGroup  string `gorm:"size:100;index" json:"muscle_group"`
	Equipment    string `gorm:"size:100" json:"equipment"`
	Instructions string `gorm:"size:4000" json:"instructions"`
	Ownership
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name for Exercise
func (Exercise) TableName() string {
	return "exercises"
}
