package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrSprintDateRange is returned when a write would persist a sprint whose end
// date is not strictly after its start date.
var ErrSprintDateRange = errors.New("sprint end date must be after start date")

// Sprint is a time-boxed iteration belonging to one project.
type Sprint struct {
	gorm.Model
	Name      string       `gorm:"type:varchar(100);not null"`
	ProjectID uint         `gorm:"not null;index"`
	StartDate time.Time    `gorm:"not null"`
	EndDate   time.Time    `gorm:"not null"`
	Goal      string       `gorm:"type:text"`
	Status    SprintStatus `gorm:"type:varchar(16);not null;default:'planning'"`
}

// BeforeSave rejects an invalid date range at the point of persistence, so a
// partial update changing only one of the two dates is still validated against
// the combined range.
func (s *Sprint) BeforeSave(_ *gorm.DB) error {
	if !s.EndDate.After(s.StartDate) {
		return ErrSprintDateRange
	}
	return nil
}
