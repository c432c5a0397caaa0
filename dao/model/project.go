package model

import (
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Project is a unit of work ownership with a unique short key and a member list.
// The owner is set at creation and never changes; the owner is always present in
// the member set.
type Project struct {
	gorm.Model
	Name        string        `gorm:"type:varchar(100);not null"`
	Key         string        `gorm:"uniqueIndex;type:varchar(10);not null"`
	Description string        `gorm:"type:text"`
	Status      ProjectStatus `gorm:"type:varchar(16);not null;default:'active'"`
	OwnerID     uint          `gorm:"not null;index"`
	Owner       User
	Members     []User `gorm:"many2many:project_members;"`
}

// IsOwner reports whether userID owns the project. Owner-gated operations
// (update, delete, membership changes) use this stricter predicate.
func (p *Project) IsOwner(userID uint) bool {
	return p.OwnerID == userID
}

// HasMember reports whether userID appears in the member set. The owner
// counts as a member even if the join row is missing.
func (p *Project) HasMember(userID uint) bool {
	if p.IsOwner(userID) {
		return true
	}
	return lo.ContainsBy(p.Members, func(u User) bool { return u.ID == userID })
}

// CanView gates read access and member-level writes (sprints, stories).
func (p *Project) CanView(userID uint) bool {
	return p.HasMember(userID)
}

// CanManage gates project settings, deletion and membership changes.
func (p *Project) CanManage(userID uint) bool {
	return p.IsOwner(userID)
}
