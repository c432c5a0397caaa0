package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func projectWith(ownerID uint, memberIDs ...uint) *Project {
	p := &Project{OwnerID: ownerID}
	for _, id := range memberIDs {
		p.Members = append(p.Members, User{Model: gorm.Model{ID: id}})
	}
	return p
}

func TestProjectAccess(t *testing.T) {
	p := projectWith(1, 1, 2)

	assert.True(t, p.IsOwner(1))
	assert.False(t, p.IsOwner(2))

	assert.True(t, p.HasMember(1))
	assert.True(t, p.HasMember(2))
	assert.False(t, p.HasMember(3))

	assert.True(t, p.CanView(2))
	assert.False(t, p.CanView(3))

	assert.True(t, p.CanManage(1))
	assert.False(t, p.CanManage(2), "members must not manage project settings")
}

func TestProjectOwnerIsImplicitMember(t *testing.T) {
	// Even with an empty member set the owner has full access.
	p := projectWith(7)
	assert.True(t, p.HasMember(7))
	assert.True(t, p.CanView(7))
}
