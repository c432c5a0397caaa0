package payload

// Shared response shapes. Define a response struct next to its handler first;
// promote it here once more than one handler needs it.

import (
	"time"

	"github.com/sprint-lab/scrumdesk/dao/model"
)

// UserSummary is the public identity reference embedded in project, story and
// comment responses. It never carries credentials.
type UserSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

func SummarizeUser(u *model.User) UserSummary {
	return UserSummary{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}

// UserProfile is the full self-view of an identity.
type UserProfile struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	Avatar    string     `json:"avatar"`
	Bio       string     `json:"bio"`
	Skills    []string   `json:"skills"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func ProfileOf(u *model.User) UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Skills:    u.Skills,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
