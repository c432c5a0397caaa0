package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/payload"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewStoryMgr)
}

type StoryMgr struct {
	name string
}

func NewStoryMgr(_ *RegisterConfig) Manager {
	return &StoryMgr{name: "stories"}
}

func (mgr *StoryMgr) GetName() string { return mgr.name }

func (mgr *StoryMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *StoryMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET(":id", mgr.Get)
	g.PUT(":id", mgr.Update)
	g.DELETE(":id", mgr.Delete)
	g.POST(":id/comments", mgr.AddComment)
}

func (mgr *StoryMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateStoryReq struct {
		Title       string              `json:"title" binding:"required,min=2,max=200"`
		Description string              `json:"description"`
		SprintID    *uint               `json:"sprintId"`
		Status      model.StoryStatus   `json:"status" binding:"omitempty,oneof=backlog todo inProgress review done"`
		Priority    model.StoryPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
		Points      *int                `json:"points" binding:"omitempty,min=0,max=100"`
		AssigneeID  *uint               `json:"assigneeId"`
	}

	UpdateStoryReq struct {
		Title       *string              `json:"title" binding:"omitempty,min=2,max=200"`
		Description *string              `json:"description"`
		Status      *model.StoryStatus   `json:"status" binding:"omitempty,oneof=backlog todo inProgress review done"`
		Priority    *model.StoryPriority `json:"priority" binding:"omitempty,oneof=low medium high"`
		Points      *int                 `json:"points" binding:"omitempty,min=0,max=100"`
		AssigneeID  *uint                `json:"assigneeId"`
	}

	StoryResp struct {
		ID          uint                 `json:"id"`
		Title       string               `json:"title"`
		Description string               `json:"description"`
		ProjectID   uint                 `json:"projectId"`
		SprintID    *uint                `json:"sprintId"`
		Status      model.StoryStatus    `json:"status"`
		Priority    model.StoryPriority  `json:"priority"`
		Points      int                  `json:"points"`
		Assignee    *payload.UserSummary `json:"assignee"`
		Reporter    payload.UserSummary  `json:"reporter"`
		Comments    []model.Comment      `json:"comments"`
		CreatedAt   string               `json:"createdAt"`
		UpdatedAt   string               `json:"updatedAt"`
	}
)

func storyResp(s *model.Story) StoryResp {
	resp := StoryResp{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		ProjectID:   s.ProjectID,
		SprintID:    s.SprintID,
		Status:      s.Status,
		Priority:    s.Priority,
		Points:      s.Points,
		Reporter:    payload.SummarizeUser(&s.Reporter),
		Comments:    s.Comments,
		CreatedAt:   s.CreatedAt.Format(timeLayout),
		UpdatedAt:   s.UpdatedAt.Format(timeLayout),
	}
	if s.Assignee != nil {
		summary := payload.SummarizeUser(s.Assignee)
		resp.Assignee = &summary
	}
	if resp.Comments == nil {
		resp.Comments = []model.Comment{}
	}
	return resp
}

// loadStory fetches a story with its assignee and reporter hydrated. Callers
// must return when ok is false.
func loadStory(c *gin.Context, id uint) (*model.Story, bool) {
	var story model.Story
	err := query.GetDB().WithContext(c).
		Preload("Assignee").Preload("Reporter").
		First(&story, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "Story not found")
		} else {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
		}
		return nil, false
	}
	return &story, true
}

// Get godoc
// @Summary Get one story
// @Tags Story
// @Produce json
// @Security Bearer
// @Param id path int true "story id"
// @Success 200 {object} resputil.Response[StoryResp] "story"
// @Failure 404 {object} resputil.Response[any] "story not found"
// @Router /v1/stories/{id} [get]
func (mgr *StoryMgr) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	story, ok := loadStory(c, id)
	if !ok {
		return
	}
	project, ok := loadProject(c, story.ProjectID)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	resputil.Success(c, storyResp(story))
}

// Update godoc
// @Summary Update a story
// @Description Partial update. Setting assigneeId to a user outside the
// @Description project is rejected; sending assigneeId as null unassigns.
// @Tags Story
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "story id"
// @Param data body UpdateStoryReq true "fields to change"
// @Success 200 {object} resputil.Response[StoryResp] "updated story"
// @Failure 400 {object} resputil.Response[any] "assignee not a member"
// @Router /v1/stories/{id} [put]
func (mgr *StoryMgr) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	body := map[string]any{}
	if err := c.ShouldBindBodyWithJSON(&body); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UpdateStoryReq
	if err := c.ShouldBindBodyWithJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	story, ok := loadStory(c, id)
	if !ok {
		return
	}
	project, ok := loadProject(c, story.ProjectID)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	if req.Title != nil {
		story.Title = *req.Title
	}
	if req.Description != nil {
		story.Description = *req.Description
	}
	if req.Status != nil {
		story.Status = *req.Status
	}
	if req.Priority != nil {
		story.Priority = *req.Priority
	}
	if req.Points != nil {
		story.Points = *req.Points
	}
	// Distinguish "assigneeId": null (unassign) from an absent key (no change).
	if raw, present := body["assigneeId"]; present {
		if raw == nil {
			story.AssigneeID = nil
			story.Assignee = nil
		} else {
			if req.AssigneeID == nil || !project.HasMember(*req.AssigneeID) {
				resputil.InvariantError(c, "Assignee must be a project member")
				return
			}
			story.AssigneeID = req.AssigneeID
		}
	}

	if err := query.GetDB().WithContext(c).Save(story).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	updated, ok := loadStory(c, story.ID)
	if !ok {
		return
	}
	resputil.Success(c, storyResp(updated))
}

// Delete godoc
// @Summary Delete a story (project owner or reporter only)
// @Tags Story
// @Produce json
// @Security Bearer
// @Param id path int true "story id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Failure 403 {object} resputil.Response[any] "not owner or reporter"
// @Router /v1/stories/{id} [delete]
func (mgr *StoryMgr) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	story, ok := loadStory(c, id)
	if !ok {
		return
	}
	project, ok := loadProject(c, story.ProjectID)
	if !ok {
		return
	}
	token := util.GetToken(c)
	if !project.CanView(token.UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}
	if !story.CanDelete(project, token.UserID) {
		resputil.ForbiddenError(c, "Only the project owner or the reporter can delete a story")
		return
	}

	if err := query.GetDB().WithContext(c).Unscoped().Delete(story).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "Story deleted")
}

type AddCommentReq struct {
	Text string `json:"text" binding:"required,min=1,max=2000"`
}

// AddComment godoc
// @Summary Append a comment to a story
// @Description Comments are append-only; there is no edit or delete.
// @Tags Story
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "story id"
// @Param data body AddCommentReq true "comment text"
// @Success 201 {object} resputil.Response[StoryResp] "story with the new comment"
// @Router /v1/stories/{id}/comments [post]
func (mgr *StoryMgr) AddComment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	story, ok := loadStory(c, id)
	if !ok {
		return
	}
	project, ok := loadProject(c, story.ProjectID)
	if !ok {
		return
	}

	token := util.GetToken(c)
	if !project.CanView(token.UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	db := query.GetDB().WithContext(c)
	var author model.User
	if err := db.First(&author, token.UserID).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}

	story.AddComment(&author, req.Text)
	if err := db.Save(story).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Created(c, storyResp(story))
}
