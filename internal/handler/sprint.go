package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
)

// timeLayout is the wire format for all timestamps in responses.
const timeLayout = time.RFC3339

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewSprintMgr)
}

type SprintMgr struct {
	name string
}

func NewSprintMgr(_ *RegisterConfig) Manager {
	return &SprintMgr{name: "sprints"}
}

func (mgr *SprintMgr) GetName() string { return mgr.name }

func (mgr *SprintMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *SprintMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET(":id", mgr.Get)
	g.PUT(":id", mgr.Update)
	g.DELETE(":id", mgr.Delete)
	g.GET(":id/stories", mgr.ListStories)
	g.POST(":id/stories/:storyId", mgr.AttachStory)
	g.DELETE(":id/stories/:storyId", mgr.DetachStory)
}

func (mgr *SprintMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateSprintReq struct {
		Name      string             `json:"name" binding:"required,min=2,max=100"`
		StartDate time.Time          `json:"startDate" binding:"required"`
		EndDate   time.Time          `json:"endDate" binding:"required"`
		Goal      string             `json:"goal"`
		Status    model.SprintStatus `json:"status" binding:"omitempty,oneof=planning active completed"`
	}

	UpdateSprintReq struct {
		Name      *string             `json:"name" binding:"omitempty,min=2,max=100"`
		StartDate *time.Time          `json:"startDate"`
		EndDate   *time.Time          `json:"endDate"`
		Goal      *string             `json:"goal"`
		Status    *model.SprintStatus `json:"status" binding:"omitempty,oneof=planning active completed"`
	}

	SprintResp struct {
		ID        uint               `json:"id"`
		Name      string             `json:"name"`
		ProjectID uint               `json:"projectId"`
		StartDate time.Time          `json:"startDate"`
		EndDate   time.Time          `json:"endDate"`
		Goal      string             `json:"goal"`
		Status    model.SprintStatus `json:"status"`
		CreatedAt string             `json:"createdAt"`
		UpdatedAt string             `json:"updatedAt"`
	}
)

func sprintResp(s *model.Sprint) SprintResp {
	return SprintResp{
		ID:        s.ID,
		Name:      s.Name,
		ProjectID: s.ProjectID,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Goal:      s.Goal,
		Status:    s.Status,
		CreatedAt: s.CreatedAt.Format(timeLayout),
		UpdatedAt: s.UpdatedAt.Format(timeLayout),
	}
}

// loadSprint fetches a sprint together with its hydrated project, which
// carries the membership needed for authorization. Callers must return when
// ok is false.
func loadSprint(c *gin.Context, id uint) (*model.Sprint, *model.Project, bool) {
	var sprint model.Sprint
	err := query.GetDB().WithContext(c).First(&sprint, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "Sprint not found")
		} else {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
		}
		return nil, nil, false
	}

	project, ok := loadProject(c, sprint.ProjectID)
	if !ok {
		return nil, nil, false
	}
	return &sprint, project, true
}

// Get godoc
// @Summary Get one sprint
// @Tags Sprint
// @Produce json
// @Security Bearer
// @Param id path int true "sprint id"
// @Success 200 {object} resputil.Response[SprintResp] "sprint"
// @Failure 404 {object} resputil.Response[any] "sprint not found"
// @Router /v1/sprints/{id} [get]
func (mgr *SprintMgr) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sprint, project, ok := loadSprint(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	resputil.Success(c, sprintResp(sprint))
}

// Update godoc
// @Summary Update a sprint
// @Description Partial update. Changing either boundary revalidates the whole
// @Description date range.
// @Tags Sprint
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "sprint id"
// @Param data body UpdateSprintReq true "fields to change"
// @Success 200 {object} resputil.Response[SprintResp] "updated sprint"
// @Failure 400 {object} resputil.Response[any] "end date not after start date"
// @Router /v1/sprints/{id} [put]
func (mgr *SprintMgr) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSprintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	sprint, project, ok := loadSprint(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	if req.Name != nil {
		sprint.Name = *req.Name
	}
	if req.StartDate != nil {
		sprint.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		sprint.EndDate = *req.EndDate
	}
	if req.Goal != nil {
		sprint.Goal = *req.Goal
	}
	if req.Status != nil {
		sprint.Status = *req.Status
	}

	if err := query.GetDB().WithContext(c).Save(sprint).Error; err != nil {
		if errors.Is(err, model.ErrSprintDateRange) {
			resputil.InvariantError(c, err.Error())
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, sprintResp(sprint))
}

// Delete godoc
// @Summary Delete a sprint (project owner only)
// @Description Stories in the sprint are not deleted: they are detached and
// @Description sent back to the backlog.
// @Tags Sprint
// @Produce json
// @Security Bearer
// @Param id path int true "sprint id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Failure 403 {object} resputil.Response[any] "not the owner"
// @Router /v1/sprints/{id} [delete]
func (mgr *SprintMgr) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sprint, project, ok := loadSprint(c, id)
	if !ok {
		return
	}
	if !project.CanManage(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Only the project owner can delete sprints")
		return
	}

	err := query.GetDB().WithContext(c).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.Story{}).
			Where("sprint_id = ?", sprint.ID).
			Updates(map[string]any{"sprint_id": nil, "status": model.StoryBacklog}).Error
		if err != nil {
			return err
		}
		return tx.Unscoped().Delete(sprint).Error
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "Sprint deleted")
}

// ListStories godoc
// @Summary List the stories in a sprint
// @Tags Sprint
// @Produce json
// @Security Bearer
// @Param id path int true "sprint id"
// @Success 200 {object} resputil.Response[[]StoryResp] "stories"
// @Router /v1/sprints/{id}/stories [get]
func (mgr *SprintMgr) ListStories(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sprint, project, ok := loadSprint(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	var stories []model.Story
	err := query.GetDB().WithContext(c).
		Preload("Assignee").Preload("Reporter").
		Where("sprint_id = ?", sprint.ID).
		Order("created_at ASC").
		Find(&stories).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(stories, func(s model.Story, _ int) StoryResp {
		return storyResp(&s)
	}))
}

// AttachStory godoc
// @Summary Move a story into the sprint
// @Description The story must belong to the sprint's project. Its status
// @Description moves to todo.
// @Tags Sprint
// @Produce json
// @Security Bearer
// @Param id path int true "sprint id"
// @Param storyId path int true "story id"
// @Success 200 {object} resputil.Response[StoryResp] "updated story"
// @Failure 400 {object} resputil.Response[any] "story in another project"
// @Router /v1/sprints/{id}/stories/{storyId} [post]
func (mgr *SprintMgr) AttachStory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	storyID, ok := parseIDParam(c, "storyId")
	if !ok {
		return
	}

	sprint, project, ok := loadSprint(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	story, ok := loadStory(c, storyID)
	if !ok {
		return
	}
	if story.ProjectID != sprint.ProjectID {
		resputil.InvariantError(c, "Story does not belong to this project")
		return
	}

	story.AttachToSprint(sprint.ID)
	if err := query.GetDB().WithContext(c).Save(story).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, storyResp(story))
}

// DetachStory godoc
// @Summary Remove a story from the sprint
// @Description The story goes back to the backlog.
// @Tags Sprint
// @Produce json
// @Security Bearer
// @Param id path int true "sprint id"
// @Param storyId path int true "story id"
// @Success 200 {object} resputil.Response[StoryResp] "updated story"
// @Failure 400 {object} resputil.Response[any] "story not in this sprint"
// @Router /v1/sprints/{id}/stories/{storyId} [delete]
func (mgr *SprintMgr) DetachStory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	storyID, ok := parseIDParam(c, "storyId")
	if !ok {
		return
	}

	sprint, project, ok := loadSprint(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	story, ok := loadStory(c, storyID)
	if !ok {
		return
	}
	if story.SprintID == nil || *story.SprintID != sprint.ID {
		resputil.InvariantError(c, "Story is not in this sprint")
		return
	}

	story.DetachFromSprint()
	if err := query.GetDB().WithContext(c).Save(story).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, storyResp(story))
}
