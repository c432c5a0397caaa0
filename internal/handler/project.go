package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/sprint-lab/scrumdesk/dao/model"
	"github.com/sprint-lab/scrumdesk/dao/query"
	"github.com/sprint-lab/scrumdesk/internal/payload"
	"github.com/sprint-lab/scrumdesk/internal/resputil"
	"github.com/sprint-lab/scrumdesk/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name string
}

func NewProjectMgr(_ *RegisterConfig) Manager {
	return &ProjectMgr{name: "projects"}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.POST("", mgr.Create)
	g.GET(":id", mgr.Get)
	g.PUT(":id", mgr.Update)
	g.DELETE(":id", mgr.Delete)
	g.POST(":id/members", mgr.AddMember)
	g.DELETE(":id/members/:userId", mgr.RemoveMember)
	g.GET(":id/sprints", mgr.ListSprints)
	g.POST(":id/sprints", mgr.CreateSprint)
	g.GET(":id/stories", mgr.ListStories)
	g.POST(":id/stories", mgr.CreateStory)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// parseIDParam reads a numeric path parameter, replying 400 on garbage.
// Callers must return immediately when ok is false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		resputil.BadRequestError(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// loadProject fetches a project with its owner and member set hydrated.
// It writes the error reply itself; callers must return when ok is false.
func loadProject(c *gin.Context, id uint) (*model.Project, bool) {
	var project model.Project
	err := query.GetDB().WithContext(c).
		Preload("Owner").Preload("Members").
		First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "Project not found")
		} else {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
		}
		return nil, false
	}
	return &project, true
}

type ProjectResp struct {
	ID          uint                  `json:"id"`
	Name        string                `json:"name"`
	Key         string                `json:"key"`
	Description string                `json:"description"`
	Status      model.ProjectStatus   `json:"status"`
	Owner       payload.UserSummary   `json:"owner"`
	Members     []payload.UserSummary `json:"members"`
	CreatedAt   string                `json:"createdAt"`
	UpdatedAt   string                `json:"updatedAt"`
}

func projectResp(p *model.Project) ProjectResp {
	return ProjectResp{
		ID:          p.ID,
		Name:        p.Name,
		Key:         p.Key,
		Description: p.Description,
		Status:      p.Status,
		Owner:       payload.SummarizeUser(&p.Owner),
		Members: lo.Map(p.Members, func(u model.User, _ int) payload.UserSummary {
			return payload.SummarizeUser(&u)
		}),
		CreatedAt: p.CreatedAt.Format(timeLayout),
		UpdatedAt: p.UpdatedAt.Format(timeLayout),
	}
}

// List godoc
// @Summary List projects the caller owns or belongs to
// @Tags Project
// @Produce json
// @Security Bearer
// @Success 200 {object} resputil.Response[[]ProjectResp] "projects"
// @Router /v1/projects [get]
func (mgr *ProjectMgr) List(c *gin.Context) {
	token := util.GetToken(c)
	db := query.GetDB().WithContext(c)

	var projects []model.Project
	err := db.Preload("Owner").Preload("Members").
		Joins("LEFT JOIN project_members pm ON pm.project_id = projects.id AND pm.user_id = ?", token.UserID).
		Where("projects.owner_id = ? OR pm.user_id IS NOT NULL", token.UserID).
		Distinct("projects.*").
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(projects, func(p model.Project, _ int) ProjectResp {
		return projectResp(&p)
	}))
}

type CreateProjectReq struct {
	Name        string              `json:"name" binding:"required,min=2,max=100"`
	Key         string              `json:"key" binding:"required,alphanum,min=2,max=10"`
	Description string              `json:"description"`
	Status      model.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed archived"`
}

// Create godoc
// @Summary Create a project owned by the caller
// @Description The key is stored uppercase and must be unique across the
// @Description workspace. The owner is added to the member set automatically.
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body CreateProjectReq true "project info"
// @Success 201 {object} resputil.Response[ProjectResp] "created project"
// @Failure 400 {object} resputil.Response[any] "duplicate key"
// @Router /v1/projects [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	var req CreateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	db := query.GetDB().WithContext(c)
	key := strings.ToUpper(req.Key)

	var count int64
	if err := db.Model(&model.Project{}).Where("key = ?", key).Count(&count).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if count > 0 {
		resputil.ConflictError(c, "Project key already exists")
		return
	}

	project := model.Project{
		Name:        req.Name,
		Key:         key,
		Description: req.Description,
		Status:      model.ProjectActive,
		OwnerID:     token.UserID,
	}
	if req.Status != "" {
		project.Status = req.Status
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		// The owner is always a member of their own project.
		return tx.Model(&project).Association("Members").
			Append(&model.User{Model: gorm.Model{ID: token.UserID}})
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	created, ok := loadProject(c, project.ID)
	if !ok {
		return
	}
	resputil.Created(c, projectResp(created))
}

// Get godoc
// @Summary Get one project
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[ProjectResp] "project"
// @Failure 403 {object} resputil.Response[any] "not a member"
// @Failure 404 {object} resputil.Response[any] "project not found"
// @Router /v1/projects/{id} [get]
func (mgr *ProjectMgr) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := loadProject(c, id)
	if !ok {
		return
	}

	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	resputil.Success(c, projectResp(project))
}

type UpdateProjectReq struct {
	Name        *string              `json:"name" binding:"omitempty,min=2,max=100"`
	Description *string              `json:"description"`
	Status      *model.ProjectStatus `json:"status" binding:"omitempty,oneof=active completed archived"`
}

// Update godoc
// @Summary Update project settings (owner only)
// @Description Partial update: only fields present in the body change. The key
// @Description and the owner are immutable.
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param data body UpdateProjectReq true "fields to change"
// @Success 200 {object} resputil.Response[ProjectResp] "updated project"
// @Failure 403 {object} resputil.Response[any] "not the owner"
// @Router /v1/projects/{id} [put]
func (mgr *ProjectMgr) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanManage(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Only the project owner can update the project")
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}

	if err := query.GetDB().WithContext(c).Save(project).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, projectResp(project))
}

// Delete godoc
// @Summary Delete a project and everything inside it (owner only)
// @Description Cascades over the project's sprints, stories and membership
// @Description rows in one transaction.
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[string] "deleted"
// @Failure 403 {object} resputil.Response[any] "not the owner"
// @Router /v1/projects/{id} [delete]
func (mgr *ProjectMgr) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanManage(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Only the project owner can delete the project")
		return
	}

	err := query.GetDB().WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&model.Story{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("project_id = ?", project.ID).Delete(&model.Sprint{}).Error; err != nil {
			return err
		}
		if err := tx.Model(project).Association("Members").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(project).Error
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "Project deleted")
}

type AddMemberReq struct {
	UserID uint `json:"userId" binding:"required"`
}

// AddMember godoc
// @Summary Add a user to the project member set (owner only)
// @Tags Project
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param data body AddMemberReq true "user to add"
// @Success 200 {object} resputil.Response[ProjectResp] "updated project"
// @Failure 400 {object} resputil.Response[any] "already a member"
// @Failure 404 {object} resputil.Response[any] "user not found"
// @Router /v1/projects/{id}/members [post]
func (mgr *ProjectMgr) AddMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanManage(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Only the project owner can manage members")
		return
	}

	db := query.GetDB().WithContext(c)

	var user model.User
	if err := db.First(&user, req.UserID).Error; err != nil {
		resputil.NotFoundError(c, "User not found")
		return
	}
	if project.HasMember(user.ID) {
		resputil.ConflictError(c, "User is already a member")
		return
	}

	if err := db.Model(project).Association("Members").Append(&user); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	updated, ok := loadProject(c, project.ID)
	if !ok {
		return
	}
	resputil.Success(c, projectResp(updated))
}

// RemoveMember godoc
// @Summary Remove a user from the project member set (owner only)
// @Description The owner cannot be removed. Stories in the project assigned to
// @Description the removed member become unassigned.
// @Tags Project
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param userId path int true "user id"
// @Success 200 {object} resputil.Response[ProjectResp] "updated project"
// @Failure 400 {object} resputil.Response[any] "cannot remove the owner"
// @Router /v1/projects/{id}/members/{userId} [delete]
func (mgr *ProjectMgr) RemoveMember(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanManage(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Only the project owner can manage members")
		return
	}
	if project.IsOwner(userID) {
		resputil.BadRequestError(c, "Cannot remove the project owner")
		return
	}

	err := query.GetDB().WithContext(c).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(project).Association("Members").
			Delete(&model.User{Model: gorm.Model{ID: userID}})
		if err != nil {
			return err
		}
		// A removed member cannot keep story assignments in the project.
		return tx.Model(&model.Story{}).
			Where("project_id = ? AND assignee_id = ?", project.ID, userID).
			Update("assignee_id", nil).Error
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	updated, ok := loadProject(c, project.ID)
	if !ok {
		return
	}
	resputil.Success(c, projectResp(updated))
}

// ListSprints godoc
// @Summary List the project's sprints
// @Tags Sprint
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Success 200 {object} resputil.Response[[]SprintResp] "sprints"
// @Router /v1/projects/{id}/sprints [get]
func (mgr *ProjectMgr) ListSprints(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	var sprints []model.Sprint
	err := query.GetDB().WithContext(c).
		Where("project_id = ?", project.ID).
		Order("start_date ASC").
		Find(&sprints).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(sprints, func(s model.Sprint, _ int) SprintResp {
		return sprintResp(&s)
	}))
}

// CreateSprint godoc
// @Summary Create a sprint in the project
// @Tags Sprint
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param data body CreateSprintReq true "sprint info"
// @Success 201 {object} resputil.Response[SprintResp] "created sprint"
// @Failure 400 {object} resputil.Response[any] "end date not after start date"
// @Router /v1/projects/{id}/sprints [post]
func (mgr *ProjectMgr) CreateSprint(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateSprintReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	sprint := model.Sprint{
		Name:      req.Name,
		ProjectID: project.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Goal:      req.Goal,
		Status:    model.SprintPlanning,
	}
	if req.Status != "" {
		sprint.Status = req.Status
	}

	if err := query.GetDB().WithContext(c).Create(&sprint).Error; err != nil {
		if errors.Is(err, model.ErrSprintDateRange) {
			resputil.InvariantError(c, err.Error())
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Created(c, sprintResp(&sprint))
}

// ListStories godoc
// @Summary List the project's stories
// @Description Optional query filters: sprintId, status, assignee.
// @Tags Story
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param sprintId query int false "only stories in this sprint"
// @Param status query string false "only stories with this status"
// @Param assignee query int false "only stories assigned to this user"
// @Success 200 {object} resputil.Response[[]StoryResp] "stories"
// @Router /v1/projects/{id}/stories [get]
func (mgr *ProjectMgr) ListStories(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	if !project.CanView(util.GetToken(c).UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	db := query.GetDB().WithContext(c).
		Preload("Assignee").Preload("Reporter").
		Where("project_id = ?", project.ID)
	if v := c.Query("sprintId"); v != "" {
		db = db.Where("sprint_id = ?", v)
	}
	if v := c.Query("status"); v != "" {
		db = db.Where("status = ?", v)
	}
	if v := c.Query("assignee"); v != "" {
		db = db.Where("assignee_id = ?", v)
	}

	var stories []model.Story
	if err := db.Order("created_at DESC").Find(&stories).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(stories, func(s model.Story, _ int) StoryResp {
		return storyResp(&s)
	}))
}

// CreateStory godoc
// @Summary Create a story in the project
// @Description New stories default to the backlog with medium priority and
// @Description zero points. The caller becomes the reporter.
// @Tags Story
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "project id"
// @Param data body CreateStoryReq true "story info"
// @Success 201 {object} resputil.Response[StoryResp] "created story"
// @Failure 400 {object} resputil.Response[any] "sprint or assignee invalid"
// @Router /v1/projects/{id}/stories [post]
func (mgr *ProjectMgr) CreateStory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateStoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	project, ok := loadProject(c, id)
	if !ok {
		return
	}
	token := util.GetToken(c)
	if !project.CanView(token.UserID) {
		resputil.ForbiddenError(c, "Not authorized to access this project")
		return
	}

	db := query.GetDB().WithContext(c)

	if req.SprintID != nil {
		var sprint model.Sprint
		if err := db.First(&sprint, *req.SprintID).Error; err != nil || sprint.ProjectID != project.ID {
			resputil.InvariantError(c, "Sprint does not belong to this project")
			return
		}
	}
	if req.AssigneeID != nil && !project.HasMember(*req.AssigneeID) {
		resputil.InvariantError(c, "Assignee must be a project member")
		return
	}

	story := model.Story{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   project.ID,
		SprintID:    req.SprintID,
		Status:      model.StoryBacklog,
		Priority:    model.PriorityMedium,
		AssigneeID:  req.AssigneeID,
		ReporterID:  token.UserID,
	}
	if req.Status != "" {
		story.Status = req.Status
	}
	if req.Priority != "" {
		story.Priority = req.Priority
	}
	if req.Points != nil {
		story.Points = *req.Points
	}

	if err := db.Create(&story).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	created, ok := loadStory(c, story.ID)
	if !ok {
		return
	}
	resputil.Created(c, storyResp(created))
}
