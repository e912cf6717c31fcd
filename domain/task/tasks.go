package task

import (
	"context"
	"errors"
	"strings"
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/client/es"
	"taskboard/domain"
	"taskboard/domain/namespace"
	"taskboard/indices"
	"taskboard/indices/search"
	"taskboard/persistence"
	"taskboard/session"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// CreateTask defaults the creator to the caller. Only admins may create on behalf of others.
func CreateTask(c *domain.TaskCreation, sec *session.Session) (*domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskCreate) {
		return nil, bizerror.ErrForbidden
	}
	creatorId := sec.Identity.ID
	if c.CreatorID != nil {
		if !sec.IsAdmin() && !sec.Is(*c.CreatorID) {
			return nil, bizerror.ErrForbidden
		}
		creatorId = *c.CreatorID
	}

	t := domain.NewTask(c, creatorId)
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if exists, err := namespace.ProjectExists(tx, t.ProjectID); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("Project")
		}
		if exists, err := account.Exists(tx, t.CreatorID); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("Creator")
		}
		if err := checkAssignee(tx, t.AssigneeID); err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		return nil, err
	}
	return indexTask(sec.Ctx(), t)
}

func QueryTasks(sec *session.Session) ([]domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskList) {
		return nil, bizerror.ErrForbidden
	}
	return queryTasks(sec.Ctx(), domain.TaskQuery{})
}

func QueryTasksByProject(projectId uuid.UUID, sec *session.Session) ([]domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskList) {
		return nil, bizerror.ErrForbidden
	}
	return queryTasks(sec.Ctx(), domain.TaskQuery{ProjectID: &projectId})
}

func QueryTasksByAssignee(assigneeId uuid.UUID, sec *session.Session) ([]domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskList) {
		return nil, bizerror.ErrForbidden
	}
	return queryTasks(sec.Ctx(), domain.TaskQuery{AssigneeID: &assigneeId})
}

func QueryTasksByCreator(creatorId uuid.UUID, sec *session.Session) ([]domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskList) {
		return nil, bizerror.ErrForbidden
	}
	return queryTasks(sec.Ctx(), domain.TaskQuery{CreatorID: &creatorId})
}

func DetailTask(id uuid.UUID, sec *session.Session) (*domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskRead) {
		return nil, bizerror.ErrForbidden
	}
	t, err := findTask(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
	if err != nil {
		return nil, err
	}
	details, err := ExtendTasks(sec.Ctx(), []domain.Task{*t})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func UpdateTask(id uuid.UUID, u *domain.TaskUpdating, sec *session.Session) (*domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskUpdate) {
		return nil, bizerror.ErrForbidden
	}

	var t *domain.Task
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		found, err := findTask(tx, id)
		if err != nil {
			return err
		}
		if err := checkAssignee(tx, u.AssigneeID); err != nil {
			return err
		}
		found.Apply(u)
		t = found
		return tx.Save(t).Error
	})
	if err != nil {
		return nil, err
	}
	return indexTask(sec.Ctx(), t)
}

// DeleteTask reports false instead of an error when the storage rejects the delete.
func DeleteTask(id uuid.UUID, sec *session.Session) (bool, error) {
	if !sec.Permits(authority.TaskDelete) {
		return false, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if _, err := findTask(db, id); err != nil {
		return false, err
	}
	if err := db.Where("id = ?", id).Delete(&domain.Task{}).Error; err != nil {
		logrus.WithField("taskId", id).Errorf("failed to delete task: %v", err)
		return false, nil
	}
	if err := indices.RemoveTask(sec.Ctx(), id); err != nil {
		logrus.WithField("taskId", id).Warnf("failed to remove task from index: %v", err)
	}
	return true, nil
}

// likeEscaper makes LIKE wildcards in user text match literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// SearchTasks uses the search index when it is enabled and healthy, and a SQL LIKE scan otherwise.
func SearchTasks(q domain.TaskSearch, sec *session.Session) ([]domain.TaskDetail, error) {
	if !sec.Permits(authority.TaskList) {
		return nil, bizerror.ErrForbidden
	}
	if es.Enabled() {
		result, err := search.SearchTasksFunc(sec.Ctx(), q)
		if err == nil {
			return result, nil
		}
		logrus.Warnf("task search index unavailable, falling back to database: %v", err)
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if q.ProjectID != nil {
		db = db.Where("project_id = ?", *q.ProjectID)
	}
	if text := strings.ToLower(strings.TrimSpace(q.Text)); text != "" {
		pattern := "%" + likeEscaper.Replace(text) + "%"
		db = db.Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", pattern, pattern)
	}
	var tasks []domain.Task
	if err := db.Order("created_at desc").Limit(search.MaxResults).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return ExtendTasks(sec.Ctx(), tasks)
}

// LoadTaskDetails pages through all tasks in creation order. Pages start at 1.
func LoadTaskDetails(ctx context.Context, page, pageSize int) ([]domain.TaskDetail, error) {
	if page < 1 {
		page = 1
	}
	var tasks []domain.Task
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Order("created_at asc").Order("id asc").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return ExtendTasks(ctx, tasks)
}

// ExtendTasks resolves project, creator and assignee names in batch.
func ExtendTasks(ctx context.Context, tasks []domain.Task) ([]domain.TaskDetail, error) {
	result := make([]domain.TaskDetail, 0, len(tasks))
	if len(tasks) == 0 {
		return result, nil
	}

	var projectIds, userIds []uuid.UUID
	seenProjects, seenUsers := map[uuid.UUID]bool{}, map[uuid.UUID]bool{}
	addUser := func(id uuid.UUID) {
		if !seenUsers[id] {
			seenUsers[id] = true
			userIds = append(userIds, id)
		}
	}
	for _, t := range tasks {
		if !seenProjects[t.ProjectID] {
			seenProjects[t.ProjectID] = true
			projectIds = append(projectIds, t.ProjectID)
		}
		addUser(t.CreatorID)
		if t.AssigneeID != nil {
			addUser(*t.AssigneeID)
		}
	}

	projectNames, err := namespace.QueryProjectNames(ctx, projectIds)
	if err != nil {
		return nil, err
	}
	userNames, err := account.QueryAccountNames(ctx, userIds)
	if err != nil {
		return nil, err
	}

	for _, t := range tasks {
		detail := domain.TaskDetail{Task: t, ProjectName: nameOrUnknown(projectNames, t.ProjectID),
			CreatorName: nameOrUnknown(userNames, t.CreatorID)}
		if t.AssigneeID != nil {
			name := nameOrUnknown(userNames, *t.AssigneeID)
			detail.AssigneeName = &name
		}
		result = append(result, detail)
	}
	return result, nil
}

// TaskExists checks a task reference inside the caller's transaction.
func TaskExists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int
	if err := db.Model(&domain.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func queryTasks(ctx context.Context, q domain.TaskQuery) ([]domain.TaskDetail, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	if q.ProjectID != nil {
		db = db.Where("project_id = ?", *q.ProjectID)
	}
	if q.AssigneeID != nil {
		db = db.Where("assignee_id = ?", *q.AssigneeID)
	}
	if q.CreatorID != nil {
		db = db.Where("creator_id = ?", *q.CreatorID)
	}
	var tasks []domain.Task
	if err := db.Order("created_at asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return ExtendTasks(ctx, tasks)
}

func checkAssignee(db *gorm.DB, assigneeId *uuid.UUID) error {
	if assigneeId == nil {
		return nil
	}
	exists, err := account.Exists(db, *assigneeId)
	if err != nil {
		return err
	}
	if !exists {
		return bizerror.NotFound("Assignee")
	}
	return nil
}

// indexTask runs after commit; an index failure never fails the write.
func indexTask(ctx context.Context, t *domain.Task) (*domain.TaskDetail, error) {
	details, err := ExtendTasks(ctx, []domain.Task{*t})
	if err != nil {
		return nil, err
	}
	if err := indices.IndexTasks(ctx, details); err != nil {
		logrus.WithField("taskId", t.ID).Warnf("failed to index task: %v", err)
	}
	return &details[0], nil
}

func findTask(db *gorm.DB, id uuid.UUID) (*domain.Task, error) {
	t := domain.Task{}
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NotFound("Task")
		}
		return nil, err
	}
	return &t, nil
}

func nameOrUnknown(names map[uuid.UUID]string, id uuid.UUID) string {
	if name, found := names[id]; found {
		return name
	}
	return domain.UnknownName
}
