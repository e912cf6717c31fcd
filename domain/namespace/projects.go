package namespace

import (
	"context"
	"errors"
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/domain"
	"taskboard/persistence"
	"taskboard/session"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func CreateProject(c *domain.ProjectCreation, sec *session.Session) (*domain.Project, error) {
	if !sec.Permits(authority.ProjectCreate) {
		return nil, bizerror.ErrForbidden
	}

	p := domain.NewProject(c, sec.Identity.ID)
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		exists, err := account.Exists(tx, p.OwnerID)
		if err != nil {
			return err
		}
		if !exists {
			return bizerror.NotFound("Owner")
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// QueryProjects lists every project for admins; other roles only see projects they are members of.
func QueryProjects(sec *session.Session) ([]domain.ProjectWithRole, error) {
	if !sec.Permits(authority.ProjectList) {
		return nil, bizerror.ErrForbidden
	}
	if !sec.IsAdmin() {
		return queryProjectsByMember(sec.Ctx(), sec.Identity.ID)
	}

	var projects []domain.Project
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Order("created_at asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	result := make([]domain.ProjectWithRole, 0, len(projects))
	for _, p := range projects {
		result = append(result, domain.ProjectWithRole{Project: p})
	}
	return result, nil
}

func DetailProject(id uuid.UUID, sec *session.Session) (*domain.Project, error) {
	if !sec.Permits(authority.ProjectRead) {
		return nil, bizerror.ErrForbidden
	}
	return findProject(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
}

func QueryProjectsByOwner(ownerId uuid.UUID, sec *session.Session) ([]domain.Project, error) {
	if !sec.Permits(authority.ProjectList) {
		return nil, bizerror.ErrForbidden
	}
	projects := []domain.Project{}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Where("owner_id = ?", ownerId).
		Order("created_at asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func QueryProjectsByMember(memberId uuid.UUID, sec *session.Session) ([]domain.ProjectWithRole, error) {
	if !sec.Permits(authority.ProjectList) {
		return nil, bizerror.ErrForbidden
	}
	return queryProjectsByMember(sec.Ctx(), memberId)
}

func queryProjectsByMember(ctx context.Context, memberId uuid.UUID) ([]domain.ProjectWithRole, error) {
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	var members []domain.ProjectMember
	if err := db.Where("user_id = ?", memberId).Order("assigned_at asc").Find(&members).Error; err != nil {
		return nil, err
	}
	result := []domain.ProjectWithRole{}
	if len(members) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ProjectID)
	}
	var projects []domain.Project
	if err := db.Where("id IN (?)", ids).Find(&projects).Error; err != nil {
		return nil, err
	}
	byId := map[uuid.UUID]domain.Project{}
	for _, p := range projects {
		byId[p.ID] = p
	}
	for _, m := range members {
		if p, found := byId[m.ProjectID]; found {
			result = append(result, domain.ProjectWithRole{Project: p, Role: m.Role})
		}
	}
	return result, nil
}

func UpdateProject(id uuid.UUID, u *domain.ProjectUpdating, sec *session.Session) (*domain.Project, error) {
	if !sec.Permits(authority.ProjectUpdate) {
		return nil, bizerror.ErrForbidden
	}

	var project *domain.Project
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		found, err := findProject(tx, id)
		if err != nil {
			return err
		}
		found.Apply(u)
		project = found
		return tx.Save(project).Error
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject reports false instead of an error when the storage rejects the delete.
func DeleteProject(id uuid.UUID, sec *session.Session) (bool, error) {
	if !sec.Permits(authority.ProjectDelete) {
		return false, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if _, err := findProject(db, id); err != nil {
		return false, err
	}
	if err := db.Where("id = ?", id).Delete(&domain.Project{}).Error; err != nil {
		logrus.WithField("projectId", id).Errorf("failed to delete project: %v", err)
		return false, nil
	}
	return true, nil
}

// ProjectExists checks a project reference inside the caller's transaction.
func ProjectExists(db *gorm.DB, id uuid.UUID) (bool, error) {
	var count int
	if err := db.Model(&domain.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func QueryProjectNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	var records []domain.Project
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[uuid.UUID]string{}
	for _, r := range records {
		result[r.ID] = r.Name
	}
	return result, nil
}

func findProject(db *gorm.DB, id uuid.UUID) (*domain.Project, error) {
	project := domain.Project{}
	if err := db.Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NotFound("Project")
		}
		return nil, err
	}
	return &project, nil
}
