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

var errAlreadyMember = &bizerror.ErrConflict{Message: "User is already a member of this project"}

// AddProjectMember records the caller as the assigner. A pair can only be added once.
func AddProjectMember(projectId uuid.UUID, c *domain.ProjectMemberCreation, sec *session.Session) (*domain.ProjectMember, error) {
	if !sec.Permits(authority.ProjectMemberCreate) {
		return nil, bizerror.ErrForbidden
	}

	m := domain.NewProjectMember(projectId, c, sec.Identity.ID)
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if exists, err := ProjectExists(tx, projectId); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("Project")
		}
		if exists, err := account.Exists(tx, c.UserID); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("User")
		}
		if exists, err := account.Exists(tx, sec.Identity.ID); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("Assigning user")
		}

		var count int
		if err := tx.Model(&domain.ProjectMember{}).Where("user_id = ? AND project_id = ?", c.UserID, projectId).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errAlreadyMember
		}
		return tx.Create(m).Error
	})
	if persistence.IsUniqueViolation(err) {
		return nil, errAlreadyMember
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func QueryProjectMembers(projectId uuid.UUID, sec *session.Session) ([]domain.ProjectMemberDetail, error) {
	if !sec.Permits(authority.ProjectMemberList) {
		return nil, bizerror.ErrForbidden
	}

	var members []domain.ProjectMember
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Where("project_id = ?", projectId).
		Order("assigned_at asc").Find(&members).Error; err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	var userIds []uuid.UUID
	for _, m := range members {
		for _, id := range []uuid.UUID{m.UserID, m.AssignedByID} {
			if !seen[id] {
				seen[id] = true
				userIds = append(userIds, id)
			}
		}
	}
	users, err := account.QueryUserSummaries(sec.Ctx(), userIds)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ProjectMemberDetail, 0, len(members))
	for _, m := range members {
		detail := domain.ProjectMemberDetail{ProjectMember: m}
		if u, found := users[m.UserID]; found {
			detail.User = &u
		}
		if u, found := users[m.AssignedByID]; found {
			detail.AssignedBy = &u
		}
		result = append(result, detail)
	}
	return result, nil
}

// RemoveProjectMember reports false instead of an error when the storage rejects the delete.
func RemoveProjectMember(projectId, userId uuid.UUID, sec *session.Session) (bool, error) {
	if !sec.Permits(authority.ProjectMemberDelete) {
		return false, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	member := domain.ProjectMember{}
	if err := db.Where("project_id = ? AND user_id = ?", projectId, userId).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, bizerror.NotFound("Project member")
		}
		return false, err
	}
	if err := db.Where("id = ?", member.ID).Delete(&domain.ProjectMember{}).Error; err != nil {
		logrus.WithField("memberId", member.ID).Errorf("failed to remove project member: %v", err)
		return false, nil
	}
	return true, nil
}

// QueryMemberRoleCounts tallies the memberships of one user by project role.
// Memberships left behind by deleted projects are not counted.
func QueryMemberRoleCounts(ctx context.Context, userId uuid.UUID) (map[authority.ProjectRole]int, error) {
	var members []domain.ProjectMember
	if err := persistence.ActiveDataSourceManager.GormDB(ctx).
		Joins("JOIN projects ON projects.id = project_members.project_id").
		Where("project_members.user_id = ?", userId).
		Select("project_members.*").Find(&members).Error; err != nil {
		return nil, err
	}
	result := map[authority.ProjectRole]int{}
	for _, m := range members {
		result[m.Role]++
	}
	return result, nil
}
