package comment

import (
	"context"
	"errors"
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/domain"
	"taskboard/domain/task"
	"taskboard/persistence"
	"taskboard/session"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

// CreateComment defaults the author to the caller. Only admins may post as someone else.
func CreateComment(c *domain.CommentCreation, sec *session.Session) (*domain.CommentDetail, error) {
	if !sec.Permits(authority.CommentCreate) {
		return nil, bizerror.ErrForbidden
	}
	authorId := sec.Identity.ID
	if c.AuthorID != nil {
		if !sec.IsAdmin() && !sec.Is(*c.AuthorID) {
			return nil, bizerror.ErrForbidden
		}
		authorId = *c.AuthorID
	}

	record := domain.NewComment(c, authorId)
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		if exists, err := task.TaskExists(tx, record.TaskID); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("Task")
		}
		if exists, err := account.Exists(tx, record.AuthorID); err != nil {
			return err
		} else if !exists {
			return bizerror.NotFound("Author")
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return nil, err
	}
	return detailOf(sec.Ctx(), record)
}

func QueryComments(sec *session.Session) ([]domain.CommentDetail, error) {
	if !sec.Permits(authority.CommentList) {
		return nil, bizerror.ErrForbidden
	}
	return queryComments(sec.Ctx(), persistence.ActiveDataSourceManager.GormDB(sec.Ctx()))
}

func QueryCommentsByTask(taskId uuid.UUID, sec *session.Session) ([]domain.CommentDetail, error) {
	if !sec.Permits(authority.CommentRead) {
		return nil, bizerror.ErrForbidden
	}
	return queryComments(sec.Ctx(), persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Where("task_id = ?", taskId))
}

func QueryCommentsByAuthor(authorId uuid.UUID, sec *session.Session) ([]domain.CommentDetail, error) {
	if !sec.Permits(authority.CommentRead) {
		return nil, bizerror.ErrForbidden
	}
	return queryComments(sec.Ctx(), persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Where("author_id = ?", authorId))
}

func DetailComment(id uuid.UUID, sec *session.Session) (*domain.CommentDetail, error) {
	if !sec.Permits(authority.CommentRead) {
		return nil, bizerror.ErrForbidden
	}
	record, err := findComment(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
	if err != nil {
		return nil, err
	}
	return detailOf(sec.Ctx(), record)
}

func UpdateComment(id uuid.UUID, u *domain.CommentUpdating, sec *session.Session) (*domain.CommentDetail, error) {
	if !sec.Permits(authority.CommentUpdate) {
		return nil, bizerror.ErrForbidden
	}

	var record *domain.Comment
	err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Transaction(func(tx *gorm.DB) error {
		found, err := findComment(tx, id)
		if err != nil {
			return err
		}
		found.Apply(u)
		record = found
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return detailOf(sec.Ctx(), record)
}

// DeleteComment reports false instead of an error when the storage rejects the delete.
func DeleteComment(id uuid.UUID, sec *session.Session) (bool, error) {
	if !sec.Permits(authority.CommentDelete) {
		return false, bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if _, err := findComment(db, id); err != nil {
		return false, err
	}
	if err := db.Where("id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
		logrus.WithField("commentId", id).Errorf("failed to delete comment: %v", err)
		return false, nil
	}
	return true, nil
}

func queryComments(ctx context.Context, db *gorm.DB) ([]domain.CommentDetail, error) {
	var records []domain.Comment
	if err := db.Order("created_at asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return extendComments(ctx, records)
}

func detailOf(ctx context.Context, record *domain.Comment) (*domain.CommentDetail, error) {
	details, err := extendComments(ctx, []domain.Comment{*record})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func extendComments(ctx context.Context, records []domain.Comment) ([]domain.CommentDetail, error) {
	result := make([]domain.CommentDetail, 0, len(records))
	if len(records) == 0 {
		return result, nil
	}
	seen := map[uuid.UUID]bool{}
	var authorIds []uuid.UUID
	for _, r := range records {
		if !seen[r.AuthorID] {
			seen[r.AuthorID] = true
			authorIds = append(authorIds, r.AuthorID)
		}
	}
	names, err := account.QueryAccountNames(ctx, authorIds)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		name, found := names[r.AuthorID]
		if !found {
			name = domain.UnknownName
		}
		result = append(result, domain.CommentDetail{Comment: r, AuthorName: name})
	}
	return result, nil
}

func findComment(db *gorm.DB, id uuid.UUID) (*domain.Comment, error) {
	record := domain.Comment{}
	if err := db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.NotFound("Comment")
		}
		return nil, err
	}
	return &record, nil
}
