package indices

import (
	"context"
	"fmt"
	"taskboard/client/es"
	"taskboard/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	TaskIndexName = "tasks"
)

type TaskDocument struct {
	domain.TaskDetail
}

type BatchActionError map[uuid.UUID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[uuid.UUID]error(e))
}

// IndexTasks is a no-op while search is disabled.
func IndexTasks(ctx context.Context, tasks []domain.TaskDetail) error {
	if !es.Enabled() {
		return nil
	}
	errs := BatchActionError{}
	for _, t := range tasks {
		if err := es.IndexFunc(ctx, TaskIndexName, t.ID.String(), TaskDocument{TaskDetail: t}); err != nil {
			errs[t.ID] = err
			logrus.Warnf("index task %s: %v", t.ID, err)
		} else {
			logrus.Debugf("index task %s successfully", t.ID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func RemoveTask(ctx context.Context, id uuid.UUID) error {
	if !es.Enabled() {
		return nil
	}
	return es.DeleteDocumentByIdFunc(ctx, TaskIndexName, id.String())
}
