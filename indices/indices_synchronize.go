package indices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/client/es"
	"taskboard/domain"
	"taskboard/session"

	"github.com/sirupsen/logrus"
)

var (
	ErrTaskLoaderMissing = errors.New("task loader not configured")

	// LoadTasksFunc pages through every task with resolved names. Wired at startup.
	LoadTasksFunc func(ctx context.Context, page, pageSize int) ([]domain.TaskDetail, error)

	SyncBatchSize = 500

	lock    sync.Mutex
	running bool

	RebuildTaskIndexFunc   = RebuildTaskIndex
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a background rebuild. It reports false when search is disabled
// or a rebuild is already running.
func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.Permits(authority.TaskIndexRebuild) {
		return false, bizerror.ErrForbidden
	}
	if !es.Enabled() {
		logrus.Info("search index is disabled, rebuild skipped")
		return false, nil
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	go func() {
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := RebuildTaskIndexFunc(context.Background()); err != nil {
			logrus.Errorf("task index rebuild failed: %v", err)
		}
	}()
	return true, nil
}

// RebuildTaskIndex drops the task index and reindexes every task page by page.
// Pages that fail to index are logged and skipped; a failed load aborts the run.
func RebuildTaskIndex(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			if e, ok := ret.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("error on task index rebuild: %v", ret)
			}
		}
	}()

	if LoadTasksFunc == nil {
		return ErrTaskLoaderMissing
	}
	if err := es.DropIndexFunc(ctx, TaskIndexName); err != nil {
		return err
	}

	for page := 1; ; page++ {
		tasks, err := LoadTasksFunc(ctx, page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("task index rebuild: load page %d (size %d): %v", page, SyncBatchSize, err)
			return err
		}
		if len(tasks) == 0 {
			logrus.Infof("task index rebuild: done after %d pages", page-1)
			return nil
		}
		if err := IndexTasks(ctx, tasks); err != nil {
			logrus.Warnf("task index rebuild: index page %d (size %d): %v", page, SyncBatchSize, err)
		}
	}
}
