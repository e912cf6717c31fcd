package task_test

import (
	"context"
	"errors"
	"taskboard/account"
	"taskboard/authority"
	"taskboard/bizerror"
	"taskboard/client/es"
	"taskboard/domain"
	"taskboard/domain/task"
	"taskboard/indices/search"
	"taskboard/testinfra"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tasks", func() {
	var (
		testDatabase *testinfra.TestDatabase
		admin        account.User
		user         account.User
		project      domain.Project
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("taskboard")
		migrate(testDatabase)
		admin = createUser(testDatabase, "ann", "Admin", authority.RoleAdmin)
		user = createUser(testDatabase, "bob", "User", authority.RoleUser)
		project = createProject(testDatabase, "demo", admin.ID)
	})
	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
		es.ActiveESClient = nil
		es.IndexFunc = es.Index
		search.SearchTasksFunc = search.SearchTasks
	})

	Describe("CreateTask", func() {
		It("should apply defaults and resolve names", func() {
			sec := testinfra.BuildSession(user.ID, authority.RoleUser)
			detail, err := task.CreateTask(&domain.TaskCreation{Title: "write docs", ProjectID: project.ID, AssigneeID: &admin.ID}, sec)
			Expect(err).To(BeNil())
			Expect(detail.Status).To(Equal(domain.TaskStatusTodo))
			Expect(detail.Priority).To(Equal(domain.TaskPriorityMedium))
			Expect(detail.CreatorID).To(Equal(user.ID))
			Expect(detail.ProjectName).To(Equal("demo"))
			Expect(detail.CreatorName).To(Equal("bob User"))
			Expect(*detail.AssigneeName).To(Equal("ann Admin"))
			Expect(detail.CreatedAt).To(Equal(detail.UpdatedAt))

			stored := domain.Task{}
			Expect(testDatabase.DS.GormDB(context.Background()).Where("id = ?", detail.ID).First(&stored).Error).To(BeNil())
			Expect(stored.Title).To(Equal("write docs"))
			Expect(*stored.AssigneeID).To(Equal(admin.ID))
		})

		It("should only let admins create on behalf of others", func() {
			_, err := task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: project.ID, CreatorID: &admin.ID},
				testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(Equal(bizerror.ErrForbidden))

			detail, err := task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: project.ID, CreatorID: &user.ID},
				testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(BeNil())
			Expect(detail.CreatorID).To(Equal(user.ID))

			detail, err = task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: project.ID, CreatorID: &user.ID},
				testinfra.BuildSession(admin.ID, authority.RoleAdmin))
			Expect(err).To(BeNil())
			Expect(detail.CreatorID).To(Equal(user.ID))
			Expect(detail.AssigneeName).To(BeNil())
		})

		It("should name the missing reference", func() {
			sec := testinfra.BuildSession(admin.ID, authority.RoleAdmin)
			missing := uuid.New()
			_, err := task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: missing}, sec)
			Expect(err).To(MatchError("Project not found"))
			Expect(err).To(BeAssignableToTypeOf(&bizerror.ErrNotFound{}))

			_, err = task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: project.ID, CreatorID: &missing}, sec)
			Expect(err).To(MatchError("Creator not found"))

			_, err = task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: project.ID, AssigneeID: &missing}, sec)
			Expect(err).To(MatchError("Assignee not found"))

			var count int
			Expect(testDatabase.DS.GormDB(context.Background()).Model(&domain.Task{}).Count(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
		})

		It("should index created task when search is enabled", func() {
			_, err := es.CreateClient("http://127.0.0.1:9200")
			Expect(err).To(BeNil())
			var indexed []string
			es.IndexFunc = func(ctx context.Context, index string, id string, doc interface{}) error {
				indexed = append(indexed, index+"/"+id)
				return errors.New("cluster down")
			}

			detail, err := task.CreateTask(&domain.TaskCreation{Title: "t", ProjectID: project.ID}, testinfra.BuildSession(admin.ID, authority.RoleAdmin))
			Expect(err).To(BeNil())
			Expect(indexed).To(Equal([]string{"tasks/" + detail.ID.String()}))
		})
	})

	Describe("queries", func() {
		It("should filter by relation and fall back to Unknown names", func() {
			other := createProject(testDatabase, "other", admin.ID)
			ghost := uuid.New()
			createTask(testDatabase, 1, "a", project.ID, admin.ID, &user.ID)
			createTask(testDatabase, 2, "b", other.ID, user.ID, nil)
			createTask(testDatabase, 3, "c", project.ID, user.ID, &ghost)

			sec := testinfra.BuildSession(user.ID, authority.RoleUser)
			all, err := task.QueryTasks(sec)
			Expect(err).To(BeNil())
			Expect(titles(all)).To(Equal([]string{"a", "b", "c"}))
			Expect(*all[2].AssigneeName).To(Equal(domain.UnknownName))

			byProject, err := task.QueryTasksByProject(project.ID, sec)
			Expect(err).To(BeNil())
			Expect(titles(byProject)).To(Equal([]string{"a", "c"}))

			byAssignee, err := task.QueryTasksByAssignee(user.ID, sec)
			Expect(err).To(BeNil())
			Expect(titles(byAssignee)).To(Equal([]string{"a"}))
			Expect(*byAssignee[0].AssigneeName).To(Equal("bob User"))

			byCreator, err := task.QueryTasksByCreator(user.ID, sec)
			Expect(err).To(BeNil())
			Expect(titles(byCreator)).To(Equal([]string{"b", "c"}))
			Expect(byCreator[0].ProjectName).To(Equal("other"))

			none, err := task.QueryTasksByProject(uuid.New(), sec)
			Expect(err).To(BeNil())
			Expect(none).To(BeEmpty())
		})

		It("should detail a task", func() {
			t := createTask(testDatabase, 1, "a", project.ID, admin.ID, nil)
			detail, err := task.DetailTask(t.ID, testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(BeNil())
			Expect(detail.ID).To(Equal(t.ID))
			Expect(detail.CreatorName).To(Equal("ann Admin"))

			_, err = task.DetailTask(uuid.New(), testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(MatchError("Task not found"))
		})

		It("should page through all tasks", func() {
			for i := 1; i <= 5; i++ {
				createTask(testDatabase, i, string(rune('a'+i-1)), project.ID, admin.ID, nil)
			}
			ctx := context.Background()
			page1, err := task.LoadTaskDetails(ctx, 1, 2)
			Expect(err).To(BeNil())
			Expect(titles(page1)).To(Equal([]string{"a", "b"}))
			page3, err := task.LoadTaskDetails(ctx, 3, 2)
			Expect(err).To(BeNil())
			Expect(titles(page3)).To(Equal([]string{"e"}))
			page4, err := task.LoadTaskDetails(ctx, 4, 2)
			Expect(err).To(BeNil())
			Expect(page4).To(BeEmpty())
		})
	})

	Describe("UpdateTask", func() {
		It("should only change provided fields", func() {
			t := createTask(testDatabase, 1, "a", project.ID, admin.ID, nil)
			status := domain.TaskStatusReview
			detail, err := task.UpdateTask(t.ID, &domain.TaskUpdating{Status: &status, AssigneeID: &user.ID},
				testinfra.BuildSession(admin.ID, authority.RoleAdmin))
			Expect(err).To(BeNil())
			Expect(detail.Title).To(Equal("a"))
			Expect(detail.Priority).To(Equal(domain.TaskPriorityMedium))
			Expect(detail.Status).To(Equal(domain.TaskStatusReview))
			Expect(*detail.AssigneeName).To(Equal("bob User"))
			Expect(detail.UpdatedAt).To(BeTemporally(">", oldTime.Add(time.Hour)))

			stored := domain.Task{}
			Expect(testDatabase.DS.GormDB(context.Background()).Where("id = ?", t.ID).First(&stored).Error).To(BeNil())
			Expect(stored.Status).To(Equal(domain.TaskStatusReview))
			Expect(stored.CreatedAt).To(BeTemporally("==", t.CreatedAt))
		})

		It("should reject users, missing tasks and missing assignees", func() {
			t := createTask(testDatabase, 1, "a", project.ID, admin.ID, nil)
			_, err := task.UpdateTask(t.ID, &domain.TaskUpdating{Title: strPtr("x")}, testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(Equal(bizerror.ErrForbidden))

			sec := testinfra.BuildSession(admin.ID, authority.RoleAdmin)
			_, err = task.UpdateTask(uuid.New(), &domain.TaskUpdating{Title: strPtr("x")}, sec)
			Expect(err).To(MatchError("Task not found"))

			missing := uuid.New()
			_, err = task.UpdateTask(t.ID, &domain.TaskUpdating{AssigneeID: &missing}, sec)
			Expect(err).To(MatchError("Assignee not found"))
		})
	})

	Describe("DeleteTask", func() {
		It("should delete once", func() {
			t := createTask(testDatabase, 1, "a", project.ID, admin.ID, nil)
			_, err := task.DeleteTask(t.ID, testinfra.BuildSession(user.ID, authority.RoleUser))
			Expect(err).To(Equal(bizerror.ErrForbidden))

			sec := testinfra.BuildSession(admin.ID, authority.RoleAdmin)
			deleted, err := task.DeleteTask(t.ID, sec)
			Expect(err).To(BeNil())
			Expect(deleted).To(BeTrue())

			deleted, err = task.DeleteTask(t.ID, sec)
			Expect(err).To(MatchError("Task not found"))
			Expect(deleted).To(BeFalse())
		})
	})

	Describe("SearchTasks", func() {
		BeforeEach(func() {
			other := createProject(testDatabase, "other", admin.ID)
			t := createTask(testDatabase, 1, "Fix Login page", project.ID, admin.ID, nil)
			createTask(testDatabase, 2, "deploy", other.ID, admin.ID, nil)
			createTask(testDatabase, 3, "login audit", other.ID, admin.ID, nil)
			desc := "remember the LOGIN banner"
			Expect(testDatabase.DS.GormDB(context.Background()).Create(&domain.Task{ID: domain.NewID(), Title: "banner",
				Description: &desc, Status: domain.TaskStatusTodo, Priority: domain.TaskPriorityLow, ProjectID: project.ID,
				CreatorID: admin.ID, CreatedAt: oldTime.Add(4 * time.Minute), UpdatedAt: oldTime}).Error).To(BeNil())
			Expect(t.ID).ToNot(BeZero())
		})

		It("should match title and description in the database", func() {
			sec := testinfra.BuildSession(user.ID, authority.RoleUser)
			result, err := task.SearchTasks(domain.TaskSearch{Text: "login"}, sec)
			Expect(err).To(BeNil())
			Expect(titles(result)).To(Equal([]string{"banner", "login audit", "Fix Login page"}))

			result, err = task.SearchTasks(domain.TaskSearch{Text: "LOGIN", ProjectID: &project.ID}, sec)
			Expect(err).To(BeNil())
			Expect(titles(result)).To(Equal([]string{"banner", "Fix Login page"}))
			Expect(result[0].ProjectName).To(Equal("demo"))

			result, err = task.SearchTasks(domain.TaskSearch{}, sec)
			Expect(err).To(BeNil())
			Expect(len(result)).To(Equal(4))
		})

		It("should match wildcard characters literally", func() {
			createTask(testDatabase, 5, "ship 100% of fixes", project.ID, admin.ID, nil)
			createTask(testDatabase, 6, "rename user_id column", project.ID, admin.ID, nil)
			sec := testinfra.BuildSession(user.ID, authority.RoleUser)

			result, err := task.SearchTasks(domain.TaskSearch{Text: "%"}, sec)
			Expect(err).To(BeNil())
			Expect(titles(result)).To(Equal([]string{"ship 100% of fixes"}))

			result, err = task.SearchTasks(domain.TaskSearch{Text: "_"}, sec)
			Expect(err).To(BeNil())
			Expect(titles(result)).To(Equal([]string{"rename user_id column"}))

			result, err = task.SearchTasks(domain.TaskSearch{Text: "!"}, sec)
			Expect(err).To(BeNil())
			Expect(result).To(BeEmpty())
		})

		It("should prefer the index and fall back when it fails", func() {
			_, err := es.CreateClient("http://127.0.0.1:9200")
			Expect(err).To(BeNil())
			search.SearchTasksFunc = func(ctx context.Context, q domain.TaskSearch) ([]domain.TaskDetail, error) {
				return []domain.TaskDetail{{Task: domain.Task{Title: "from index"}}}, nil
			}
			sec := testinfra.BuildSession(user.ID, authority.RoleUser)
			result, err := task.SearchTasks(domain.TaskSearch{Text: "login"}, sec)
			Expect(err).To(BeNil())
			Expect(titles(result)).To(Equal([]string{"from index"}))

			search.SearchTasksFunc = func(ctx context.Context, q domain.TaskSearch) ([]domain.TaskDetail, error) {
				return nil, errors.New("cluster down")
			}
			result, err = task.SearchTasks(domain.TaskSearch{Text: "deploy"}, sec)
			Expect(err).To(BeNil())
			Expect(titles(result)).To(Equal([]string{"deploy"}))
		})
	})
})
