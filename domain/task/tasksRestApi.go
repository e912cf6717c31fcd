package task

import (
	"net/http"
	"taskboard/bizerror"
	"taskboard/domain"
	"taskboard/misc"
	"taskboard/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	TasksApiRoot = "/tasks"

	CreateTaskFunc           = CreateTask
	QueryTasksFunc           = QueryTasks
	DetailTaskFunc           = DetailTask
	QueryTasksByProjectFunc  = QueryTasksByProject
	QueryTasksByAssigneeFunc = QueryTasksByAssignee
	QueryTasksByCreatorFunc  = QueryTasksByCreator
	SearchTasksFunc          = SearchTasks
	UpdateTaskFunc           = UpdateTask
	DeleteTaskFunc           = DeleteTask
)

func RegisterTasksRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(TasksApiRoot, middleWares...)
	g.POST("", HandleCreateTask)
	g.GET("", HandleQueryTasks)
	g.GET("/search", HandleSearchTasks)
	g.GET("/project/:projectId", handleQueryByRelation("projectId", func(id uuid.UUID, s *session.Session) ([]domain.TaskDetail, error) {
		return QueryTasksByProjectFunc(id, s)
	}))
	g.GET("/assignee/:assigneeId", handleQueryByRelation("assigneeId", func(id uuid.UUID, s *session.Session) ([]domain.TaskDetail, error) {
		return QueryTasksByAssigneeFunc(id, s)
	}))
	g.GET("/creator/:creatorId", handleQueryByRelation("creatorId", func(id uuid.UUID, s *session.Session) ([]domain.TaskDetail, error) {
		return QueryTasksByCreatorFunc(id, s)
	}))
	g.GET("/:id", HandleDetailTask)
	g.PUT("/:id", HandleUpdateTask)
	g.DELETE("/:id", HandleDeleteTask)
}

func HandleCreateTask(c *gin.Context) {
	payload := domain.TaskCreation{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := CreateTaskFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleQueryTasks(c *gin.Context) {
	result, err := QueryTasksFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

// HandleSearchTasks serves GET /tasks/search?q=&projectId=
func HandleSearchTasks(c *gin.Context) {
	q := domain.TaskSearch{Text: c.Query("q")}
	if raw := c.Query("projectId"); raw != "" {
		projectId, err := uuid.Parse(raw)
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		q.ProjectID = &projectId
	}
	result, err := SearchTasksFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleQueryByRelation(param string, query func(uuid.UUID, *session.Session) ([]domain.TaskDetail, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := misc.BindingPathUUID(c, param)
		if err != nil {
			panic(err)
		}
		result, err := query(id, session.ExtractSessionFromGinContext(c))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, result)
	}
}

func HandleDetailTask(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailTaskFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateTask(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.TaskUpdating{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := UpdateTaskFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteTask(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	deleted, err := DeleteTaskFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, deleted)
}
