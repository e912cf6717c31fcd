package namespace

import (
	"net/http"
	"taskboard/domain"
	"taskboard/misc"
	"taskboard/session"

	"github.com/gin-gonic/gin"
)

var (
	ProjectsApiRoot = "/projects"

	QueryProjectsFunc         = QueryProjects
	CreateProjectFunc         = CreateProject
	DetailProjectFunc         = DetailProject
	QueryProjectsByOwnerFunc  = QueryProjectsByOwner
	QueryProjectsByMemberFunc = QueryProjectsByMember
	UpdateProjectFunc         = UpdateProject
	DeleteProjectFunc         = DeleteProject
)

func RegisterProjectsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	projects := r.Group(ProjectsApiRoot, middleWares...)
	projects.GET("", HandleQueryProjects)
	projects.POST("", HandleCreateProject)
	projects.GET("/member/:memberId", HandleQueryProjectsByMember)
	projects.GET("/owner/:ownerId", HandleQueryProjectsByOwner)
	projects.GET("/:id", HandleDetailProject)
	projects.PUT("/:id", HandleUpdateProject)
	projects.DELETE("/:id", HandleDeleteProject)

	registerProjectMembersRestApis(projects)
}

func HandleQueryProjects(c *gin.Context) {
	result, err := QueryProjectsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleCreateProject(c *gin.Context) {
	payload := domain.ProjectCreation{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := CreateProjectFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleDetailProject(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryProjectsByOwner(c *gin.Context) {
	ownerId, err := misc.BindingPathUUID(c, "ownerId")
	if err != nil {
		panic(err)
	}
	result, err := QueryProjectsByOwnerFunc(ownerId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryProjectsByMember(c *gin.Context) {
	memberId, err := misc.BindingPathUUID(c, "memberId")
	if err != nil {
		panic(err)
	}
	result, err := QueryProjectsByMemberFunc(memberId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateProject(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.ProjectUpdating{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := UpdateProjectFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteProject(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	deleted, err := DeleteProjectFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, deleted)
}
