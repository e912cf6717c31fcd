package namespace

import (
	"net/http"
	"taskboard/domain"
	"taskboard/misc"
	"taskboard/session"

	"github.com/gin-gonic/gin"
)

var (
	AddProjectMemberFunc    = AddProjectMember
	QueryProjectMembersFunc = QueryProjectMembers
	RemoveProjectMemberFunc = RemoveProjectMember
)

func registerProjectMembersRestApis(projects *gin.RouterGroup) {
	projects.POST("/:id/members", HandleAddProjectMember)
	projects.GET("/:id/members", HandleQueryProjectMembers)
	projects.DELETE("/:id/members/:userId", HandleRemoveProjectMember)
}

func HandleAddProjectMember(c *gin.Context) {
	projectId, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.ProjectMemberCreation{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	member, err := AddProjectMemberFunc(projectId, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User added to project successfully", "data": member})
}

func HandleQueryProjectMembers(c *gin.Context) {
	projectId, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	members, err := QueryProjectMembersFunc(projectId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, members)
}

func HandleRemoveProjectMember(c *gin.Context) {
	projectId, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	userId, err := misc.BindingPathUUID(c, "userId")
	if err != nil {
		panic(err)
	}
	removed, err := RemoveProjectMemberFunc(projectId, userId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, removed)
}
