package dashboard

import (
	"net/http"
	"taskboard/session"

	"github.com/gin-gonic/gin"
)

var (
	DashboardApiRoot = "/dashboard"

	QueryAdminDashboardFunc = QueryAdminDashboard
	QueryUserDashboardFunc  = QueryUserDashboard
)

func RegisterDashboardRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(DashboardApiRoot, middleWares...)
	g.GET("/admin", HandleAdminDashboard)
	g.GET("/user", HandleUserDashboard)
}

func HandleAdminDashboard(c *gin.Context) {
	result, err := QueryAdminDashboardFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUserDashboard(c *gin.Context) {
	result, err := QueryUserDashboardFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
