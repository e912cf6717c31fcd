package account

import (
	"net/http"
	"taskboard/misc"
	"taskboard/session"

	"github.com/gin-gonic/gin"
)

var (
	UsersApiRoot = "/users"

	RegisterFunc          = Register
	LoginFunc             = Login
	LogoutFunc            = Logout
	QueryUsersFunc        = QueryUsers
	DetailUserFunc        = DetailUser
	CurrentUserFunc       = CurrentUser
	UpdateUserFunc        = UpdateUser
	UpdateCurrentUserFunc = UpdateCurrentUser
	UpdateUserRoleFunc    = UpdateUserRole
)

// RegisterUsersRestAPI mounts register/login behind publicMiddleWares and the rest behind authMiddleWares.
func RegisterUsersRestAPI(r *gin.Engine, authMiddleWares []gin.HandlerFunc, publicMiddleWares ...gin.HandlerFunc) {
	public := r.Group(UsersApiRoot, publicMiddleWares...)
	public.POST("/register", HandleRegister)
	public.POST("/login", HandleLogin)

	users := r.Group(UsersApiRoot, authMiddleWares...)
	users.POST("/logout", HandleLogout)
	users.GET("/me", HandleCurrentUser)
	users.PUT("/me", HandleUpdateCurrentUser)
	users.GET("", HandleQueryUsers)
	users.GET("/:id", HandleDetailUser)
	users.PUT("/:id", HandleUpdateUser)
	users.PATCH("/:id/role", HandleUpdateUserRole)
}

func HandleRegister(c *gin.Context) {
	payload := UserRegistration{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	user, err := RegisterFunc(&payload, c.Request.Context())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func HandleLogin(c *gin.Context) {
	payload := LoginRequest{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := LoginFunc(&payload, c.Request.Context())
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleLogout(c *gin.Context) {
	if err := LogoutFunc(session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func HandleCurrentUser(c *gin.Context) {
	user, err := CurrentUserFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func HandleUpdateCurrentUser(c *gin.Context) {
	payload := UserSelfUpdating{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	user, err := UpdateCurrentUserFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func HandleQueryUsers(c *gin.Context) {
	users, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, users)
}

func HandleDetailUser(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	user, err := DetailUserFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func HandleUpdateUser(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := UserUpdating{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	user, err := UpdateUserFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func HandleUpdateUserRole(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := RoleUpdating{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	user, err := UpdateUserRoleFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}
