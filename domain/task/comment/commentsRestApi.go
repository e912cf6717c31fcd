package comment

import (
	"net/http"
	"taskboard/domain"
	"taskboard/misc"
	"taskboard/session"

	"github.com/gin-gonic/gin"
)

var (
	CommentsApiRoot = "/comments"

	CreateCommentFunc         = CreateComment
	QueryCommentsFunc         = QueryComments
	DetailCommentFunc         = DetailComment
	QueryCommentsByTaskFunc   = QueryCommentsByTask
	QueryCommentsByAuthorFunc = QueryCommentsByAuthor
	UpdateCommentFunc         = UpdateComment
	DeleteCommentFunc         = DeleteComment
)

func RegisterCommentsRestApis(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(CommentsApiRoot, middleWares...)
	g.POST("", HandleCreateComment)
	g.GET("", HandleQueryComments)
	g.GET("/task/:taskId", HandleQueryCommentsByTask)
	g.GET("/author/:authorId", HandleQueryCommentsByAuthor)
	g.GET("/:id", HandleDetailComment)
	g.PUT("/:id", HandleUpdateComment)
	g.DELETE("/:id", HandleDeleteComment)
}

func HandleCreateComment(c *gin.Context) {
	payload := domain.CommentCreation{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := CreateCommentFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, result)
}

func HandleQueryComments(c *gin.Context) {
	result, err := QueryCommentsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryCommentsByTask(c *gin.Context) {
	taskId, err := misc.BindingPathUUID(c, "taskId")
	if err != nil {
		panic(err)
	}
	result, err := QueryCommentsByTaskFunc(taskId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleQueryCommentsByAuthor(c *gin.Context) {
	authorId, err := misc.BindingPathUUID(c, "authorId")
	if err != nil {
		panic(err)
	}
	result, err := QueryCommentsByAuthorFunc(authorId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDetailComment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	result, err := DetailCommentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleUpdateComment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	payload := domain.CommentUpdating{}
	if err := misc.BindJSON(c, &payload); err != nil {
		panic(err)
	}
	result, err := UpdateCommentFunc(id, &payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func HandleDeleteComment(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(err)
	}
	deleted, err := DeleteCommentFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, deleted)
}
