package misc

import (
	"fmt"
	"taskboard/bizerror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

func BindingPathID(c *gin.Context) (uuid.UUID, error) {
	return BindingPathUUID(c, "id")
}

func BindingPathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("invalid %s: %w", name, err)}
	}
	return id, nil
}

// BindJSON binds and validates the JSON body, reporting every failure as a bad parameter.
func BindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		return &bizerror.ErrBadParam{Cause: err}
	}
	return nil
}
