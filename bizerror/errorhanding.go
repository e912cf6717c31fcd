package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"taskboard/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = fmt.Errorf("%v", ret)
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	var bizErr BizError
	if errors.As(genericErr, &bizErr) {
		respond := bizErr.Respond()
		if respond.Status >= http.StatusInternalServerError {
			logrus.Error(err)
		} else {
			logrus.Debug(err)
		}
		abortWithBody(c, respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		return
	}

	// bad request: no body
	if errors.Is(genericErr, io.EOF) || errors.Is(genericErr, io.ErrUnexpectedEOF) {
		abortWithBody(c, http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "body not found"})
		return
	}
	var syntaxErr *json.SyntaxError
	if errors.As(genericErr, &syntaxErr) {
		abortWithBody(c, http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid body format", Data: syntaxErr.Error()})
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(genericErr, &typeErr) {
		abortWithBody(c, http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "invalid body format", Data: typeErr.Error()})
		return
	}
	var validationErr validator.ValidationErrors
	if errors.As(genericErr, &validationErr) {
		abortWithBody(c, http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: "validation failed", Data: validationErr.Error()})
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) || errors.Is(genericErr, ErrInvalidCredentials) {
		abortWithBody(c, http.StatusUnauthorized, &common.ErrorBody{Code: "common.unauthenticated", Message: genericErr.Error()})
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		abortWithBody(c, http.StatusForbidden, &common.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		return
	}
	if errors.Is(genericErr, ErrTooManyRequests) {
		abortWithBody(c, http.StatusTooManyRequests, &common.ErrorBody{Code: "common.too_many_requests", Message: "too many requests"})
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) {
		abortWithBody(c, http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		return
	}

	logrus.Error(err)
	abortWithBody(c, http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
}

func abortWithBody(c *gin.Context, status int, body *common.ErrorBody) {
	c.AbortWithStatusJSON(status, body)
}
