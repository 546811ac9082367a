package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response is the envelope every API endpoint answers with.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

// List wraps a collection so that an empty result encodes as [] and not null.
type List[T any] struct {
	List []T `json:"list"`
}

type errorBody struct {
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

func NewResponse(success bool, code int, extras any) Response {
	return Response{
		Success: success,
		Code:    code,
		Extras:  extras,
	}
}

// SuccessResponseList answers 200 with the items under "list".
func SuccessResponseList[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	SuccessResponse(c, List[T]{List: items})
}

// SuccessResponse answers 200 with extras as the payload.
func SuccessResponse(c *gin.Context, extras any) {
	c.JSON(http.StatusOK, NewResponse(true, http.StatusOK, extras))
}

func ErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, NewResponse(false, code, errorBody{Message: message}))
}

// BindError answers 400 for a request that failed to bind, naming the
// offending fields when the failure came from validation.
func BindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ErrorResponse(c, http.StatusBadRequest, "malformed request body")
		return
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, NewResponse(false, http.StatusBadRequest, errorBody{
		Message: "invalid request",
		Fields:  fields,
	}))
}
