package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/petadmin/internal/domain"
)

// Response is the JSON envelope shared with the admin backend:
// {isSuccess, code, message, result}.
type Response struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      int    `json:"code"`
	Message   string `json:"message,omitempty"`
	Result    any    `json:"result"`
}

// ValidationErrorResponse is the envelope for request bodies that fail
// binding rules. Errors maps JSON field names to the failed rule.
type ValidationErrorResponse struct {
	IsSuccess bool              `json:"isSuccess"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors"`
}

// Success answers 200 with result in the envelope.
func Success(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Response{IsSuccess: true, Code: http.StatusOK, Message: "success", Result: result})
}

// List answers a page. result is a domain.PageResult.
func List(c *gin.Context, result any) {
	Success(c, result)
}

// Error answers with the status HTTPStatusCode assigns err and records err
// on the gin context for the request logger. A rejected upstream envelope
// keeps its 2xx status with isSuccess=false.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	_ = c.Error(err)
	fail(c, status, errorMessage(err, status))
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{IsSuccess: false, Code: status, Message: message})
}

func errorMessage(err error, status int) string {
	var fe *domain.FetchError
	var appErr *domain.AppError
	switch {
	case errors.As(err, &fe):
		switch {
		case fe.Message != "":
			return fe.Message
		case fe.StatusText != "":
			return fe.StatusText
		case http.StatusText(status) != "":
			return strings.ToLower(http.StatusText(status))
		}
		return fe.Kind.String()
	case errors.As(err, &appErr):
		if appErr.Message == "" {
			return appErr.Code.String()
		}
		return appErr.Message
	}
	return "internal error"
}

// ValidationError answers 400. Binding rule failures are listed per field.
func ValidationError(c *gin.Context, err error) {
	writeValidationError(c, err, nil)
}

// BindAndValidate binds the request body into obj. On failure it has
// already answered 400 and returns false:
//
//	var req statusRequest
//	if !pkg.BindAndValidate(c, &req) {
//		return
//	}
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		writeValidationError(c, err, obj)
		return false
	}
	return true
}

// Preflight answers a CORS preflight with 204. The CORS middleware has set
// the Access-Control-* headers already.
func Preflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// writeValidationError names fields by their JSON tag on obj when obj is
// given, and by the lowercased struct field otherwise.
func writeValidationError(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	tags := jsonTagNames(obj)
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := tags[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[name] = rule
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

func jsonTagNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	names := make(map[string]string, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[f.Name] = name
		}
	}
	return names
}
