package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errorResponder writes the failure envelope. Error details are only
// exposed outside production.
type errorResponder struct {
	exposeErrors bool
}

func (r errorResponder) fail(c *gin.Context, status int, message string, err error) {
	body := gin.H{"success": false, "message": message}
	if err != nil {
		_ = c.Error(err)
		if r.exposeErrors {
			body["error"] = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}

// parseIDParam reads a path parameter as an ObjectID.
func parseIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	return id, err == nil
}

// bindJSON decodes the request body into v. An empty body leaves v zero.
func bindJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
