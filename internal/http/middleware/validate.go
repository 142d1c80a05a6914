package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"skincase_backend/internal/validation"

	"github.com/gin-gonic/gin"
)

// Validate evaluates the rule set against a merged view of body fields,
// query parameters and path params, answering 400 with field-level
// details on the first failing request. The body is restored for the
// handler.
func Validate(rules ...validation.FieldRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		values := make(map[string]any)

		for _, p := range c.Params {
			values[p.Key] = p.Value
		}
		for key, vals := range c.Request.URL.Query() {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
		mergeBodyFields(c, values)

		if violations := validation.Evaluate(values, rules); len(violations) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":   "validation_failed",
				"message": "request validation failed",
				"details": violations,
			})
			return
		}

		c.Next()
	}
}

func mergeBodyFields(c *gin.Context, values map[string]any) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return
	}
	for k, v := range body {
		values[k] = v
	}
}
