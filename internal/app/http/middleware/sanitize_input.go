package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// Fields whose value must pass through untouched: HTML-escaping a
// password would silently change it before hashing.
var sanitizeSkip = map[string]bool{
	"password": true,
}

// SanitizeAndCleanInputMiddleware cleans all string fields in JSON input
// using bluemonday, recursing into nested objects like the wizard's
// per-step data payload.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only for JSON requests
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		var body map[string]interface{}
		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		policy := bluemonday.StrictPolicy()
		sanitizeValue(body, policy)

		newBody, _ := json.Marshal(body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitizeValue(body map[string]interface{}, policy *bluemonday.Policy) {
	for k, v := range body {
		if sanitizeSkip[k] {
			continue
		}
		switch val := v.(type) {
		case string:
			body[k] = policy.Sanitize(val)
		case map[string]interface{}:
			sanitizeValue(val, policy)
		case []interface{}:
			sanitizeSlice(val, policy)
		}
	}
}

func sanitizeSlice(items []interface{}, policy *bluemonday.Policy) {
	for i, item := range items {
		switch val := item.(type) {
		case string:
			items[i] = policy.Sanitize(val)
		case map[string]interface{}:
			sanitizeValue(val, policy)
		case []interface{}:
			sanitizeSlice(val, policy)
		}
	}
}
