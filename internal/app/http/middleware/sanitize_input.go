package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

// credentialKeys are passed through untouched; they are hashed or compared,
// never rendered.
var credentialKeys = map[string]bool{
	"password": true,
}

// SanitizeInputMiddleware strips markup from every string in a JSON body,
// including strings nested in arrays and objects. Values under
// credentialKeys are left as sent. Empty bodies pass through.
func SanitizeInputMiddleware() gin.HandlerFunc {
	policy := bluemonday.StrictPolicy()
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body any
		if err := json.Unmarshal(buf, &body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		newBody, err := json.Marshal(sanitize(policy, body))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitize(p *bluemonday.Policy, v any) any {
	switch t := v.(type) {
	case string:
		return p.Sanitize(t)
	case map[string]any:
		for k, inner := range t {
			if _, isString := inner.(string); isString && credentialKeys[k] {
				continue
			}
			t[k] = sanitize(p, inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = sanitize(p, inner)
		}
		return t
	default:
		return v
	}
}
