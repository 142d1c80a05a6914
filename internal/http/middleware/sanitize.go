package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	scriptBlockRe  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	scriptURIRe    = regexp.MustCompile(`(?i)(javascript|vbscript)\s*:`)
	dataHTMLURIRe  = regexp.MustCompile(`(?i)data\s*:\s*text/html[^,]*,?`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// SanitizeString strips script blocks, script-scheme URIs and inline
// event handlers from a single value, then trims whitespace. It is a
// defense-in-depth filter, not a parser.
func SanitizeString(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = scriptURIRe.ReplaceAllString(s, "")
	s = dataHTMLURIRe.ReplaceAllString(s, "")
	s = eventHandlerRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// SanitizeValue walks a decoded JSON tree and filters every string
// leaf. Non-string scalars pass through unchanged.
func SanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return SanitizeString(t)
	case map[string]any:
		for k, child := range t {
			t[k] = SanitizeValue(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = SanitizeValue(child)
		}
		return t
	default:
		return v
	}
}

// SanitizeInput filters request body, query string and path params
// before route handlers run. Bodies that are not valid JSON are left
// untouched; the middleware never fails a request itself.
func SanitizeInput() gin.HandlerFunc {
	return func(c *gin.Context) {
		sanitizeBody(c)
		sanitizeQuery(c)
		for i := range c.Params {
			c.Params[i].Value = SanitizeString(c.Params[i].Value)
		}
		c.Next()
	}
}

func sanitizeBody(c *gin.Context) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return
	}
	ct := c.ContentType()
	if ct != "" && !strings.Contains(ct, "json") {
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// not JSON, hand the original bytes back to the handler
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	clean, err := json.Marshal(SanitizeValue(decoded))
	if err != nil {
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		return
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(clean))
	c.Request.ContentLength = int64(len(clean))
}

func sanitizeQuery(c *gin.Context) {
	q := c.Request.URL.Query()
	changed := false
	for key, vals := range q {
		for i, v := range vals {
			if clean := SanitizeString(v); clean != v {
				vals[i] = clean
				changed = true
			}
		}
		q[key] = vals
	}
	if changed {
		c.Request.URL.RawQuery = url.Values(q).Encode()
	}
}
