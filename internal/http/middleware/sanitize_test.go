package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`<script>alert(1)</script>hi`, "hi"},
		{`<SCRIPT src="x">evil()</SCRIPT >ok`, "ok"},
		{`javascript:alert(1)`, "alert(1)"},
		{`JaVaScRiPt : alert(1)`, "alert(1)"},
		{`vbscript:msgbox`, "msgbox"},
		{`data:text/html;base64,PHNjcmlwdD4=`, "PHNjcmlwdD4="},
		{`<img onerror=alert(1)>`, "<img alert(1)>"},
		{`  plain text  `, "plain text"},
		{`no html at all`, "no html at all"},
	}

	for _, tc := range cases {
		if got := SanitizeString(tc.in); got != tc.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func sanitizedEcho() *gin.Engine {
	r := gin.New()
	r.Use(SanitizeInput())
	r.POST("/echo", func(c *gin.Context) {
		raw, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", raw)
	})
	r.GET("/query", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"q": c.Query("q")})
	})
	return r
}

func TestSanitizeInputBody(t *testing.T) {
	r := sanitizedEcho()

	body := `{"a":"<script>alert(1)</script>hi","nested":{"b":["javascript:x","clean"]},"n":42,"flag":true}`
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("echo body not JSON: %v", err)
	}

	if got["a"] != "hi" {
		t.Errorf("script block not stripped: %v", got["a"])
	}
	nested := got["nested"].(map[string]any)
	arr := nested["b"].([]any)
	if arr[0] != "x" || arr[1] != "clean" {
		t.Errorf("nested values wrong: %v", arr)
	}
	// non-string scalars pass through untouched
	if got["n"].(float64) != 42 || got["flag"] != true {
		t.Errorf("non-string scalars changed: %v %v", got["n"], got["flag"])
	}
}

func TestSanitizeInputNonJSONBodyUntouched(t *testing.T) {
	r := sanitizedEcho()

	body := "just plain <script>text</script>"
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != body {
		t.Errorf("non-JSON body modified: %q", w.Body.String())
	}
}

func TestSanitizeInputQuery(t *testing.T) {
	r := sanitizedEcho()

	req := httptest.NewRequest(http.MethodGet, "/query?q=javascript:alert(1)", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["q"] != "alert(1)" {
		t.Errorf("query not sanitized: %q", got["q"])
	}
}
