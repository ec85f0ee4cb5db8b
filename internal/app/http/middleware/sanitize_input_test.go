package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func postSanitized(t *testing.T, body string) map[string]interface{} {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()

	var seen map[string]interface{}
	r.POST("/echo", SanitizeAndCleanInputMiddleware(), func(c *gin.Context) {
		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(buf, &seen); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	return seen
}

func TestSanitizeStripsMarkupFromNestedFields(t *testing.T) {
	seen := postSanitized(t, `{
		"name": "<script>alert(1)</script>Ada",
		"data": {"personal_info": {"company": "<b>Acme</b>"}}
	}`)

	if name, _ := seen["name"].(string); strings.Contains(name, "<script>") {
		t.Fatalf("top-level field not sanitized: %q", name)
	}
	nested := seen["data"].(map[string]interface{})["personal_info"].(map[string]interface{})
	if company, _ := nested["company"].(string); strings.Contains(company, "<b>") {
		t.Fatalf("nested field not sanitized: %q", company)
	}
}

func TestSanitizeStripsMarkupInsideArrays(t *testing.T) {
	seen := postSanitized(t, `{
		"tags": ["<img src=x onerror=alert(1)>", "plain"],
		"items": [{"note": "<i>hi</i>"}]
	}`)

	tags := seen["tags"].([]interface{})
	if s, _ := tags[0].(string); strings.Contains(s, "<img") {
		t.Fatalf("array element not sanitized: %q", s)
	}
	if tags[1] != "plain" {
		t.Fatalf("clean array element changed: %v", tags[1])
	}
	item := seen["items"].([]interface{})[0].(map[string]interface{})
	if s, _ := item["note"].(string); strings.Contains(s, "<i>") {
		t.Fatalf("object inside array not sanitized: %q", s)
	}
}

func TestSanitizeLeavesPasswordUntouched(t *testing.T) {
	seen := postSanitized(t, `{"password": "a<b>&c"}`)

	if seen["password"] != "a<b>&c" {
		t.Fatalf("password must pass through verbatim, got %v", seen["password"])
	}
}
