package middleware

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func actionContext(t *testing.T, body string) *gin.Context {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("POST", "/game/1/round/intent", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c
}

func TestPlayerIdentReadsBody(t *testing.T) {
	c := actionContext(t, `{"player_id": 42, "action": "pick", "target_id": 7}`)
	if got := playerIdent(c); got != "p42" {
		t.Fatalf("ident = %q, want p42", got)
	}
	// the peek must leave the body intact for the handler's own binding
	rest, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(rest, []byte(`"player_id": 42`)) {
		t.Fatalf("body after peek = %q", rest)
	}
}

func TestPlayerIdentFallsBackToQueryThenIP(t *testing.T) {
	c := actionContext(t, `not json`)
	c.Request.URL.RawQuery = "player_id=9"
	if got := playerIdent(c); got != "p9" {
		t.Fatalf("query fallback = %q, want p9", got)
	}

	c = actionContext(t, "")
	c.Request.RemoteAddr = "10.1.2.3:4444"
	if got := playerIdent(c); got != "10.1.2.3" {
		t.Fatalf("ip fallback = %q", got)
	}
}
