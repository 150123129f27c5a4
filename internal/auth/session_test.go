package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestBindAndCurrent(t *testing.T) {
	c := newTestContext(t)

	if IsAuthenticated(c) {
		t.Error("fresh context should not be authenticated")
	}
	if _, ok := Current(c); ok {
		t.Error("Current on fresh context should report no claims")
	}

	claims := &Claims{UserID: 7, Username: "alice", Email: "a@x.com", Role: "User"}
	Bind(c, claims)

	got, ok := Current(c)
	if !ok {
		t.Fatal("Current after Bind should find claims")
	}
	if got != claims {
		t.Error("Current should return the bound claims value")
	}
	if !IsAuthenticated(c) {
		t.Error("context with bound claims should be authenticated")
	}
}

func TestClear(t *testing.T) {
	c := newTestContext(t)

	Bind(c, &Claims{UserID: 7, Username: "alice"})
	Clear(c)

	if IsAuthenticated(c) {
		t.Error("cleared context should not be authenticated")
	}
	if _, ok := Current(c); ok {
		t.Error("Current after Clear should report no claims")
	}
}
