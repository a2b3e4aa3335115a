package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		value  any
		set    bool
		wantID int64
		wantOK bool
	}{
		{name: "missing", set: false},
		{name: "int64", value: int64(42), set: true, wantID: 42, wantOK: true},
		{name: "float from json claims", value: float64(7), set: true, wantID: 7, wantOK: true},
		{name: "string", value: "42", set: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tt.set {
				c.Set("user_id", tt.value)
			}
			id, ok := getUserID(c)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestMustUserIDWritesUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	_, ok := mustUserID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Set("user_id", int64(0))
	_, ok = mustUserID(c)
	assert.False(t, ok, "zero id is not a session")

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Set("user_id", int64(9))
	id, ok := mustUserID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}
