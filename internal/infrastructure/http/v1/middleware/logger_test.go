package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stockreport/internal/core/apperror"
	"stockreport/pkg/logger"
)

func TestLogger_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		level  zapcore.Level
	}{
		{name: "ok", status: http.StatusOK, level: zapcore.InfoLevel},
		{name: "client error", err: apperror.NewValidation("bad"), status: http.StatusBadRequest, level: zapcore.WarnLevel},
		{name: "server error", err: apperror.NewUnavailable("catalog"), status: http.StatusServiceUnavailable, level: zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

			r := gin.New()
			r.Use(Trace(), Logger(log), ErrorHandler())
			r.GET("/x", func(c *gin.Context) {
				if tt.err != nil {
					_ = c.Error(tt.err)
					c.Abort()
					return
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x?page=2", nil)
			req.Header.Set(HeaderRequestID, "req-7")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			entries := logs.FilterMessage("http request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, "/x", fields["path"])
			assert.Equal(t, "page=2", fields["query"])
			assert.EqualValues(t, tt.status, fields["status"])
			assert.Equal(t, "req-7", fields["request_id"])
		})
	}
}
