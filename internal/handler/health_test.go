package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestHealth_RedisDown(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/health", Health(db, nil, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))))

	w := doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
	assert.Equal(t, "closed", body["smtp_circuit"])
}
