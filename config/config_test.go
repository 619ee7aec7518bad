package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RESERVATION_DURATION_MINUTES", "")
	t.Setenv("PENDING_ORDER_TTL", "")
	cfg := Load()
	assert.Equal(t, 90*time.Minute, cfg.ReservationDuration)
	assert.Equal(t, 30*time.Minute, cfg.PendingOrderTTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RESERVATION_DURATION_MINUTES", "120")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("JWT_TTL", "2h")
	cfg := Load()
	assert.Equal(t, 120*time.Minute, cfg.ReservationDuration)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
}

func TestInitDB(t *testing.T) {
	db, err := InitDB(Config{DBDriver: "sqlite", DBDSN: "file::memory:"})
	require.NoError(t, err)
	require.NotNil(t, db)

	_, err = InitDB(Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
