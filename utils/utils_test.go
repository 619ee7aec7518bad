package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "$25.00", FormatCurrency(2500))
	assert.Equal(t, "$12,345.67", FormatCurrency(1234567))
	assert.Equal(t, "$1,000,000.05", FormatCurrency(100000005))
	assert.Equal(t, "-$3.50", FormatCurrency(-350))
}

func TestTokenManager(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	tok, err := tm.GenerateToken(42, "chef@example.com", "chef")
	require.NoError(t, err)

	claims, err := tm.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "chef", claims.Role)
	assert.Equal(t, "chef@example.com", claims.Email)

	other := NewTokenManager("other-secret", time.Hour)
	_, err = other.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tm.Blacklist(tok, time.Now().Add(time.Hour))
	_, err = tm.ParseToken(tok)
	assert.ErrorIs(t, err, ErrTokenBlacklisted)
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Nanosecond)
	tok, err := tm.GenerateToken(1, "a@example.com", "customer")
	require.NoError(t, err)
	time.Sleep(time.Second)
	_, err = tm.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResponders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondJSON(c, http.StatusCreated, "Created", gin.H{"id": 3})
	var ok JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ok))
	assert.True(t, ok.Status)
	assert.Equal(t, "Created", ok.Message)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondError(c, http.StatusConflict, errors.New("taken"))
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"taken"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	RespondFile(c, http.StatusOK, "application/pdf", "tables.pdf", []byte("%PDF-1.3"))
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tables.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}
