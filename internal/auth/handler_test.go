package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malawadd/qisati/pkg/utils"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	repo := NewRepo(db)
	tokens := TokenService{Secret: []byte("test-secret"), Issuer: "qisati", Duration: 5 * time.Minute}
	h := NewHandler(repo, tokens, MockVerifier{}, utils.AuthConfig{SessionTTL: time.Hour})

	r := gin.New()
	h.RegisterRoutes(r.Group("/auth"))
	return r, repo
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	address := "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"

	// challenge
	w := postJSON(t, r, "/auth/challenge", gin.H{"address": address}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var challenge struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))
	require.NotEmpty(t, challenge.Token)
	require.Contains(t, challenge.Message, address)

	// login with a valid signature
	sig := MockVerifier{}.Sign(address, challenge.Message)
	w = postJSON(t, r, "/auth/login", gin.H{"token": challenge.Token, "signature": sig}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var login struct {
		SessionID string `json:"session_id"`
		User      struct {
			Handle string `json:"handle"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.SessionID)
	assert.Equal(t, "0xfb695359", login.User.Handle)

	// session works
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.SessionID)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// logout kills it
	w = postJSON(t, r, "/auth/logout", gin.H{}, map[string]string{"Authorization": "Bearer " + login.SessionID})
	require.Equal(t, http.StatusOK, w.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRejectsBadSignature(t *testing.T) {
	r, _ := newTestRouter(t)
	address := "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"

	w := postJSON(t, r, "/auth/challenge", gin.H{"address": address}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var challenge struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &challenge))

	w = postJSON(t, r, "/auth/login", gin.H{"token": challenge.Token, "signature": "0xdeadbeef"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChallengeRejectsBadAddress(t *testing.T) {
	r, _ := newTestRouter(t)

	w := postJSON(t, r, "/auth/challenge", gin.H{"address": "not-an-address"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong mixed case means a failed checksum
	w = postJSON(t, r, "/auth/challenge", gin.H{"address": "0xFb6916095ca1df60bB79Ce92cE3Ea74c37c5d359"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
