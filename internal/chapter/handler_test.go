package chapter

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malawadd/qisati/internal/auth"
	"github.com/malawadd/qisati/internal/series"
)

func newTestRouter(t *testing.T) (*gin.Engine, *sql.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := openTestDB(t)
	authRepo := auth.NewRepo(db)
	sessions := auth.SessionMiddleware(authRepo)

	r := gin.New()
	NewHandler(NewRepo(db), series.NewRepo(db)).RegisterRoutes(r, sessions)
	return r, db
}

func loginAs(t *testing.T, db *sql.DB, address string) string {
	t.Helper()
	repo := auth.NewRepo(db)
	u, err := repo.EnsureUser(t.Context(), address)
	require.NoError(t, err)
	s, err := repo.CreateSession(t.Context(), u.ID, address, time.Hour)
	require.NoError(t, err)
	return s.ID
}

func doJSON(t *testing.T, r *gin.Engine, method, path, session string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("Authorization", "Bearer "+session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateChapterLazySeries(t *testing.T) {
	r, db := newTestRouter(t)
	session := loginAs(t, db, "0x1111000000000000000000000000000000001111")

	w := doJSON(t, r, http.MethodPost, "/chapters", session, gin.H{"title": "My First Chapter"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ChapterID string `json:"chapter_id"`
		SeriesID  string `json:"series_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SeriesID)

	sr, err := series.NewRepo(db).GetByID(t.Context(), resp.SeriesID)
	require.NoError(t, err)
	require.NotNil(t, sr)
	assert.Equal(t, "Untitled Series", sr.Title)

	// the second chapter in the same series gets index 2
	w = doJSON(t, r, http.MethodPost, "/chapters", session, gin.H{
		"title": "Second", "series_id": resp.SeriesID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	ch, err := NewRepo(db).GetByID(t.Context(), resp.ChapterID)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.Index)
}

func TestCreateChapterRequiresAuth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/chapters", "", gin.H{"title": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDraftOwnershipEnforced(t *testing.T) {
	r, db := newTestRouter(t)
	owner := loginAs(t, db, "0x1111000000000000000000000000000000001111")
	stranger := loginAs(t, db, "0x2222000000000000000000000000000000002222")

	w := doJSON(t, r, http.MethodPost, "/chapters", owner, gin.H{"title": "Mine"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ChapterID string `json:"chapter_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, r, http.MethodPut, "/chapters/"+resp.ChapterID+"/draft", stranger, gin.H{"markdown": "hijack"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, "/chapters/"+resp.ChapterID+"/draft", owner, gin.H{"markdown": "legit content"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublishEndpointMapsNoDraft(t *testing.T) {
	r, db := newTestRouter(t)
	session := loginAs(t, db, "0x1111000000000000000000000000000000001111")

	w := doJSON(t, r, http.MethodPost, "/chapters", session, gin.H{"title": "Empty"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ChapterID string `json:"chapter_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, r, http.MethodPost, "/chapters/"+resp.ChapterID+"/publish", session, gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	doJSON(t, r, http.MethodPut, "/chapters/"+resp.ChapterID+"/draft", session, gin.H{"markdown": "real prose"})
	w = doJSON(t, r, http.MethodPost, "/chapters/"+resp.ChapterID+"/publish", session, gin.H{})
	assert.Equal(t, http.StatusOK, w.Code)

	// published chapters serve their body publicly
	w = doJSON(t, r, http.MethodGet, "/chapters/"+resp.ChapterID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "real prose")
}
