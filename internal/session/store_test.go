package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewStore(client, time.Minute, zerolog.Nop()), mr
}

func TestStoreRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	run, err := store.LoadRun(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, run)

	run = NewRun(4)
	run.Set(1, 2, true)
	require.NoError(t, store.SaveRun(ctx, "v1", run))
	assert.True(t, mr.Exists("visit:v1"))
	assert.Equal(t, time.Minute, mr.TTL("visit:v1"))

	loaded, err := store.LoadRun(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(4), loaded.ExamID)
	selected, correct, ok := loaded.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 2, selected)
	assert.True(t, correct)

	require.NoError(t, store.Clear(ctx, "v1"))
	assert.False(t, mr.Exists("visit:v1"))
}

func TestStoreDiscardsCorruptRun(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	mr.HSet("visit:v2", fieldRun, `{"exam_id":1,"question_select":{"1":1},"answer_correct":{}}`)

	run, err := store.LoadRun(ctx, "v2")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestStoreAttemptHandle(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, ok, err := store.CurrentAttempt(ctx, "v3")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetCurrentAttempt(ctx, "v3", 42))
	id, ok, err := store.CurrentAttempt(ctx, "v3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestStoreFlashesArePoppedOnce(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.AddFlash(ctx, "v4", "first"))
	require.NoError(t, store.AddFlash(ctx, "v4", "second"))

	msgs, err := store.PopFlashes(ctx, "v4")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, msgs)

	msgs, err = store.PopFlashes(ctx, "v4")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMiddlewareIssuesAndReusesVisitCookie(t *testing.T) {
	var seen []string
	handler := Middleware(CookieOptions{Name: "visit", TTL: time.Hour})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, VisitID(r.Context()))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "visit", cookies[0].Name)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0])
	assert.Equal(t, seen[0], seen[1])
}

func TestHandleEndVisit(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, store.SetCurrentAttempt(context.Background(), "v5", 1))

	req := httptest.NewRequest(http.MethodDelete, "/v1/visit", nil)
	req = req.WithContext(WithVisitID(req.Context(), "v5"))
	rec := httptest.NewRecorder()
	store.HandleEndVisit(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, mr.Exists("visit:v5"))
}
