package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m, err := NewManager(store, Options{CookieName: "sid", Secret: "test-secret", TTL: time.Hour})
	require.NoError(t, err)
	return m
}

// roundTrip saves s and returns a request carrying the resulting cookie
func roundTrip(t *testing.T, m *Manager, s *Session) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, s))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(NewMemoryStore(), Options{})
	assert.Error(t, err)
}

func TestManager_LoginPersistsAcrossRequests(t *testing.T) {
	m := newManager(t, NewMemoryStore())

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, s.UserID())
	s.Login(42)

	req, cookie := roundTrip(t, m, s)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotContains(t, cookie.Value, s.ID(), "cookie must carry a signed token")

	loaded := m.Load(req)
	assert.EqualValues(t, 42, loaded.UserID())
	assert.Equal(t, s.ID(), loaded.ID())
}

func TestManager_LoginRotatesID(t *testing.T) {
	store := NewMemoryStore()
	m := newManager(t, store)

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.AddFlash(FlashInfo, "hello")
	req, _ := roundTrip(t, m, s)
	before := s.ID()

	s = m.Load(req)
	s.Login(7)
	roundTrip(t, m, s)

	assert.NotEqual(t, before, s.ID())
	_, err := store.Load(context.Background(), before)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_FlashesAreOneShot(t *testing.T) {
	m := newManager(t, NewMemoryStore())

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.AddFlash(FlashSuccess, "Article added successfully")
	req, _ := roundTrip(t, m, s)

	s = m.Load(req)
	flashes := s.PopFlashes()
	require.Len(t, flashes, 1)
	assert.Equal(t, Flash{Category: FlashSuccess, Message: "Article added successfully"}, flashes[0])
	req, _ = roundTrip(t, m, s)

	s = m.Load(req)
	assert.Empty(t, s.PopFlashes())
}

func TestManager_UnmodifiedSessionWritesNothing(t *testing.T) {
	m := newManager(t, NewMemoryStore())
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, s))
	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, s.ID())
}

func TestManager_DestroyExpiresCookie(t *testing.T) {
	store := NewMemoryStore()
	m := newManager(t, store)

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login(1)
	req, _ := roundTrip(t, m, s)
	id := s.ID()

	s = m.Load(req)
	s.Destroy()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(context.Background(), rec, s))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	_, err := store.Load(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotFound)

	// the old cookie no longer resolves to a user
	assert.Zero(t, m.Load(req).UserID())
}

func TestManager_IgnoresForgedCookie(t *testing.T) {
	m := newManager(t, NewMemoryStore())
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login(1)
	_, cookie := roundTrip(t, m, s)

	other, err := NewManager(NewMemoryStore(), Options{CookieName: "sid", Secret: "different", TTL: time.Hour})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	assert.Zero(t, other.Load(req).UserID())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: s.ID()})
	assert.Zero(t, m.Load(req).UserID(), "a bare session id is not accepted")
}

func TestManager_ForgetUser(t *testing.T) {
	m := newManager(t, NewMemoryStore())
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login(5)
	req, _ := roundTrip(t, m, s)

	s = m.Load(req)
	s.ForgetUser()
	req, _ = roundTrip(t, m, s)
	assert.Zero(t, m.Load(req).UserID())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "a", &Data{UserID: 1}, time.Minute))
	d, err := store.Load(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, d.UserID)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveSweepsExpired(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, store.Save(ctx, fmt.Sprintf("visitor-%d", i), &Data{CSRFToken: "t"}, time.Minute))
	}
	assert.Equal(t, 1000, store.Len())

	now = now.Add(48 * time.Hour)
	require.NoError(t, store.Save(ctx, "fresh", &Data{UserID: 1}, time.Hour))
	assert.Equal(t, 1, store.Len(), "expired entries are dropped without being read")

	_, err := store.Load(ctx, "fresh")
	require.NoError(t, err)
}

func TestMemoryStore_Sweep(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "short", &Data{}, time.Minute))
	require.NoError(t, store.Save(ctx, "long", &Data{}, time.Hour))

	now = now.Add(2 * time.Minute)
	store.Sweep()
	assert.Equal(t, 1, store.Len())
	_, err := store.Load(ctx, "long")
	assert.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisStore(rdb)
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	data := &Data{UserID: 3, Flashes: []Flash{{Category: FlashInfo, Message: "hi"}}}
	require.NoError(t, store.Save(ctx, "abc", data, time.Minute))
	assert.True(t, mr.Exists("session:abc"))

	got, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	mr.FastForward(time.Minute + time.Second)
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, "abc", data, time.Minute))
	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_WithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	m := newManager(t, NewRedisStore(rdb))

	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	s.Login(9)
	req, _ := roundTrip(t, m, s)
	assert.EqualValues(t, 9, m.Load(req).UserID())
	assert.Greater(t, mr.TTL("session:"+s.ID()), time.Duration(0))
}

func TestSession_CSRFToken(t *testing.T) {
	m := newManager(t, NewMemoryStore())
	s := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, s.ValidCSRFToken(""))
	token := s.CSRFToken()
	assert.Len(t, token, 64)
	assert.Equal(t, token, s.CSRFToken(), "token is stable within a session")
	req, _ := roundTrip(t, m, s)

	loaded := m.Load(req)
	assert.True(t, loaded.ValidCSRFToken(token))
	assert.False(t, loaded.ValidCSRFToken(token+"x"))
	assert.False(t, loaded.ValidCSRFToken(""))

	// survives the id rotation on login
	loaded.Login(1)
	req, _ = roundTrip(t, m, loaded)
	assert.True(t, m.Load(req).ValidCSRFToken(token))
}
