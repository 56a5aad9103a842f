package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anonto42/userdir/backend/internal/models"
	"github.com/anonto42/userdir/backend/internal/repositories"
	"github.com/anonto42/userdir/backend/internal/router"
	"github.com/anonto42/userdir/backend/internal/seed"
	"github.com/anonto42/userdir/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type api struct {
	t     *testing.T
	e     *echo.Echo
	users repositories.UserRepository
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	users := repositories.NewGormUserRepository(db)
	follows := repositories.NewGormFollowRepository(db)
	require.NoError(t, seed.Run(context.Background(), users, follows))

	e := echo.New()
	router.SetupMiddleware(e, zap.NewNop())
	router.SetupRoutes(e, router.Dependencies{
		Users:   users,
		Follows: follows,
		Ping:    func(context.Context) error { return nil },
		Log:     zap.NewNop(),
	})
	return &api{t: t, e: e, users: users}
}

func (a *api) do(method, target, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, code int, kind string) {
	t.Helper()
	assert.Equal(t, code, rec.Code)
	assert.JSONEq(t, `{"error":"`+kind+`"}`, rec.Body.String())
}

func userNames(users []models.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}
	return out
}

func TestListUsers(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/v1/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, userNames(decode[[]models.User](t, rec)))

	rec = a.do(http.MethodGet, "/v1/users?name=bob", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, seed.BobID, users[0].ID)

	rec = a.do(http.MethodGet, "/v1/users?name=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetUser(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/v1/users/"+seed.AliceID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, seed.AliceID.Hex(), body["_id"])
	assert.Equal(t, "alice", body["name"])
	assert.NotEmpty(t, body["avatarUrl"])

	assertError(t, a.do(http.MethodGet, "/v1/users/invalid", ""), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodGet, "/v1/users/"+primitive.NewObjectID().Hex(), ""), http.StatusNotFound, "NotFound")
}

func TestCreateUser(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/v1/users", `{"name":"dave","avatarUrl":"https://example.com/d"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[models.User](t, rec)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "dave", created.Name)

	rec = a.do(http.MethodGet, "/v1/users/"+created.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[models.User](t, rec))

	assertError(t, a.do(http.MethodPost, "/v1/users", `{}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPost, "/v1/users", `{"name":""}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPost, "/v1/users", `{"name":"alice"}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPost, "/v1/users", `{"name":`), http.StatusBadRequest, "BadRequest")
}

func TestUpdateUser(t *testing.T) {
	a := newAPI(t)
	alice := "/v1/users/" + seed.AliceID.Hex()

	rec := a.do(http.MethodPut, alice, `{"avatarUrl":"https://example.com/new"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.User](t, rec)
	assert.Equal(t, "alice", updated.Name)
	assert.Equal(t, "https://example.com/new", updated.AvatarURL)

	rec = a.do(http.MethodPut, alice, `{"name":"alicia"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated = decode[models.User](t, rec)
	assert.Equal(t, "alicia", updated.Name)
	assert.Equal(t, "https://example.com/new", updated.AvatarURL)

	assertError(t, a.do(http.MethodPut, "/v1/users/invalid", `{"name":"x"}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPut, "/v1/users/"+primitive.NewObjectID().Hex(), `{"name":"x"}`), http.StatusNotFound, "NotFound")
	assertError(t, a.do(http.MethodPut, alice, `{"name":"bob"}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPut, alice, `{"name":""}`), http.StatusBadRequest, "BadRequest")
}

func TestLoginUser(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPut, "/v1/users/loginUser", `{"name":"dave","avatarUrl":"https://example.com/d1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	dave := decode[models.User](t, rec)
	assert.Equal(t, "dave", dave.Name)

	rec = a.do(http.MethodPut, "/v1/users/loginUser", `{"name":"dave","avatarUrl":"https://example.com/d2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[models.User](t, rec)
	assert.Equal(t, dave.ID, again.ID)
	assert.Equal(t, "https://example.com/d2", again.AvatarURL)

	rec = a.do(http.MethodPut, "/v1/users/loginUser", `{"name":"alice","avatarUrl":"https://example.com/a"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, seed.AliceID, decode[models.User](t, rec).ID)

	assertError(t, a.do(http.MethodPut, "/v1/users/loginUser", `{"avatarUrl":"https://example.com/x"}`), http.StatusBadRequest, "BadRequest")
}

func TestDeleteUser(t *testing.T) {
	a := newAPI(t)
	carol := "/v1/users/" + seed.CarolID.Hex()

	rec := a.do(http.MethodDelete, carol, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	assertError(t, a.do(http.MethodGet, carol, ""), http.StatusNotFound, "NotFound")
	assertError(t, a.do(http.MethodDelete, carol, ""), http.StatusNotFound, "NotFound")
	assertError(t, a.do(http.MethodDelete, "/v1/users/invalid", ""), http.StatusBadRequest, "BadRequest")

	// alice still follows carol in storage, but carol no longer resolves
	rec = a.do(http.MethodGet, "/v1/users/"+seed.AliceID.Hex()+"/follows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bob"}, userNames(decode[[]models.User](t, rec)))
}

func TestFollows(t *testing.T) {
	a := newAPI(t)
	alice := "/v1/users/" + seed.AliceID.Hex() + "/follows"
	carol := "/v1/users/" + seed.CarolID.Hex() + "/follows"

	rec := a.do(http.MethodGet, alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"bob", "carol"}, userNames(decode[[]models.User](t, rec)))

	rec = a.do(http.MethodGet, carol, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))

	assertError(t, a.do(http.MethodGet, "/v1/users/invalid/follows", ""), http.StatusBadRequest, "BadRequest")

	rec = a.do(http.MethodPost, carol, `{"followId":"`+seed.BobID.Hex()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = a.do(http.MethodGet, carol, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bob"}, userNames(decode[[]models.User](t, rec)))

	assertError(t, a.do(http.MethodPost, carol, `{"followId":"`+seed.BobID.Hex()+`"}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPost, carol, `{}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPost, carol, `{"followId":"invalid"}`), http.StatusBadRequest, "BadRequest")
	assertError(t, a.do(http.MethodPost, "/v1/users/invalid/follows", `{"followId":"`+seed.BobID.Hex()+`"}`), http.StatusBadRequest, "BadRequest")
}

func TestUnfollow(t *testing.T) {
	a := newAPI(t)
	alice := "/v1/users/" + seed.AliceID.Hex() + "/follows"

	rec := a.do(http.MethodDelete, alice+"?followId="+seed.BobID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())

	rec = a.do(http.MethodGet, alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]models.User](t, rec)
	require.Len(t, users, 1)
	assert.Equal(t, seed.CarolID, users[0].ID)

	assertError(t, a.do(http.MethodDelete, alice+"?followId="+seed.BobID.Hex(), ""), http.StatusNotFound, "NotFound")
	assertError(t, a.do(http.MethodDelete, alice, ""), http.StatusNotFound, "NotFound")
	assertError(t, a.do(http.MethodDelete, alice+"?followId=invalid", ""), http.StatusNotFound, "NotFound")
}

func TestHealth(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"userdir"}`, rec.Body.String())
}

func TestHealth_StoreDown(t *testing.T) {
	e := echo.New()
	router.SetupRoutes(e, router.Dependencies{
		Users:   repositories.NewGormUserRepository(testutil.NewSQLiteDB(t)),
		Follows: repositories.NewGormFollowRepository(testutil.NewSQLiteDB(t)),
		Ping:    func(context.Context) error { return errors.New("connection refused") },
		Log:     zap.NewNop(),
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","service":"userdir"}`, rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	assertError(t, a.do(http.MethodGet, "/v1/nothing", ""), http.StatusNotFound, "NotFound")
}

func TestUppercaseIDs(t *testing.T) {
	a := newAPI(t)
	dave := models.User{ID: mustID(t, "6ad61bab0746e1bb3f8ecec7"), Name: "dave"}
	require.NoError(t, a.users.CreateUser(context.Background(), &dave))
	upper := "/v1/users/" + strings.ToUpper(dave.ID.Hex())

	rec := a.do(http.MethodGet, upper, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dave.ID, decode[models.User](t, rec).ID)

	rec = a.do(http.MethodPost, upper+"/follows", `{"followId":"`+seed.BobID.Hex()+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodGet, "/v1/users/"+dave.ID.Hex()+"/follows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bob"}, userNames(decode[[]models.User](t, rec)))

	rec = a.do(http.MethodGet, upper+"/follows", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"bob"}, userNames(decode[[]models.User](t, rec)))

	rec = a.do(http.MethodDelete, upper+"/follows?followId="+seed.BobID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assertError(t, a.do(http.MethodDelete, upper+"/follows?followId="+seed.BobID.Hex(), ""), http.StatusNotFound, "NotFound")

	rec = a.do(http.MethodPut, upper, `{"name":"david"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "david", decode[models.User](t, rec).Name)

	rec = a.do(http.MethodDelete, upper, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assertError(t, a.do(http.MethodGet, "/v1/users/"+dave.ID.Hex(), ""), http.StatusNotFound, "NotFound")
}

func mustID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
