package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelinekit/example-addon/internal/db/dbtest"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	dbtest.SeedProject(t, db, "demo")

	svc := NewService(db)

	user, key, err := svc.CreateUser(ctx, "ann", false, "demo")
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.NotContains(t, user.APIKeyHash, strings.SplitN(key, ".", 2)[1])

	_, _, err = svc.CreateUser(ctx, "ann", true)
	require.ErrorIs(t, err, ErrUserNameExists)

	got, err := svc.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Name)
	assert.True(t, svc.CanReadProject(got, "demo"))
	assert.False(t, svc.CanReadProject(got, "other"))

	keyID, _, _ := strings.Cut(key, ".")

	testCases := []struct {
		name string
		key  string
		want error
	}{
		{name: "no separator", key: "abc", want: ErrMalformedKey},
		{name: "empty secret", key: keyID + ".", want: ErrMalformedKey},
		{name: "unknown id", key: "nobody.secret", want: ErrInvalidKey},
		{name: "wrong secret", key: keyID + ".wrong", want: ErrInvalidKey},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tc.key)
			require.ErrorIs(t, err, tc.want)
		})
	}

	require.NoError(t, svc.SetActive(ctx, "ann", false))
	_, err = svc.Authenticate(ctx, key)
	require.ErrorIs(t, err, ErrUserAccountDisabled)

	require.ErrorIs(t, svc.SetActive(ctx, "nobody", true), ErrUserNotFound)
}

func TestRotateKey(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.Open(t))

	_, oldKey, err := svc.CreateUser(ctx, "admin", true)
	require.NoError(t, err)

	newKey, err := svc.RotateKey(ctx, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, newKey)

	_, err = svc.Authenticate(ctx, oldKey)
	require.ErrorIs(t, err, ErrInvalidKey)

	user, err := svc.Authenticate(ctx, newKey)
	require.NoError(t, err)
	assert.True(t, user.Admin)

	_, err = svc.RotateKey(ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureReadAccess(t *testing.T) {
	folder := &models.Folder{ID: "f1", ProjectName: "demo"}

	reader := &models.User{Name: "ann", Active: true, Projects: []models.Project{{Name: "demo"}}}
	stranger := &models.User{Name: "bob", Active: true}
	admin := &models.User{Name: "root", Active: true, Admin: true}

	require.NoError(t, EnsureReadAccess(reader, folder))
	require.NoError(t, EnsureReadAccess(admin, folder))
	require.ErrorIs(t, EnsureReadAccess(stranger, folder), ErrForbidden)
	require.ErrorIs(t, EnsureReadAccess(nil, folder), ErrForbidden)
}

func TestMiddleware(t *testing.T) {
	ctx := context.Background()
	svc := NewService(dbtest.Open(t))

	_, adminKey, err := svc.CreateUser(ctx, "root", true)
	require.NoError(t, err)

	_, userKey, err := svc.CreateUser(ctx, "ann", false)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.SendStatus(fe.Code)
			}

			return c.SendStatus(fiber.StatusForbidden)
		},
	})
	app.Get("/me", RequireUser(svc), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).Name)
	})
	app.Post("/admin", RequireUser(svc), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	testCases := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{name: "no key", method: http.MethodGet, path: "/me", want: fiber.StatusUnauthorized},
		{name: "bad key", method: http.MethodGet, path: "/me", key: "x.y", want: fiber.StatusUnauthorized},
		{name: "user", method: http.MethodGet, path: "/me", key: userKey, want: fiber.StatusOK},
		{name: "user on admin route", method: http.MethodPost, path: "/admin", key: userKey, want: fiber.StatusForbidden},
		{name: "admin", method: http.MethodPost, path: "/admin", key: adminKey, want: fiber.StatusNoContent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.key != "" {
				req.Header.Set("Authorization", "Bearer "+tc.key)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
