package daemon

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipelinekit/example-addon/internal/addon"
	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/config"
	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/db/dbtest"
	"github.com/pipelinekit/example-addon/internal/db/models"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	authService := auth.NewService(db)

	cfg := &config.Config{Seed: config.Seed{Admin: "admin", Projects: []string{"demo", "other"}}}

	var out, logs bytes.Buffer

	prev := log.Logger
	log.Logger = zerolog.New(&logs)
	t.Cleanup(func() { log.Logger = prev })

	require.NoError(t, seed(ctx, cfg, db, authService, &out))

	key, ok := strings.CutPrefix(strings.TrimSpace(out.String()), "api key of admin: ")
	require.True(t, ok, out.String())

	user, err := authService.Authenticate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Name)
	assert.Contains(t, logs.String(), user.APIKeyID)
	assert.NotContains(t, logs.String(), key, "the full key never reaches the log")

	out.Reset()
	require.NoError(t, seed(ctx, cfg, db, authService, &out), "seeding twice is a no-op")
	assert.Empty(t, out.String())

	names, err := project.Names(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "other"}, names)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Name)
	assert.True(t, users[0].Admin)
}

func TestSeed_NoAdmin(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	require.NoError(t, seed(ctx, &config.Config{}, db, auth.NewService(db), io.Discard))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpenDB(t *testing.T) {
	cfg := &config.Config{DB: config.DB{GormEngine: "sqlite", Name: filepath.Join(t.TempDir(), "addon.db")}}

	db, err := OpenDB(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.True(t, db.Migrator().HasTable(&models.Event{}))

	_, err = OpenDB(&config.Config{DB: config.DB{GormEngine: "oracle"}})
	require.ErrorIs(t, err, config.ErrUnknownEngine)
}

func TestNewAddon(t *testing.T) {
	db := dbtest.Open(t)

	cfg := &config.Config{Addon: config.Addon{Name: "example", Version: "1.0.0", Variant: addon.VariantStaging}}

	a, err := NewAddon(cfg, db, nil)
	require.NoError(t, err)

	v, err := a.Variant("")
	require.NoError(t, err)
	assert.Equal(t, addon.VariantStaging, v)

	cfg.Addon.Variant = "dev"
	_, err = NewAddon(cfg, db, nil)
	require.ErrorIs(t, err, addon.ErrInvalidVariant)
}
