package addon

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/auth"
	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/db/dbtest"
	"github.com/pipelinekit/example-addon/internal/db/models"
	"github.com/pipelinekit/example-addon/internal/events"
	"github.com/pipelinekit/example-addon/internal/schema"
	"github.com/pipelinekit/example-addon/internal/web/apierror"
)

func newTestAddon(t *testing.T) (*Addon, *gorm.DB) {
	t.Helper()

	db := dbtest.Open(t)
	a := New(db, "example", "1.0.0")
	a.Initialize(events.NewStream(db))

	return a, db
}

func TestDefaultsAreValid(t *testing.T) {
	a, _ := newTestAddon(t)

	require.NoError(t, a.SettingsModel().Validate(a.SettingsModel().Defaults(), ""))
	require.NoError(t, a.SiteSettingsModel().Validate(a.SiteSettingsModel().Defaults(), schema.ScopeSite))

	s, err := a.StudioSettings(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "default value", s.SimpleString)
	assert.Equal(t, "Asset", s.FolderType)
	assert.Equal(t, 1, s.Number)
	assert.Nil(t, s.Project)
	assert.Equal(t, "red", s.GroupedSettings.FavoriteColor)
	assert.Equal(t, []float64{0, 0, 1, 1}, s.Colors.RGBAFloat)
	assert.Equal(t, []int{0, 0, 255}, s.Colors.RGBUint8)
	require.Len(t, s.ListOfSubmodels, 1)
	assert.Equal(t, CompactListItem{Name: "default", IntValue: 42, Enum: []string{"foo", "bar"}}, s.ListOfSubmodels[0])
	assert.Equal(t, s.ListOfSubmodels, s.NestedSettings.NestedListOfSubmodels)
}

func TestStudioAndProjectOverrides(t *testing.T) {
	ctx := context.Background()
	a, db := newTestAddon(t)
	dbtest.SeedProject(t, db, "demo")

	require.NoError(t, a.SaveStudioOverrides(ctx, VariantProduction, map[string]any{
		"number":           5.0,
		"grouped_settings": map[string]any{"favorite_color": "blue"},
	}))

	require.NoError(t, a.SaveProjectOverrides(ctx, "demo", VariantProduction, map[string]any{
		"number":          7.0,
		"project_setting": "only here",
	}))

	studio, err := a.StudioSettings(ctx, VariantProduction)
	require.NoError(t, err)
	assert.Equal(t, 5, studio.Number)
	assert.Empty(t, studio.ProjectSetting)

	proj, err := a.ProjectSettings(ctx, "demo", VariantProduction)
	require.NoError(t, err)
	assert.Equal(t, 7, proj.Number)
	assert.Equal(t, "only here", proj.ProjectSetting)
	assert.Equal(t, "blue", proj.GroupedSettings.FavoriteColor, "studio overrides apply to projects")

	staging, err := a.StudioSettings(ctx, VariantStaging)
	require.NoError(t, err)
	assert.Equal(t, 1, staging.Number, "variants are independent")

	color, err := a.CachedFavoriteColor(ctx)
	require.NoError(t, err)
	assert.Equal(t, "blue", color)

	err = a.SaveProjectOverrides(ctx, "missing", VariantProduction, map[string]any{})
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	var changes int64
	require.NoError(t, db.Model(&models.Event{}).Where("topic = ?", SettingsChangedTopic).Count(&changes).Error)
	assert.Equal(t, int64(2), changes)
}

func TestSaveRejectsInvalidOverrides(t *testing.T) {
	ctx := context.Background()
	a, db := newTestAddon(t)
	dbtest.SeedProject(t, db, "demo")

	testCases := []struct {
		name    string
		save    func(tree map[string]any) error
		tree    map[string]any
		wantErr error
	}{
		{
			name:    "project field in studio scope",
			save:    func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree:    map[string]any{"project_setting": "x"},
			wantErr: schema.ErrOutOfScope,
		},
		{
			name:    "hidden field",
			save:    func(tree map[string]any) error { return a.SaveProjectOverrides(ctx, "demo", VariantProduction, tree) },
			tree:    map[string]any{"hidden_setting": "x"},
			wantErr: schema.ErrOutOfScope,
		},
		{
			name:    "number out of range",
			save:    func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree:    map[string]any{"number": 11.0},
			wantErr: schema.ErrConstraint,
		},
		{
			name:    "nested int beyond int64",
			save:    func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree:    map[string]any{"nested_settings": map[string]any{"model2": map[string]any{"something_else_number": 1e300}}},
			wantErr: schema.ErrType,
		},
		{
			name: "record int beyond int64",
			save: func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree: map[string]any{"list_of_submodels": []any{
				map[string]any{"name": "default", "int_value": 9.3e18},
			}},
			wantErr: schema.ErrType,
		},
		{
			name:    "rgba hex without alpha digits",
			save:    func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree:    map[string]any{"colors": map[string]any{"rgba_hex": "#00f"}},
			wantErr: schema.ErrConstraint,
		},
		{
			name:    "literal enum",
			save:    func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree:    map[string]any{"simple_enum": "purple"},
			wantErr: schema.ErrNotAllowed,
		},
		{
			name: "duplicate record names",
			save: func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree: map[string]any{"list_of_submodels": []any{
				map[string]any{"name": "default", "int_value": 42.0},
				map[string]any{"name": "Default", "int_value": 1.0},
			}},
			wantErr: schema.ErrDuplicateName,
		},
		{
			name: "required item removed",
			save: func(tree map[string]any) error { return a.SaveStudioOverrides(ctx, VariantProduction, tree) },
			tree: map[string]any{"list_of_submodels": []any{
				map[string]any{"name": "other", "int_value": 1.0},
			}},
			wantErr: schema.ErrMissingItem,
		},
		{
			name:    "wrong type in site settings",
			save:    func(tree map[string]any) error { return a.SaveSiteSettings(ctx, "ws-01", "ann", tree) },
			tree:    map[string]any{"chair_orientation": 3.0},
			wantErr: schema.ErrType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.save(tc.tree), tc.wantErr)
		})
	}

	s, err := a.StudioSettings(ctx, VariantProduction)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Number, "rejected overrides are not stored")
}

func TestSaveNormalizesRecordNames(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAddon(t)

	require.NoError(t, a.SaveStudioOverrides(ctx, VariantProduction, map[string]any{
		"list_of_submodels": []any{
			map[string]any{"name": "Default", "int_value": 1.0},
			map[string]any{"name": "  Second Item ", "int_value": 2.0},
		},
		"dict_like_list": []any{
			map[string]any{"name": "Key One", "value1": "a"},
		},
	}))

	s, err := a.StudioSettings(ctx, VariantProduction)
	require.NoError(t, err)
	require.Len(t, s.ListOfSubmodels, 2)
	assert.Equal(t, "default", s.ListOfSubmodels[0].Name)
	assert.Equal(t, "second_item", s.ListOfSubmodels[1].Name)
	assert.Equal(t, []DictLikeItem{{Name: "key_one", Value1: "a"}}, s.DictLikeList)
}

func TestSiteSettings(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAddon(t)

	require.NoError(t, a.SaveSiteSettings(ctx, "ws-01", "ann", map[string]any{"chair_orientation": "south"}))

	ann, err := a.SiteSettings(ctx, "ws-01", "ann")
	require.NoError(t, err)
	assert.Equal(t, SiteSettings{ChairOrientation: "south", FloorMaterial: "wood"}, *ann)

	bob, err := a.SiteSettings(ctx, "ws-01", "bob")
	require.NoError(t, err)
	assert.Equal(t, "north", bob.ChairOrientation)
}

func TestResolvers(t *testing.T) {
	ctx := context.Background()
	a, db := newTestAddon(t)
	dbtest.SeedProject(t, db, "demo",
		models.Folder{Name: "hero", FolderType: "Asset"},
		models.Folder{Name: "sh010", FolderType: "Shot"},
	)
	dbtest.SeedProject(t, db, "other")

	items, err := schema.Resolve(ctx, FolderTypes(db), schema.ResolveContext{})
	require.NoError(t, err)
	assert.Empty(t, items, "no project selected")
	assert.NotNil(t, items)

	items, err = schema.Resolve(ctx, FolderTypes(db), schema.ResolveContext{ProjectName: "demo"})
	require.NoError(t, err)
	assert.Equal(t, schema.ItemsFromValues([]string{"Asset", "Shot"}), items)

	items, err = schema.Resolve(ctx, ProjectNames(db), schema.ResolveContext{})
	require.NoError(t, err)
	assert.Equal(t, schema.ItemsFromValues([]string{"demo", "other"}), items)

	items, err = schema.Resolve(ctx, RecursiveEnum, schema.ResolveContext{ProjectName: "demo"})
	require.NoError(t, err)
	assert.Empty(t, items, "no settings source")

	require.NoError(t, a.SaveStudioOverrides(ctx, VariantProduction, map[string]any{"list_of_strings": []any{"a", "b"}}))
	require.NoError(t, a.SaveProjectOverrides(ctx, "demo", VariantProduction, map[string]any{"list_of_strings": []any{"c"}}))

	items, err = schema.Resolve(ctx, RecursiveEnum, schema.ResolveContext{Settings: a})
	require.NoError(t, err)
	assert.Equal(t, schema.ItemsFromValues([]string{"a", "b"}), items)

	items, err = schema.Resolve(ctx, RecursiveEnum, schema.ResolveContext{Settings: a, ProjectName: "demo"})
	require.NoError(t, err)
	assert.Equal(t, schema.ItemsFromValues([]string{"c"}), items)

	first, err := schema.Resolve(ctx, LabelledValues, schema.ResolveContext{})
	require.NoError(t, err)
	second, err := schema.Resolve(ctx, LabelledValues, schema.ResolveContext{})
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, schema.Item{Value: "value3", Label: "Label 3"}, first[3])
	assert.Equal(t, first, second)
}

func TestRenderSettings(t *testing.T) {
	ctx := context.Background()
	a, db := newTestAddon(t)
	dbtest.SeedProject(t, db, "demo", models.Folder{Name: "hero", FolderType: "Asset"})

	doc, err := schema.Render(ctx, a.SettingsModel(), schema.ResolveContext{Settings: a, ProjectName: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "ExampleSettings", doc.Name)
	require.Len(t, doc.Fields, len(a.SettingsModel().Fields))

	byName := map[string]*schema.FieldDoc{}
	for _, f := range doc.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, schema.ItemsFromValues([]string{"Asset"}), byName["folder_type"].Enum)
	assert.Equal(t, []schema.Scope{}, byName["hidden_setting"].Scope)
	assert.Len(t, byName["enum_with_labels"].Enum, 10)
	assert.True(t, byName["grouped_settings"].Model.IsGroup)
	assert.Equal(t, schema.LayoutCompact, byName["list_of_submodels"].Model.Layout)

	switcher := byName["nested_settings"].Model.Fields[3]
	assert.Equal(t, "model_switcher", switcher.Name)
	assert.True(t, switcher.ConditionalEnum)
	assert.Len(t, switcher.Enum, 3)

	active, ok := a.SettingsModel().Field("nested_settings").Model.Active(map[string]any{"model_switcher": "model2"}, "model_switcher")
	assert.True(t, ok)
	assert.Equal(t, "model2", active)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantProduction, v)

	v, err = ParseVariant(VariantStaging)
	require.NoError(t, err)
	assert.Equal(t, VariantStaging, v)

	_, err = ParseVariant("dev")
	require.ErrorIs(t, err, ErrInvalidVariant)
}

func TestVariant(t *testing.T) {
	a, _ := newTestAddon(t)

	v, err := a.Variant("")
	require.NoError(t, err)
	assert.Equal(t, VariantProduction, v)

	require.NoError(t, a.SetDefaultVariant(VariantStaging))
	require.NoError(t, a.SetDefaultVariant(""), "empty keeps the current default")

	v, err = a.Variant("")
	require.NoError(t, err)
	assert.Equal(t, VariantStaging, v)

	v, err = a.Variant(VariantProduction)
	require.NoError(t, err)
	assert.Equal(t, VariantProduction, v)

	require.ErrorIs(t, a.SetDefaultVariant("dev"), ErrInvalidVariant)

	_, err = a.Variant("dev")
	require.ErrorIs(t, err, ErrInvalidVariant)
}

func TestTaskStatusChangedHandler(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	stream := events.NewStream(db)

	a := New(db, "example", "1.0.0")
	a.Initialize(stream)

	require.NoError(t, stream.Dispatch(ctx, &models.Event{
		Topic:       TaskStatusChangedTopic,
		Description: "Status of task compositing changed to Done",
	}))

	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()
	assert.Equal(t, "red", a.favoriteColor, "the handler loads the cached setting")
}

func TestGetRandomFolder(t *testing.T) {
	ctx := context.Background()
	a, db := newTestAddon(t)
	dbtest.SeedProject(t, db, "demo",
		models.Folder{Name: "hero", FolderType: "Asset", Data: map[string]any{"secret": true}},
		models.Folder{Name: "sh010", FolderType: "Shot"},
	)
	dbtest.SeedProject(t, db, "empty")

	authService := auth.NewService(db)

	_, adminKey, err := authService.CreateUser(ctx, "root", true)
	require.NoError(t, err)

	_, memberKey, err := authService.CreateUser(ctx, "ann", false, "demo")
	require.NoError(t, err)

	_, strangerKey, err := authService.CreateUser(ctx, "bob", false)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: apierror.Handler()})
	for _, ep := range a.Endpoints() {
		app.Add(ep.Method, a.URL()+"/"+ep.Path, auth.RequireUser(authService), ep.Handler)
	}

	testCases := []struct {
		name     string
		project  string
		key      string
		want     int
		wantData bool
	}{
		{name: "admin", project: "demo", key: adminKey, want: fiber.StatusOK, wantData: true},
		{name: "member", project: "demo", key: memberKey, want: fiber.StatusOK},
		{name: "stranger", project: "demo", key: strangerKey, want: fiber.StatusForbidden},
		{name: "missing project", project: "nope", key: adminKey, want: fiber.StatusNotFound},
		{name: "no folder of the type", project: "empty", key: adminKey, want: fiber.StatusNotFound},
		{name: "anonymous", project: "demo", want: fiber.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, a.URL()+"/get-random-folder/"+tc.project, nil)
			if tc.key != "" {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tc.key)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer resp.Body.Close()

			require.Equal(t, tc.want, resp.StatusCode)

			if tc.want != fiber.StatusOK {
				return
			}

			var f models.Folder
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
			assert.Equal(t, "hero", f.Name)
			assert.Equal(t, tc.wantData, f.Data != nil)
		})
	}
}

func TestManifest(t *testing.T) {
	a, _ := newTestAddon(t)

	m := a.Manifest()
	assert.Equal(t, "example", m.Name)
	assert.Equal(t, "/api/addons/example/1.0.0", m.URL)
	assert.Contains(t, m.Services, "ExampleService")
	require.Len(t, m.Endpoints, 1)
	assert.Equal(t, EndpointInfo{
		Method: fiber.MethodGet,
		Path:   "/api/addons/example/1.0.0/get-random-folder/:project_name",
	}, m.Endpoints[0])
}
