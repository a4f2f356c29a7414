package addon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog/log"

	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/db/controller/setting"
	"github.com/pipelinekit/example-addon/internal/db/models"
	"github.com/pipelinekit/example-addon/internal/schema"
)

func (a *Addon) key(variant string, scope schema.Scope) setting.Key {
	return setting.Key{Addon: a.Name, Version: a.Version, Variant: variant, Scope: string(scope)}
}

func (a *Addon) load(ctx context.Context, key setting.Key) (map[string]any, error) {
	s, err := setting.Get(ctx, a.db, key.String())
	if errors.Is(err, setting.ErrSettingNotFound) {
		return map[string]any{}, nil
	}

	if err != nil {
		return nil, err
	}

	tree := map[string]any{}
	if err := json.Unmarshal(s.Value, &tree); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", key, err)
	}

	return tree, nil
}

func (a *Addon) save(ctx context.Context, key setting.Key, m *schema.Model, scope schema.Scope, tree map[string]any) error {
	if err := m.Validate(tree, scope); err != nil {
		return err
	}

	normalized, err := m.Normalize(tree)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("encode settings %s: %w", key, err)
	}

	_, err = setting.Set(ctx, a.db, key.String(), raw)

	return err
}

// StudioOverrides returns the stored studio overrides of variant.
func (a *Addon) StudioOverrides(ctx context.Context, variant string) (map[string]any, error) {
	return a.load(ctx, a.key(variant, schema.ScopeStudio))
}

// ProjectOverrides returns the stored overrides of a project.
func (a *Addon) ProjectOverrides(ctx context.Context, projectName, variant string) (map[string]any, error) {
	key := a.key(variant, schema.ScopeProject)
	key.Project = projectName

	return a.load(ctx, key)
}

// SiteOverrides returns the stored site settings of a user.
func (a *Addon) SiteOverrides(ctx context.Context, siteID, user string) (map[string]any, error) {
	return a.load(ctx, a.siteKey(siteID, user))
}

func (a *Addon) siteKey(siteID, user string) setting.Key {
	key := a.key(VariantProduction, schema.ScopeSite)
	key.Site, key.User = siteID, user

	return key
}

// SaveStudioOverrides validates and stores the studio overrides of variant.
func (a *Addon) SaveStudioOverrides(ctx context.Context, variant string, tree map[string]any) error {
	old, err := a.StudioSettings(ctx, variant)
	if err != nil {
		return err
	}

	if err := a.save(ctx, a.key(variant, schema.ScopeStudio), a.settingsModel, schema.ScopeStudio, tree); err != nil {
		return err
	}

	updated, err := a.StudioSettings(ctx, variant)
	if err != nil {
		return err
	}

	if variant == VariantProduction {
		a.OnSettingsChanged(old, updated)
	}

	a.notifySettingsChanged(ctx, schema.ScopeStudio, "", variant)

	return nil
}

// SaveProjectOverrides validates and stores the overrides of a project.
func (a *Addon) SaveProjectOverrides(ctx context.Context, projectName, variant string, tree map[string]any) error {
	if _, err := project.Get(ctx, a.db, projectName); err != nil {
		return err
	}

	key := a.key(variant, schema.ScopeProject)
	key.Project = projectName

	if err := a.save(ctx, key, a.settingsModel, schema.ScopeProject, tree); err != nil {
		return err
	}

	a.notifySettingsChanged(ctx, schema.ScopeProject, projectName, variant)

	return nil
}

// SaveSiteSettings validates and stores the site settings of a user.
func (a *Addon) SaveSiteSettings(ctx context.Context, siteID, user string, tree map[string]any) error {
	return a.save(ctx, a.siteKey(siteID, user), a.siteModel, schema.ScopeSite, tree)
}

// SettingsTree returns the effective settings: defaults, then the studio
// overrides, then the project overrides when projectName is set.
func (a *Addon) SettingsTree(ctx context.Context, projectName, variant string) (map[string]any, error) {
	if variant == "" {
		variant = VariantProduction
	}

	studio, err := a.StudioOverrides(ctx, variant)
	if err != nil {
		return nil, err
	}

	layers := []map[string]any{studio}

	if projectName != "" {
		overrides, err := a.ProjectOverrides(ctx, projectName, variant)
		if err != nil {
			return nil, err
		}

		layers = append(layers, overrides)
	}

	return schema.Merge(a.settingsModel.Defaults(), layers...), nil
}

// StudioSettings returns the typed studio settings of variant.
func (a *Addon) StudioSettings(ctx context.Context, variant string) (*Settings, error) {
	return a.ProjectSettings(ctx, "", variant)
}

// ProjectSettings returns the typed settings of a project.
func (a *Addon) ProjectSettings(ctx context.Context, projectName, variant string) (*Settings, error) {
	tree, err := a.SettingsTree(ctx, projectName, variant)
	if err != nil {
		return nil, err
	}

	var s Settings
	if err := decode(tree, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// SiteSettings returns the typed site settings of a user.
func (a *Addon) SiteSettings(ctx context.Context, siteID, user string) (*SiteSettings, error) {
	overrides, err := a.SiteOverrides(ctx, siteID, user)
	if err != nil {
		return nil, err
	}

	var s SiteSettings
	if err := decode(schema.Merge(a.siteModel.Defaults(), overrides), &s); err != nil {
		return nil, err
	}

	return &s, nil
}

func (a *Addon) notifySettingsChanged(ctx context.Context, scope schema.Scope, projectName, variant string) {
	if a.stream == nil {
		return
	}

	e := &models.Event{
		Topic:       SettingsChangedTopic,
		Sender:      a.Name,
		Project:     projectName,
		Status:      models.EventFinished,
		Description: fmt.Sprintf("%s %s settings changed", a.Name, scope),
		Payload: map[string]any{
			"addon":   a.Name,
			"version": a.Version,
			"variant": variant,
			"scope":   string(scope),
		},
	}

	if err := a.stream.Dispatch(ctx, e); err != nil {
		log.Error().Err(err).Str("addon", a.Name).Msg("failed to dispatch settings change")
	}
}

func decode(tree map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}

	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}

	return nil
}
