package addon

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/db/controller/folder"
	"github.com/pipelinekit/example-addon/internal/db/controller/project"
	"github.com/pipelinekit/example-addon/internal/schema"
)

const primaryPreset = "__primary__"

var (
	// AnatomyPresets lists the anatomy presets a project can be created from.
	AnatomyPresets = schema.Items{
		{Value: primaryPreset, Label: "<PRIMARY>"},
		{Value: "_", Label: "<BUILT-IN>"},
	}

	// AppHostNames lists the host applications integrations exist for.
	AppHostNames = schema.Values{
		"aftereffects", "blender", "celaction", "flame", "fusion", "harmony",
		"hiero", "houdini", "max", "maya", "nuke", "photoshop", "resolve",
		"substancepainter", "traypublisher", "tvpaint", "unreal",
	}

	// LabelledValues resolves to value0..value9 labelled "Label 0".."Label 9".
	LabelledValues = schema.Func(func() []schema.Item {
		items := make([]schema.Item, 10)
		for i := range items {
			items[i] = schema.Item{Value: fmt.Sprintf("value%d", i), Label: fmt.Sprintf("Label %d", i)}
		}

		return items
	})

	// RecursiveEnum resolves to the list_of_strings setting of the project
	// (or the studio when no project is selected). Without access to the
	// settings it resolves to nothing.
	RecursiveEnum = schema.ContextFunc(func(ctx context.Context, rc schema.ResolveContext) ([]schema.Item, error) {
		if rc.Settings == nil {
			return []schema.Item{}, nil
		}

		tree, err := rc.Settings.SettingsTree(ctx, rc.ProjectName, rc.Variant)
		if err != nil {
			return nil, err
		}

		values, _ := tree["list_of_strings"].([]any)

		items := make([]schema.Item, 0, len(values))
		for _, v := range values {
			if s, ok := v.(string); ok {
				items = append(items, schema.Item{Value: s, Label: s})
			}
		}

		return items, nil
	})
)

// ProjectNames resolves to the names of every project.
func ProjectNames(db *gorm.DB) schema.Resolver {
	return schema.ContextFunc(func(ctx context.Context, _ schema.ResolveContext) ([]schema.Item, error) {
		if db == nil {
			return []schema.Item{}, nil
		}

		names, err := project.Names(ctx, db)
		if err != nil {
			return nil, err
		}

		return schema.ItemsFromValues(names), nil
	})
}

// FolderTypes resolves to the folder types used in the selected project,
// and to nothing when no project is selected.
func FolderTypes(db *gorm.DB) schema.Resolver {
	return schema.ContextFunc(func(ctx context.Context, rc schema.ResolveContext) ([]schema.Item, error) {
		if db == nil || rc.ProjectName == "" {
			return []schema.Item{}, nil
		}

		types, err := folder.Types(ctx, db, rc.ProjectName)
		if err != nil {
			return nil, err
		}

		return schema.ItemsFromValues(types), nil
	})
}
