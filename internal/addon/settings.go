package addon

import (
	"gorm.io/gorm"

	"github.com/pipelinekit/example-addon/internal/schema"
)

const settingsDescription = `Test addon settings.

This is a test addon settings. It is used to test various
features of the settings system.

Descriptions are propagated to the frontend and rendered as markdown,
so you can use **bold**, *italic*, ` + "`code`" + ` and [links](https://example.com).`

var (
	allScopes   = []schema.Scope{schema.ScopeStudio, schema.ScopeProject, schema.ScopeSite}
	modelSwitch = schema.Items{
		{Value: "model1", Label: "Something"},
		{Value: "model2", Label: "Something else"},
		{Value: "model3", Label: "Something completely different"},
	}
)

// Settings is the typed form of the effective addon settings.
type Settings struct {
	SimpleString             string            `json:"simple_string"`
	FolderType               string            `json:"folder_type"`
	AnatomyPreset            string            `json:"anatomy_preset"`
	Textarea                 string            `json:"textarea"`
	Number                   int               `json:"number"`
	HiddenSetting            string            `json:"hidden_setting"`
	AllScopesSetting         string            `json:"all_scopes_setting"`
	StudioSetting            string            `json:"studio_setting"`
	ProjectSetting           string            `json:"project_setting"`
	ProjectSiteSetting       string            `json:"project_site_setting"`
	AllScopesListOfSubmodels []DictLikeItem    `json:"all_scopes_list_of_submodels"`
	SimpleEnum               string            `json:"simple_enum"`
	Project                  *string           `json:"project"`
	Multiselect              []string          `json:"multiselect"`
	AppHostNames             []string          `json:"app_host_names"`
	EnumWithLabels           string            `json:"enum_with_labels"`
	ListOfStrings            []string          `json:"list_of_strings"`
	RecursiveEnum            string            `json:"recursive_enum"`
	Colors                   Colors            `json:"colors"`
	NestedSettings           NestedSettings    `json:"nested_settings"`
	GroupedSettings          GroupedSettings   `json:"grouped_settings"`
	ListOfSubmodels          []CompactListItem `json:"list_of_submodels"`
	DictLikeList             []DictLikeItem    `json:"dict_like_list"`
}

// Colors holds one color per supported storage format.
type Colors struct {
	RGBHex    string    `json:"rgb_hex"`
	RGBAHex   string    `json:"rgba_hex"`
	RGBFloat  []float64 `json:"rgb_float"`
	RGBAFloat []float64 `json:"rgba_float"`
	RGBUint8  []int     `json:"rgb_uint8"`
	RGBAUint8 []int     `json:"rgba_uint8"`
}

// NestedSettings shows plain nesting, conditional sub-models and a nested
// records list.
type NestedSettings struct {
	Spam                  bool              `json:"spam"`
	Eggs                  bool              `json:"eggs"`
	Bacon                 bool              `json:"bacon"`
	ModelSwitcher         string            `json:"model_switcher"`
	Model1                ConditionalModel1 `json:"model1"`
	Model2                ConditionalModel2 `json:"model2"`
	Model3                ConditionalModel3 `json:"model3"`
	NestedListOfSubmodels []CompactListItem `json:"nested_list_of_submodels"`
}

type ConditionalModel1 struct {
	Something string `json:"something"`
}

type ConditionalModel2 struct {
	SomethingElse       string `json:"something_else"`
	SomethingElseNumber int    `json:"something_else_number"`
}

type ConditionalModel3 struct {
	Key1 string `json:"key1"`
	Key2 string `json:"key2"`
	Key3 string `json:"key3"`
}

// GroupedSettings is rendered in a visual box.
type GroupedSettings struct {
	YourName      string `json:"your_name"`
	YourQuest     string `json:"your_quest"`
	FavoriteColor string `json:"favorite_color"`
}

// CompactListItem is a named record shown in a single row.
type CompactListItem struct {
	Name     string   `json:"name"`
	IntValue int      `json:"int_value"`
	Enum     []string `json:"enum"`
}

// DictLikeItem is a named record of a dict-like list.
type DictLikeItem struct {
	Name   string `json:"name"`
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
	Value3 string `json:"value3"`
	Value4 string `json:"value4"`
}

func compactListModel() *schema.Model {
	m := schema.NewModel("CompactListSubmodel",
		&schema.Field{Name: "name", Kind: schema.KindString, Title: "Name", Required: true},
		&schema.Field{Name: "int_value", Kind: schema.KindInt, Title: "Integer", Required: true},
		&schema.Field{
			Name:  "enum",
			Kind:  schema.KindStrings,
			Title: "Enum",
			Enum:  schema.Values{"foo", "bar", "baz"},
		},
	)
	m.Layout = schema.LayoutCompact

	return m
}

func dictLikeModel() *schema.Model {
	m := schema.NewModel("DictLikeSubmodel",
		&schema.Field{Name: "name", Kind: schema.KindString, Title: "Name", Scope: allScopes, Required: true},
		&schema.Field{Name: "value1", Kind: schema.KindString, Title: "Value 1", Scope: allScopes},
		&schema.Field{Name: "value2", Kind: schema.KindString, Title: "Value 2", Scope: allScopes},
		&schema.Field{Name: "value3", Kind: schema.KindString, Title: "Value 3", Scope: allScopes},
		&schema.Field{Name: "value4", Kind: schema.KindString, Title: "Value 4"},
	)
	m.Layout = schema.LayoutExpanded

	return m
}

func defaultCompactList() []any {
	return []any{
		map[string]any{"name": "default", "int_value": 42, "enum": []any{"foo", "bar"}},
	}
}

func colorsModel() *schema.Model {
	m := schema.NewModel("Colors",
		&schema.Field{Name: "rgb_hex", Kind: schema.KindColor, ColorFormat: schema.ColorHex, Title: "RGB Hex", Default: "#0000ff"},
		&schema.Field{Name: "rgba_hex", Kind: schema.KindColor, ColorFormat: schema.ColorHex, Alpha: true, Title: "RGBA Hex", Default: "#0000ffff"},
		&schema.Field{Name: "rgb_float", Kind: schema.KindColor, ColorFormat: schema.ColorFloat, Title: "RGB Float", Default: []any{0.0, 0.0, 1.0}},
		&schema.Field{Name: "rgba_float", Kind: schema.KindColor, ColorFormat: schema.ColorFloat, Alpha: true, Title: "RGBA Float", Default: []any{0.0, 0.0, 1.0, 1.0}},
		&schema.Field{Name: "rgb_uint8", Kind: schema.KindColor, ColorFormat: schema.ColorUint8, Title: "RGB Uint8", Default: []any{0, 0, 255}},
		&schema.Field{Name: "rgba_uint8", Kind: schema.KindColor, ColorFormat: schema.ColorUint8, Alpha: true, Title: "RGBA Uint8", Default: []any{0, 0, 255, 0}},
	)
	m.Description = "Default is blue"

	return m
}

func nestedSettingsModel() *schema.Model {
	model1 := schema.NewModel("ConditionalModel1",
		&schema.Field{Name: "something", Kind: schema.KindString, Description: "Something"},
	)
	model1.Layout = schema.LayoutCompact

	model2 := schema.NewModel("ConditionalModel2",
		&schema.Field{Name: "something_else", Kind: schema.KindString, Description: "Something else"},
		&schema.Field{Name: "something_else_number", Kind: schema.KindInt, Description: "Something else's number"},
	)
	model2.Layout = schema.LayoutCompact

	model3 := schema.NewModel("ConditionalModel3",
		&schema.Field{Name: "key1", Kind: schema.KindString, Description: "Key 1"},
		&schema.Field{Name: "key2", Kind: schema.KindString, Description: "Key 2"},
		&schema.Field{Name: "key3", Kind: schema.KindString, Description: "Key 3"},
	)
	model3.Title = "Something completely different"

	m := schema.NewModel("NestedSettings",
		&schema.Field{Name: "spam", Kind: schema.KindBool, Title: "Spam"},
		&schema.Field{Name: "eggs", Kind: schema.KindBool, Title: "Eggs"},
		&schema.Field{Name: "bacon", Kind: schema.KindBool, Title: "Bacon"},
		&schema.Field{
			Name:            "model_switcher",
			Kind:            schema.KindString,
			Title:           "Model switcher",
			Description:     "Switch between two models",
			Enum:            modelSwitch,
			ConditionalEnum: true,
			Section:         "Pseudo-dynamic models",
		},
		&schema.Field{Name: "model1", Kind: schema.KindModel, Model: model1},
		&schema.Field{Name: "model2", Kind: schema.KindModel, Model: model2},
		&schema.Field{Name: "model3", Kind: schema.KindModel, Model: model3},
		&schema.Field{
			Name:          "nested_list_of_submodels",
			Kind:          schema.KindModels,
			Title:         "A list of compact objects",
			Model:         compactListModel(),
			Default:       defaultCompactList(),
			RequiredItems: []string{"default"},
			UniqueNames:   true,
		},
	)
	m.Description = "Nested settings without grouping\n\nSubmodels also support descriptions, which are propagated to the frontend."

	return m
}

func groupedSettingsModel() *schema.Model {
	m := schema.NewModel("GroupedSettings",
		&schema.Field{Name: "your_name", Kind: schema.KindString, Title: "Name"},
		&schema.Field{Name: "your_quest", Kind: schema.KindString, Title: "Your quest"},
		&schema.Field{
			Name:    "favorite_color",
			Kind:    schema.KindString,
			Title:   "Favorite color",
			Default: "red",
			Enum:    schema.Values{"red", "green", "blue"},
		},
	)
	m.IsGroup = true

	return m
}

// NewSettingsModel declares the addon settings. Enumerators reading project
// state query db.
func NewSettingsModel(db *gorm.DB) *schema.Model {
	m := schema.NewModel("ExampleSettings",
		&schema.Field{
			Name:        "simple_string",
			Kind:        schema.KindString,
			Default:     "default value",
			Title:       "Simple string",
			Description: "This is a simple string",
		},
		&schema.Field{
			Name:        "folder_type",
			Kind:        schema.KindString,
			Default:     "Asset",
			Title:       "Folder type",
			Description: "Type of the folder the addon operates on",
			Placeholder: "Select folder type",
			Enum:        FolderTypes(db),
		},
		&schema.Field{
			Name:        "anatomy_preset",
			Kind:        schema.KindString,
			Default:     primaryPreset,
			Title:       "Anatomy preset",
			Description: "Anatomy preset to use",
			Enum:        AnatomyPresets,
		},
		&schema.Field{
			Name:        "textarea",
			Kind:        schema.KindText,
			Title:       "Textarea",
			Widget:      "textarea",
			Placeholder: "Placeholder of the textarea field",
		},
		&schema.Field{
			Name:        "number",
			Kind:        schema.KindInt,
			Default:     1,
			Title:       "Number",
			Description: "Positive integer 1-10",
			Placeholder: "Placeholder of the number field",
			Rules:       "gt=0,lte=10",
		},
		&schema.Field{
			Name:        "hidden_setting",
			Kind:        schema.KindString,
			Default:     "you can't see me",
			Title:       "Hidden setting",
			Description: "This setting is hidden in all contexts",
			Scope:       []schema.Scope{},
		},
		&schema.Field{
			Name:        "all_scopes_setting",
			Kind:        schema.KindString,
			Default:     "You see me all the time",
			Title:       "All scopes",
			Description: "This setting is shown in all contexts",
			Section:     "Scoped fields",
			Scope:       allScopes,
		},
		&schema.Field{
			Name:        "studio_setting",
			Kind:        schema.KindString,
			Title:       "Studio setting",
			Description: "This setting is only visible in studio scope",
			Scope:       []schema.Scope{schema.ScopeStudio},
		},
		&schema.Field{
			Name:        "project_setting",
			Kind:        schema.KindString,
			Title:       "Project setting",
			Description: "This setting is only visible in project scope",
			Scope:       []schema.Scope{schema.ScopeProject},
		},
		&schema.Field{
			Name:        "project_site_setting",
			Kind:        schema.KindString,
			Title:       "Project site setting",
			Description: "This setting is only visible in the local scope",
			Scope:       []schema.Scope{schema.ScopeSite},
		},
		&schema.Field{
			Name:        "all_scopes_list_of_submodels",
			Kind:        schema.KindModels,
			Title:       "Dict-like list",
			Scope:       allScopes,
			Model:       dictLikeModel(),
			UniqueNames: true,
		},
		&schema.Field{
			Name:    "simple_enum",
			Kind:    schema.KindString,
			Default: "red",
			Title:   "Simple enum",
			Section: "Enumerators",
			Options: []string{"red", "green", "blue"},
		},
		&schema.Field{
			Name:     "project",
			Kind:     schema.KindString,
			Title:    "Dynamic enum",
			Nullable: true,
			Enum:     ProjectNames(db),
		},
		&schema.Field{
			Name:  "multiselect",
			Kind:  schema.KindStrings,
			Title: "Multiselect",
			Enum:  schema.Values{"foo", "bar", "ba"},
		},
		&schema.Field{
			Name:  "app_host_names",
			Kind:  schema.KindStrings,
			Title: "App host names",
			Enum:  AppHostNames,
		},
		&schema.Field{
			Name:    "enum_with_labels",
			Kind:    schema.KindString,
			Default: "value1",
			Title:   "Enum with labels",
			Enum:    LabelledValues,
		},
		&schema.Field{
			Name:    "list_of_strings",
			Kind:    schema.KindStrings,
			Title:   "List of strings",
			Section: "List",
		},
		&schema.Field{
			Name:    "recursive_enum",
			Kind:    schema.KindString,
			Title:   "Recursive enum",
			Section: "Pick a value from the list above",
			Enum:    RecursiveEnum,
		},
		&schema.Field{Name: "colors", Kind: schema.KindModel, Title: "Colors", Model: colorsModel()},
		&schema.Field{Name: "nested_settings", Kind: schema.KindModel, Title: "Nested settings", Model: nestedSettingsModel()},
		&schema.Field{
			Name:        "grouped_settings",
			Kind:        schema.KindModel,
			Title:       "Grouped settings",
			Description: "Nested settings submodel with grouping",
			Model:       groupedSettingsModel(),
		},
		&schema.Field{
			Name:          "list_of_submodels",
			Kind:          schema.KindModels,
			Title:         "A list of compact objects",
			Model:         compactListModel(),
			Default:       defaultCompactList(),
			RequiredItems: []string{"default"},
			UniqueNames:   true,
		},
		&schema.Field{
			Name:        "dict_like_list",
			Kind:        schema.KindModels,
			Title:       "Dict-like list",
			Model:       dictLikeModel(),
			UniqueNames: true,
		},
	)
	m.Description = settingsDescription

	return m
}

// SiteSettings is the typed form of the per-user site settings.
type SiteSettings struct {
	ChairOrientation string `json:"chair_orientation"`
	FloorMaterial    string `json:"floor_material"`
}

// NewSiteSettingsModel declares the site settings.
func NewSiteSettingsModel() *schema.Model {
	return schema.NewModel("ExampleSiteSettings",
		&schema.Field{
			Name:        "chair_orientation",
			Kind:        schema.KindString,
			Default:     "north",
			Title:       "Chair orientation",
			Description: "The orientation of the chair",
			Enum:        schema.Values{"north", "south", "east", "west"},
			Scope:       []schema.Scope{schema.ScopeSite},
		},
		&schema.Field{
			Name:        "floor_material",
			Kind:        schema.KindString,
			Default:     "wood",
			Title:       "Floor material",
			Description: "The material of the floor",
			Scope:       []schema.Scope{schema.ScopeSite},
		},
	)
}
