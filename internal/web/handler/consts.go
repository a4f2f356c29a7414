package handler

const (
	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// ParamProjectName names the project path parameter.
	ParamProjectName = "project_name"

	// QueryProject names the project query parameter.
	QueryProject = "project"

	// QueryVariant names the settings variant query parameter.
	QueryVariant = "variant"

	// ErrNilDepsMsg is used if a handler dependency is nil.
	ErrNilDepsMsg = "router or handler dependencies are nil"
)
