// Package auth authenticates API users and guards the REST surface.
//
// Users authenticate with an API key of the form "<key id>.<secret>" sent as
// a bearer token. The key id is stored in clear text and used for the
// lookup, the secret is only kept as an Argon2id hash.
//
// # Authorization
//
// Admin users can read every project and change studio and project
// settings. Other users can read the projects they are assigned to.
//
// # Middleware
//
// RequireUser resolves the bearer key and stores the user in the fiber
// context, RequireAdmin additionally rejects non-admin users:
//
//	api := app.Group("/api", auth.RequireUser(authService))
//	api.Post("/settings", auth.RequireAdmin(), handler)
//
// Handlers read the authenticated user with CurrentUser.
package auth
