// Package main runs the example pipeline addon. The start command serves the
// addon REST API (settings, schema, actions, events and the job queue) and
// the service command runs the worker that processes approved folders.
package main
