// Package api handles incoming HTTP requests for the literacy service: the
// consonant catalog, word generation, activity sessions, progress and
// accounts. Handlers decode and validate requests, resolve the caller's
// session from the context and translate service errors into HTTP responses.
package api
