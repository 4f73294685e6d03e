// Package api contains the HTTP handlers for the generation service:
// submitting image and podcast jobs, and polling job status. Handlers
// decode and validate request DTOs, hand the work to the job runner or
// the status store, and translate domain errors into HTTP responses.
package api
