// Package generation defines the capability interface for the podcast
// generation pipeline. Concrete implementations live under
// internal/platform (e.g. the Gemini-backed generator); the application
// core depends only on the interface defined here.
package generation
