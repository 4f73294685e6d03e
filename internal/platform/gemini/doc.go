// Package gemini implements the generation.PodcastGenerator interface
// using Google's Gemini API. The model produces the dialog transcript as
// structured JSON; the transcript artifact is then materialized into
// object storage and its key returned as the podcast file location.
package gemini
