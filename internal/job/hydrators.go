package job

import (
	"log/slog"
	"time"

	"github.com/halcyonlab/genstudio-api/internal/store"
)

// RegisterImageJobHydrator wires the image job type into the registry so
// recovered descriptors can be rebuilt with live dependencies.
func RegisterImageJobHydrator(
	registry *Registry,
	renderer Renderer,
	storage ObjectStorage,
	logStore store.TaskLogStore,
	presignTTL time.Duration,
	logger *slog.Logger,
) {
	registry.Register(TypeImageGeneration, func(desc *Descriptor) (Job, error) {
		return hydrateImageJob(desc, renderer, storage, logStore, presignTTL, logger)
	})
}

// RegisterPodcastJobHydrator wires the podcast job type into the registry.
func RegisterPodcastJobHydrator(registry *Registry, service PodcastService, logger *slog.Logger) {
	registry.Register(TypePodcastGeneration, func(desc *Descriptor) (Job, error) {
		return hydratePodcastJob(desc, service, logger)
	})
}
