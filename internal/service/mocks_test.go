package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/halcyonlab/genstudio-api/internal/domain"
	"github.com/halcyonlab/genstudio-api/internal/store"
)

// mockDocumentStore implements store.DocumentStore in memory.
type mockDocumentStore struct {
	mu        sync.RWMutex
	documents map[uuid.UUID]*domain.Document
	chunks    map[uuid.UUID][]domain.DocumentChunk

	GetChunksFn func(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentChunk, error)
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{
		documents: make(map[uuid.UUID]*domain.Document),
		chunks:    make(map[uuid.UUID][]domain.DocumentChunk),
	}
}

func (m *mockDocumentStore) Create(ctx context.Context, document *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[document.ID] = document
	return nil
}

func (m *mockDocumentStore) GetByID(ctx context.Context, id, searchSpaceID uuid.UUID) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok || doc.SearchSpaceID != searchSpaceID {
		return nil, store.ErrDocumentNotFound
	}
	return doc, nil
}

func (m *mockDocumentStore) GetChunks(ctx context.Context, documentID uuid.UUID) ([]domain.DocumentChunk, error) {
	if m.GetChunksFn != nil {
		return m.GetChunksFn(ctx, documentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chunks[documentID], nil
}

func (m *mockDocumentStore) WithTx(tx *sql.Tx) store.DocumentStore { return m }

// mockChatStore implements store.ChatStore in memory.
type mockChatStore struct {
	mu    sync.RWMutex
	chats map[uuid.UUID]*domain.Chat
}

func newMockChatStore() *mockChatStore {
	return &mockChatStore{chats: make(map[uuid.UUID]*domain.Chat)}
}

func (m *mockChatStore) Create(ctx context.Context, chat *domain.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[chat.ID] = chat
	return nil
}

func (m *mockChatStore) GetByID(ctx context.Context, id, searchSpaceID uuid.UUID) (*domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chat, ok := m.chats[id]
	if !ok || chat.SearchSpaceID != searchSpaceID {
		return nil, store.ErrChatNotFound
	}
	return chat, nil
}

func (m *mockChatStore) WithTx(tx *sql.Tx) store.ChatStore { return m }

// mockPodcastStore implements store.PodcastStore in memory with the same
// identity semantics as the PostgreSQL implementation.
type mockPodcastStore struct {
	mu       sync.RWMutex
	podcasts map[uuid.UUID]*domain.Podcast

	CreateFn func(ctx context.Context, podcast *domain.Podcast) error
	UpdateFn func(ctx context.Context, podcast *domain.Podcast) error
}

func newMockPodcastStore() *mockPodcastStore {
	return &mockPodcastStore{podcasts: make(map[uuid.UUID]*domain.Podcast)}
}

func (m *mockPodcastStore) Create(ctx context.Context, podcast *domain.Podcast) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, podcast)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *podcast
	m.podcasts[podcast.ID] = &copied
	return nil
}

func (m *mockPodcastStore) Update(ctx context.Context, podcast *domain.Podcast) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, podcast)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.podcasts[podcast.ID]; !ok {
		return store.ErrPodcastNotFound
	}
	copied := *podcast
	m.podcasts[podcast.ID] = &copied
	return nil
}

func (m *mockPodcastStore) FindByChatID(ctx context.Context, chatID uuid.UUID) (*domain.Podcast, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.podcasts {
		if p.ChatID != nil && *p.ChatID == chatID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, store.ErrPodcastNotFound
}

func (m *mockPodcastStore) FindByScopeAndTitle(ctx context.Context, searchSpaceID uuid.UUID, title string) (*domain.Podcast, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.podcasts {
		if p.ChatID == nil && p.SearchSpaceID == searchSpaceID && p.Title == title {
			copied := *p
			return &copied, nil
		}
	}
	return nil, store.ErrPodcastNotFound
}

func (m *mockPodcastStore) WithTx(tx *sql.Tx) store.PodcastStore { return m }

func (m *mockPodcastStore) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.podcasts)
}
