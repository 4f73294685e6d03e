package service

import (
	"strings"

	"github.com/halcyonlab/genstudio-api/internal/domain"
)

// buildDocumentSource assembles the structured source block handed to the
// generation pipeline for a document podcast. Chunk contents are joined
// in stored order; when the joined text comes out empty (no chunks, or
// only empty ones) the document's full content is used verbatim.
func buildDocumentSource(document *domain.Document, chunks []domain.DocumentChunk) string {
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Content)
	}
	content := strings.Join(parts, "\n\n")
	if content == "" {
		content = document.Content
	}

	var b strings.Builder
	b.WriteString("<document_content>\n")
	b.WriteString("<title>")
	b.WriteString(document.Title)
	b.WriteString("</title>\n")
	b.WriteString("<content>")
	b.WriteString(content)
	b.WriteString("</content>\n")
	b.WriteString("</document_content>")
	return b.String()
}

// buildChatSource serializes a conversation for the generation pipeline.
// Only user and assistant turns are included; any other role is skipped.
func buildChatSource(chat *domain.Chat) string {
	var b strings.Builder
	b.WriteString("<chat_history>\n")
	for _, msg := range chat.Messages {
		switch msg.Role {
		case domain.ChatRoleUser:
			b.WriteString("<user_message>")
			b.WriteString(msg.Content)
			b.WriteString("</user_message>\n")
		case domain.ChatRoleAssistant:
			b.WriteString("<assistant_message>")
			b.WriteString(msg.Content)
			b.WriteString("</assistant_message>\n")
		}
	}
	b.WriteString("</chat_history>")
	return b.String()
}
