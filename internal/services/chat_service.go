package services

import (
	"context"
	"fmt"

	"github.com/docquery-ai/docquery/internal/core"
)

const (
	groundedSystemPrompt = "You are an intelligent assistant answering based only on the given document content. If unsure, say 'I cannot find this in the document.'"

	ungroundedSystemPrompt = "You are an intelligent assistant. No relevant content was found in the user's document, so begin your answer by saying the document does not appear to cover this, then answer from general knowledge."
)

type ChatService struct {
	contexts core.ContextProvider
	llm      core.LLMProvider
}

func NewChatService(contexts core.ContextProvider, llm core.LLMProvider) *ChatService {
	return &ChatService{contexts: contexts, llm: llm}
}

// Query answers a question about one document. The empty context string
// from the provider means nothing relevant was retrieved; the model is then
// told to caveat its answer instead of pretending to quote the document.
func (s *ChatService) Query(ctx context.Context, query, documentKey string) (string, error) {
	docContext, err := s.contexts.GetContext(ctx, query, documentKey)
	if err != nil {
		return "", err
	}

	if docContext == "" {
		return s.llm.Generate(ctx, ungroundedSystemPrompt, fmt.Sprintf("Question: %s", query))
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", docContext, query)
	return s.llm.Generate(ctx, groundedSystemPrompt, userPrompt)
}
