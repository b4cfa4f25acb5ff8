// Package testkit holds in-process fakes for the chat model and knowledge
// sources, shared by package tests across the module.
package testkit

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hrcopilot/server/internal/knowledge"
)

// ReplyFunc produces the model answer for the given prompt.
type ReplyFunc func(input []*schema.Message) (*schema.Message, error)

// ChatModel is a scripted eino BaseChatModel.
type ChatModel struct {
	Reply ReplyFunc

	mu        sync.Mutex
	calls     int
	lastInput []*schema.Message
}

// NewChatModel returns a ChatModel that always answers with content.
func NewChatModel(content string) *ChatModel {
	return &ChatModel{Reply: func([]*schema.Message) (*schema.Message, error) {
		return schema.AssistantMessage(content, nil), nil
	}}
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls++
	m.lastInput = input
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.Reply(input)
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

// Calls is the number of Generate/Stream calls so far.
func (m *ChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SystemPrompt returns the system message content of the last call.
func (m *ChatModel) SystemPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.lastInput {
		if msg != nil && msg.Role == schema.System {
			return msg.Content
		}
	}
	return ""
}

var _ einomodel.BaseChatModel = (*ChatModel)(nil)

// Source is a knowledge.Source returning fixed hits or a fixed error.
type Source struct {
	ID   string
	Hits []knowledge.Hit
	Err  error

	calls atomic.Int32
}

// NewSource returns a Source whose hits carry the given texts.
func NewSource(id string, texts ...string) *Source {
	s := &Source{ID: id}
	for _, t := range texts {
		s.Hits = append(s.Hits, knowledge.Hit{Text: t, Score: 1})
	}
	return s
}

func (s *Source) Name() string { return s.ID }

func (s *Source) Search(ctx context.Context, query string, topK int) ([]knowledge.Hit, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	if topK > 0 && len(s.Hits) > topK {
		return s.Hits[:topK], nil
	}
	return s.Hits, nil
}

// Calls is the number of Search calls so far.
func (s *Source) Calls() int { return int(s.calls.Load()) }

var _ knowledge.Source = (*Source)(nil)

// InsufficientDataReply answers like a model that follows the copilot prompt:
// it falls back to an HR referral when the prompt says nothing usable was found.
func InsufficientDataReply(answer string) ReplyFunc {
	return func(input []*schema.Message) (*schema.Message, error) {
		for _, msg := range input {
			if msg != nil && msg.Role == schema.System && strings.Contains(msg.Content, "do not have enough data") {
				return schema.AssistantMessage("I do not have enough data to answer that. Please contact HR for help.", nil), nil
			}
		}
		return schema.AssistantMessage(answer, nil), nil
	}
}
