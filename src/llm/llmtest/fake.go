// Package llmtest provides a scripted chat model for tests.
package llmtest

import (
	"context"
	"sync"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// FakeChatModel answers with scripted replies and records every prompt it receives.
// Once the script is exhausted the last reply is repeated.
type FakeChatModel struct {
	mu      sync.Mutex
	replies []string
	err     error
	calls   [][]*schema.Message
}

var _ einomodel.BaseChatModel = (*FakeChatModel)(nil)

func NewFakeChatModel(replies ...string) *FakeChatModel {
	return &FakeChatModel{replies: replies}
}

// FailWith makes every following call return err
func (f *FakeChatModel) FailWith(err error) *FakeChatModel {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

func (f *FakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}

	reply := ""
	if n := len(f.replies); n > 0 {
		idx := len(f.calls) - 1
		if idx >= n {
			idx = n - 1
		}
		reply = f.replies[idx]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (f *FakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls returns the prompts received so far
func (f *FakeChatModel) Calls() [][]*schema.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]*schema.Message, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastPrompt joins the contents of the most recent prompt
func (f *FakeChatModel) LastPrompt() string {
	calls := f.Calls()
	if len(calls) == 0 {
		return ""
	}
	var text string
	for _, msg := range calls[len(calls)-1] {
		text += msg.Content + "\n"
	}
	return text
}
