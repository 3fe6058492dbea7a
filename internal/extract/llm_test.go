package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/harvester/internal/model"
	"github.com/citypulse/harvester/pkg/anthropic"
)

// fakeClient returns a canned answer and records the request.
type fakeClient struct {
	answer  string
	err     error
	lastReq anthropic.MessageRequest
}

func (f *fakeClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.answer}},
	}, nil
}

func TestLLM_MapsAnswer(t *testing.T) {
	client := &fakeClient{answer: "```json\n" + `{
		"title": "Jazz Night",
		"description": "A night of jazz.",
		"start_time": "2026-09-01T20:00:00",
		"ticket_url": "https://tickets.example/buy",
		"price_min": "15.00",
		"is_free": false,
		"artists": ["Quartet One", "quartet one", "Solo Act"],
		"venue_name": "The Blue Room"
	}` + "\n```"}

	e := NewLLMExtractor(client, "claude-haiku-4-5-20251001")
	p, err := e.Extract(context.Background(), Input{
		HTML:    "<p>Jazz Night at The Blue Room, Sep 1.</p>",
		PageURL: "https://venue.example/e/1",
		Source:  "blue-room",
	})
	require.NoError(t, err)

	assert.Equal(t, "Jazz Night", p.Fields[model.FieldTitle])
	assert.Equal(t, "2026-09-01T20:00:00", p.Fields[model.FieldStartTime])
	assert.Equal(t, 15.0, p.Fields[model.FieldPriceMin])
	assert.Equal(t, []string{"Quartet One", "Solo Act"}, p.Fields[model.FieldArtists])
	assert.Equal(t, "The Blue Room", p.Fields[model.FieldVenueName])
	// false is-free is absence, not a value.
	_, hasFree := p.Fields[model.FieldIsFree]
	assert.False(t, hasFree)

	assert.Contains(t, client.lastReq.Messages[0].Content, "blue-room")
	assert.Contains(t, client.lastReq.Messages[0].Content, "Jazz Night at The Blue Room")
}

func TestLLM_NullsIgnored(t *testing.T) {
	client := &fakeClient{answer: `{"title": "Jazz Night", "description": null, "artists": null}`}

	e := NewLLMExtractor(client, "claude-haiku-4-5-20251001")
	p, err := e.Extract(context.Background(), Input{HTML: "<p>something</p>"})
	require.NoError(t, err)

	assert.Equal(t, "Jazz Night", p.Fields[model.FieldTitle])
	assert.Len(t, p.Fields, 1)
}

func TestLLM_APIErrorReturned(t *testing.T) {
	client := &fakeClient{err: errors.New("rate limited")}

	e := NewLLMExtractor(client, "claude-haiku-4-5-20251001")
	p, err := e.Extract(context.Background(), Input{HTML: "<p>something</p>"})
	assert.Error(t, err)
	assert.True(t, p.Empty())
}

func TestLLM_UnparseableAnswer(t *testing.T) {
	client := &fakeClient{answer: "I could not find an event on this page."}

	e := NewLLMExtractor(client, "claude-haiku-4-5-20251001")
	_, err := e.Extract(context.Background(), Input{HTML: "<p>something</p>"})
	assert.Error(t, err)
}

func TestLLM_EmptyPageSkipsCall(t *testing.T) {
	client := &fakeClient{answer: `{}`}

	e := NewLLMExtractor(client, "claude-haiku-4-5-20251001")
	p, err := e.Extract(context.Background(), Input{HTML: "<script>only()</script>"})
	require.NoError(t, err)
	assert.True(t, p.Empty())
	assert.Empty(t, client.lastReq.Model)
}
