package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/citypulse/harvester/internal/model"
	"github.com/citypulse/harvester/pkg/anthropic"
)

// llmMaxContentChars caps the page text sent to the model.
const llmMaxContentChars = 12000

const llmSystemText = "You are a data extraction assistant for a local events calendar. Extract event details from the page text. Return a valid JSON object with these keys, using null for anything not present: title, description, start_time (ISO 8601 if determinable, else the literal text), ticket_url, image_url, price_min (number), is_free (boolean), artists (array of performer names), venue_name."

const llmPromptTemplate = `Source: %s
Page URL: %s

Page text:
%s

Extract the event details. Return only the JSON object.`

// LLMExtractor asks a model to fill the fields cheaper extractors missed.
// Lowest trust tier: the model sees stripped text and will happily guess.
// The engine only invokes it when the accumulated draft is still missing
// key fields, so most pages never pay for a call.
type LLMExtractor struct {
	client    anthropic.Client
	modelName string
}

// NewLLMExtractor creates an LLM extractor backed by the given client.
func NewLLMExtractor(client anthropic.Client, modelName string) *LLMExtractor {
	return &LLMExtractor{client: client, modelName: modelName}
}

func (*LLMExtractor) Name() string { return NameLLM }

// Extract sends the stripped page text to the model and maps its JSON answer
// onto a partial. Network or parse failure is returned as an error; the
// engine logs it and treats the contribution as empty.
func (e *LLMExtractor) Extract(ctx context.Context, in Input) (Partial, error) {
	out := NewPartial()
	if e.client == nil {
		return out, eris.New("llm: no client configured")
	}

	text := stripTags(in.HTML)
	if len(text) > llmMaxContentChars {
		text = text[:llmMaxContentChars]
	}
	if text == "" {
		return out, nil
	}

	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.modelName,
		MaxTokens: 1024,
		System:    llmSystemText,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(llmPromptTemplate, in.Source, in.PageURL, text)},
		},
	})
	if err != nil {
		return out, eris.Wrap(err, "llm: create message")
	}
	resp.Usage.LogCost(e.modelName, in.Source)

	var raw map[string]any
	if err := json.Unmarshal([]byte(anthropic.CleanJSON(resp.Text())), &raw); err != nil {
		return out, eris.Wrap(err, "llm: parse answer")
	}

	mapLLMAnswer(raw, out)
	return out, nil
}

// mapLLMAnswer copies recognized keys from the model's answer, coercing
// types defensively since the model does not always honor the schema.
func mapLLMAnswer(raw map[string]any, out Partial) {
	for _, key := range []model.FieldKey{
		model.FieldTitle,
		model.FieldDescription,
		model.FieldStartTime,
		model.FieldTicketURL,
		model.FieldImageURL,
		model.FieldVenueName,
	} {
		if s, ok := raw[string(key)].(string); ok && strings.TrimSpace(s) != "" {
			out.Set(key, strings.TrimSpace(s))
		}
	}

	if f, ok := ldFloat(raw[string(model.FieldPriceMin)]); ok && f > 0 {
		out.Set(model.FieldPriceMin, f)
	}
	if b, ok := raw[string(model.FieldIsFree)].(bool); ok && b {
		out.Set(model.FieldIsFree, true)
	}

	if list, ok := raw[string(model.FieldArtists)].([]any); ok {
		var names []string
		for _, item := range list {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				names = append(names, strings.TrimSpace(s))
			}
		}
		if deduped := DedupArtists(names); len(deduped) > 0 {
			out.Fields[model.FieldArtists] = deduped
		}
	}
}
