package coach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/rubric"
)

type fakeGen struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGen) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func lowStructure() rubric.Score {
	return rubric.Score{
		Ideas:     rubric.CriterionScore{Score: 4},
		Structure: rubric.CriterionScore{Score: 1},
		Language:  rubric.CriterionScore{Score: 3},
		Mechanics: rubric.CriterionScore{Score: 5},
	}
}

func TestParseTip(t *testing.T) {
	cases := []struct {
		name, reply, tip, example string
		ok                        bool
	}{
		{"json", `{"tip":"Add a transition.","example_rewrite":"Meanwhile, the fox slept."}`, "Add a transition.", "Meanwhile, the fox slept.", true},
		{"fenced", "```json\n{\"tip\": \"Use the senses.\"}\n```", "Use the senses.", "", true},
		{"chatty", `Sure! Here you go: {"tip": "Say {how} it felt.", "example_rewrite": ""} Hope it helps.`, "Say {how} it felt.", "", true},
		{"delimited", "TIP: Vary your sentence openings.\nEXAMPLE: Quietly, she crept inside.", "Vary your sentence openings.", "Quietly, she crept inside.", true},
		{"bold", "**Tip:** Cut the word very.", "Cut the word very.", "", true},
		{"empty json tip", `{"tip":"   "}`, "", "", false},
		{"garbage", "I cannot help with that", "", "", false},
		{"broken json", `{"tip": "unterminated`, "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tip, ex, ok := ParseTip(tc.reply)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.tip, tip)
			assert.Equal(t, tc.example, ex)
		})
	}
}

func TestTipForUsesModelReply(t *testing.T) {
	gen := &fakeGen{reply: `{"tip":"Link your ideas.","example_rewrite":"After that, they left."}`}
	tip := New(gen).TipFor(context.Background(), "The fox ran. The fox hid.", lowStructure())

	assert.False(t, tip.Fallback)
	assert.Equal(t, "Link your ideas.", tip.Tip)
	assert.Equal(t, "After that, they left.", tip.Example)
	assert.Equal(t, rubric.Structure, tip.Focus)
	assert.Contains(t, gen.prompt, "The fox ran. The fox hid.")
	assert.Contains(t, gen.prompt, "WEAKEST AREA: structure")
}

func TestTipForFallsBack(t *testing.T) {
	for name, gen := range map[string]Generator{
		"error":     &fakeGen{err: errors.New("boom")},
		"malformed": &fakeGen{reply: "¯\\_(ツ)_/¯"},
		"none":      nil,
	} {
		tip := New(gen).TipFor(context.Background(), "Paragraph.", lowStructure())
		assert.True(t, tip.Fallback, name)
		assert.Equal(t, Fallback(rubric.Structure), tip.Tip, name)
	}
}

func TestOllamaGenerator(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"response":"{\"tip\":\"Show, don't tell.\"}"}`))
	}))
	defer srv.Close()

	gen := NewOllamaGenerator(Config{BaseURL: srv.URL, Model: "tiny"})
	reply, err := gen.Complete(context.Background(), "hello")
	require.NoError(t, err)
	tip, _, ok := ParseTip(reply)
	require.True(t, ok)
	assert.Equal(t, "Show, don't tell.", tip)
	assert.Equal(t, "tiny", body["model"])
	assert.Equal(t, "json", body["format"])
}

func TestOpenAIGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"TIP: Add dialogue."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	gen, err := NewGenerator(Config{Provider: "openai", APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	reply, err := gen.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "TIP: Add dialogue.", reply)
}

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(Config{Provider: "none"})
	assert.ErrorIs(t, err, ErrNoProvider)
	_, err = NewGenerator(Config{Provider: "openai"})
	assert.Error(t, err)
	_, err = NewGenerator(Config{Provider: "mystery"})
	assert.Error(t, err)
	g, err := NewGenerator(Config{Provider: "ollama"})
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:11434/api/generate", g.(*OllamaGenerator).endpoint)
}
