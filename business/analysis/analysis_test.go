package analysis_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/superfeelapi/goRaphael/business/analysis"
	"github.com/superfeelapi/goRaphael/business/policy"
	"github.com/superfeelapi/goRaphael/foundation/bounded"
	"github.com/superfeelapi/goRaphael/foundation/external/brain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want analysis.Result
	}{
		{
			name: "strict json",
			raw:  `{"response": "That's really hard.", "emotion": "sad"}`,
			want: analysis.Result{Emotion: policy.Sad, Response: "That's really hard."},
		},
		{
			name: "json with upper case emotion",
			raw:  `{"response": "Great news!", "emotion": "HAPPY"}`,
			want: analysis.Result{Emotion: policy.Happy, Response: "Great news!"},
		},
		{
			name: "unknown emotion coerced",
			raw:  `{"response": "Hmm.", "emotion": "nostalgic"}`,
			want: analysis.Result{Emotion: policy.Neutral, Response: "Hmm."},
		},
		{
			name: "missing response key",
			raw:  `{"emotion": "angry"}`,
			want: analysis.Result{Emotion: policy.Angry, Response: "I'm here to help."},
		},
		{
			name: "non string response",
			raw:  `{"response": 42, "emotion": "happy"}`,
			want: analysis.Result{Emotion: policy.Happy, Response: ""},
		},
		{
			name: "wrapped in prose",
			raw:  "Sure! Here you go:\n{\"response\": \"Take a deep breath.\", \"emotion\": \"Fearful\",}",
			want: analysis.Result{Emotion: policy.Fearful, Response: "Take a deep breath."},
		},
		{
			name: "plain text",
			raw:  "  I am not sure what you mean.  ",
			want: analysis.Result{Emotion: policy.Neutral, Response: "I am not sure what you mean."},
		},
		{
			name: "response field only",
			raw:  `"response": "Okay then"`,
			want: analysis.Result{Emotion: policy.Neutral, Response: "Okay then"},
		},
		{
			name: "json null",
			raw:  "null",
			want: analysis.Degraded(nil),
		},
		{
			name: "json string",
			raw:  `"just a string"`,
			want: analysis.Degraded(nil),
		},
		{
			name: "json array",
			raw:  "[1,2]",
			want: analysis.Degraded(nil),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := analysis.Parse(tt.raw); got != tt.want {
				t.Fatalf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPrompt(t *testing.T) {
	p := analysis.Prompt("I failed my exam")
	for _, want := range []string{`"response"`, `"emotion"`, `User says: "I failed my exam"`, "fearful"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

type fakeBrain struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	block   chan struct{}
}

func (b *fakeBrain) Ask(ctx context.Context, prompt string) (string, error) {
	b.mu.Lock()
	b.prompts = append(b.prompts, prompt)
	b.mu.Unlock()
	if b.block != nil {
		<-b.block
	}
	return b.reply, b.err
}

type firingClock struct{}

func (firingClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func TestAnalyzer(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		t.Parallel()
		brain := &fakeBrain{reply: `{"response": "That's really hard.", "emotion": "sad"}`}
		a := analysis.NewAnalyzer(brain, time.Second, zaptest.NewLogger(t).Sugar())

		got, err := a.Analyze(context.Background(), "I failed my exam")
		if err != nil {
			t.Fatal(err)
		}
		want := analysis.Result{Emotion: policy.Sad, Response: "That's really hard."}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
		if len(brain.prompts) != 1 || !strings.Contains(brain.prompts[0], "I failed my exam") {
			t.Fatalf("unexpected prompts: %q", brain.prompts)
		}
	})

	t.Run("backend error degrades", func(t *testing.T) {
		t.Parallel()
		brain := &fakeBrain{err: errors.New("rate limited")}
		a := analysis.NewAnalyzer(brain, time.Second, zaptest.NewLogger(t).Sugar())

		got, err := a.Analyze(context.Background(), "hello")
		if err != nil {
			t.Fatal(err)
		}
		if got != analysis.Degraded(nil) {
			t.Fatalf("got %+v, want degraded result", got)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		brain := &fakeBrain{block: make(chan struct{})}
		defer close(brain.block)
		a := analysis.NewAnalyzer(brain, time.Second, zaptest.NewLogger(t).Sugar()).WithClock(firingClock{})

		_, err := a.Analyze(context.Background(), "hello")
		if !errors.Is(err, bounded.ErrTimeout) {
			t.Fatalf("got %v, want ErrTimeout", err)
		}
	})
}

// stallOnceCompleter hangs its first request until the caller gives up, then
// answers every later request at once.
type stallOnceCompleter struct {
	mu    sync.Mutex
	calls int
}

func (c *stallOnceCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.mu.Unlock()

	if first {
		<-ctx.Done()
		return openai.ChatCompletionResponse{}, ctx.Err()
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: `{"response":"ok","emotion":"happy"}`}},
		},
	}, nil
}

func TestAnalyzer_AbandonedCallDoesNotStarveLaterTurns(t *testing.T) {
	b := brain.NewWithClient(&stallOnceCompleter{}, brain.Config{})

	// The abandoned call finishes after the test body, so it logs nowhere.
	a := analysis.NewAnalyzer(b, 50*time.Millisecond, zap.NewNop().Sugar())

	if _, err := a.Analyze(context.Background(), "hello"); !errors.Is(err, bounded.ErrTimeout) {
		t.Fatalf("first turn: got %v, want ErrTimeout", err)
	}

	want := analysis.Result{Emotion: policy.Happy, Response: "ok"}
	for turn := 2; turn <= 4; turn++ {
		got, err := a.Analyze(context.Background(), "hello again")
		if err == nil {
			if got != want {
				t.Fatalf("turn %d: got %+v, want %+v", turn, got, want)
			}
			return
		}
		if !errors.Is(err, bounded.ErrTimeout) {
			t.Fatalf("turn %d: unexpected error %v", turn, err)
		}
	}
	t.Fatal("the stalled call kept every later turn from getting a reply")
}
