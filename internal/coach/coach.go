package coach

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"writing_coach/internal/metrics"
	"writing_coach/internal/prompts"
	"writing_coach/internal/rubric"
)

// Tip is coaching for one paragraph. Model output never supplies offsets;
// Start and End come from the paragraph that triggered the tip.
type Tip struct {
	Paragraph int              `json:"paragraph"`
	Start     int              `json:"start"`
	End       int              `json:"end"`
	Version   int64            `json:"version"`
	Focus     rubric.Criterion `json:"focus"`
	Tip       string           `json:"tip"`
	Example   string           `json:"example,omitempty"`
	Fallback  bool             `json:"fallback"`
	CreatedAt time.Time        `json:"created_at"`
}

var encouragement = map[rubric.Criterion]string{
	rubric.Ideas:     "Great start! Try adding an unexpected detail or a question your reader will want answered.",
	rubric.Structure: "Nice work! Link this paragraph to the next with a transition such as \"Meanwhile\" or \"After that\".",
	rubric.Language:  "Good effort! Swap one simple word for a stronger one, like \"whispered\" instead of \"said\".",
	rubric.Mechanics: "Well done for finishing the paragraph! Read it aloud and check each sentence ends with the right punctuation.",
}

const maxTipRunes = 400

type Option func(*Coach)

func WithLogger(l *slog.Logger) Option      { return func(c *Coach) { c.logger = l } }
func WithMetrics(m *metrics.Metrics) Option { return func(c *Coach) { c.metrics = m } }
func WithTimeout(d time.Duration) Option    { return func(c *Coach) { c.timeout = d } }

// Coach turns a completed paragraph into a tip. With a nil Generator every
// tip is a fallback.
type Coach struct {
	gen     Generator
	logger  *slog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
	now     func() time.Time
}

func New(gen Generator, opts ...Option) *Coach {
	c := &Coach{gen: gen, timeout: 30 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Coach) TipFor(ctx context.Context, paragraph string, score rubric.Score) Tip {
	focus := score.Weakest()
	tip := Tip{Focus: focus, CreatedAt: c.now()}

	if c.gen != nil {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		reply, err := c.gen.Complete(cctx, prompts.ParagraphTipPrompt(paragraph, prompts.Scores{
			Ideas:     score.Ideas.Score,
			Structure: score.Structure.Score,
			Language:  score.Language.Score,
			Mechanics: score.Mechanics.Score,
			Weakest:   string(focus),
		}))
		cancel()
		if err != nil {
			c.logger.WarnContext(ctx, "coaching model failed", "stage", "coach", "error", err)
		} else if text, example, ok := ParseTip(reply); ok {
			tip.Tip, tip.Example = text, example
			c.metrics.CoachingTip(false)
			return tip
		} else {
			c.logger.DebugContext(ctx, "unparseable coaching reply", "stage", "coach", "reply", snippet(reply))
		}
	}

	tip.Tip = Fallback(focus)
	tip.Fallback = true
	c.metrics.CoachingTip(true)
	return tip
}

func Fallback(focus rubric.Criterion) string {
	if msg, ok := encouragement[focus]; ok {
		return msg
	}
	return "Keep writing! Every paragraph you finish makes your story stronger."
}

type tipReply struct {
	Tip            string `json:"tip"`
	ExampleRewrite string `json:"example_rewrite"`
}

var (
	tipLine     = regexp.MustCompile(`(?im)^\s*\**\s*tip\s*\**\s*:\s*(.+)$`)
	exampleLine = regexp.MustCompile(`(?im)^\s*\**\s*example(?:[ _]rewrite)?\s*\**\s*:\s*(.+)$`)
)

// ParseTip reads a JSON object reply, then a TIP:/EXAMPLE: record. ok is false
// when neither yields a tip.
func ParseTip(reply string) (tip, example string, ok bool) {
	if raw := extractJSONObject(reply); raw != "" {
		var r tipReply
		if err := json.Unmarshal([]byte(raw), &r); err == nil {
			if t := clean(r.Tip); t != "" {
				return t, clean(r.ExampleRewrite), true
			}
		}
	}
	if m := tipLine.FindStringSubmatch(reply); m != nil {
		if t := clean(m[1]); t != "" {
			var ex string
			if em := exampleLine.FindStringSubmatch(reply); em != nil {
				ex = clean(em[1])
			}
			return t, ex, true
		}
	}
	return "", "", false
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"*")
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxTipRunes {
		s = string(r[:maxTipRunes]) + "..."
	}
	return s
}

func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Fenced markdown payloads first.
	if strings.HasPrefix(s, "```") {
		lines := strings.Split(s, "\n")
		if len(lines) >= 3 {
			s = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 220 {
		return s[:220] + "..."
	}
	return s
}
