package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writing_coach/internal/issue"
	"writing_coach/internal/pipeline"
	"writing_coach/internal/segment"
)

// gateRunner reports each call on calls and, when release is set, blocks
// until the test lets it finish.
type gateRunner struct {
	calls   chan issue.Snapshot
	release chan struct{}
	runs    int32
}

func newGate(block bool) *gateRunner {
	g := &gateRunner{calls: make(chan issue.Snapshot, 16)}
	if block {
		g.release = make(chan struct{})
	}
	return g
}

func (g *gateRunner) Run(ctx context.Context, snap issue.Snapshot) pipeline.Result {
	atomic.AddInt32(&g.runs, 1)
	g.calls <- snap
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
		}
	}
	is := issue.New(issue.SourceSpelling, "misspelling", 0, 1, issue.KindSpelling, issue.SeverityError, snap.Text())
	is.Version = snap.Version()
	return pipeline.Result{Version: snap.Version(), Issues: []issue.Issue{is}}
}

func committedVersion(o *Orchestrator) int64 {
	res, ok := o.Committed()
	if !ok {
		return -1
	}
	return res.Version
}

func TestDebounceCoalescesEdits(t *testing.T) {
	g := newGate(false)
	o := New(g, WithDebounce(40*time.Millisecond))
	t.Cleanup(o.Close)

	for _, text := range []string{"t", "te", "teh", "teh ", "teh c"} {
		o.Update(text)
	}
	assert.Equal(t, Scheduled, o.State())

	require.Eventually(t, func() bool { return committedVersion(o) == 5 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&g.runs))
	assert.Equal(t, Idle, o.State())
}

func TestStaleRunIsDiscarded(t *testing.T) {
	g := newGate(true)
	o := New(g, WithDebounce(time.Hour))
	t.Cleanup(o.Close)

	o.Update("teh")
	o.Flush()
	first := <-g.calls
	require.Equal(t, int64(1), first.Version())
	assert.Equal(t, Running, o.State())

	o.Update("teh cat")
	g.release <- struct{}{}

	require.Eventually(t, func() bool { return o.State() == Scheduled }, time.Second, 5*time.Millisecond)
	_, ok := o.Committed()
	assert.False(t, ok, "a result for version 1 must not be committed at version 2")

	o.Flush()
	second := <-g.calls
	require.Equal(t, int64(2), second.Version())
	g.release <- struct{}{}

	require.Eventually(t, func() bool { return committedVersion(o) == 2 }, time.Second, 5*time.Millisecond)
	res, _ := o.Committed()
	assert.Equal(t, "teh cat", res.Issues[0].Message)
}

func TestElapsedDebounceRerunsImmediatelyAfterStaleRun(t *testing.T) {
	g := newGate(true)
	o := New(g, WithDebounce(20*time.Millisecond))
	t.Cleanup(o.Close)

	o.Update("a")
	<-g.calls
	o.Update("ab")
	time.Sleep(80 * time.Millisecond)
	g.release <- struct{}{}

	select {
	case snap := <-g.calls:
		assert.Equal(t, int64(2), snap.Version())
	case <-time.After(time.Second):
		t.Fatal("expected an immediate rerun for the latest version")
	}
	g.release <- struct{}{}
	require.Eventually(t, func() bool { return committedVersion(o) == 2 }, time.Second, 5*time.Millisecond)
}

func TestCommittedNeverMixesVersions(t *testing.T) {
	g := newGate(false)
	var mu sync.Mutex
	var commits []pipeline.Result
	o := New(g, WithDebounce(2*time.Millisecond), OnCommit(func(r pipeline.Result) {
		mu.Lock()
		commits = append(commits, r)
		mu.Unlock()
	}))
	t.Cleanup(o.Close)

	text := ""
	for i := 0; i < 40; i++ {
		text += "x"
		o.Update(text)
		time.Sleep(time.Millisecond)
	}
	require.Eventually(t, func() bool { return committedVersion(o) == 40 }, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	var last int64
	for _, c := range commits {
		assert.Greater(t, c.Version, last, "commits must be monotonic")
		last = c.Version
		for _, is := range c.Issues {
			assert.Equal(t, c.Version, is.Version)
		}
	}
}

func TestParagraphCallbackFiresOnce(t *testing.T) {
	var mu sync.Mutex
	var got [][]segment.Span
	o := New(newGate(false), WithDebounce(time.Hour), OnParagraphs(func(_ issue.Snapshot, spans []segment.Span) {
		mu.Lock()
		got = append(got, spans)
		mu.Unlock()
	}))
	t.Cleanup(o.Close)

	o.Update("Once there was a fox")
	o.Update("Once there was a fox.")
	o.Update("Once there was a fox.\n")
	o.Update("Once there was a fox.\n\n")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, segment.Span{Start: 0, End: 21, Index: 0}, got[0][0])
}

func TestReplaceDropsCommittedResult(t *testing.T) {
	g := newGate(false)
	o := New(g, WithDebounce(time.Hour))
	t.Cleanup(o.Close)

	o.Update("teh")
	o.Flush()
	require.Eventually(t, func() bool { return committedVersion(o) == 1 }, time.Second, 5*time.Millisecond)

	snap := o.Replace("the")
	assert.Equal(t, int64(2), snap.Version())
	_, ok := o.Committed()
	assert.False(t, ok)
}

func TestCloseCancelsInFlightRun(t *testing.T) {
	g := newGate(true)
	o := New(g, WithDebounce(time.Hour))

	o.Update("a")
	o.Flush()
	<-g.calls

	done := make(chan struct{})
	go func() {
		o.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
	_, ok := o.Committed()
	assert.False(t, ok)

	snap := o.Update("ab")
	assert.Equal(t, int64(1), snap.Version())
}
