package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/symposium-ai/symposium/agent"
)

// fixedParams serves one parameter set for every agent id.
type fixedParams struct {
	params agent.Params
}

func (f fixedParams) Get(string) agent.Params { return f.params }

// testClock hands out strictly increasing timestamps one second apart.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(depth int) (*Store, *testClock) {
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	params := agent.DefaultParams()
	params.MemoryDepth = depth
	s := NewStore(fixedParams{params: params}, func(o *Options) { o.Now = clock.now })
	return s, clock
}

func TestContextUnknownConversationIsEmpty(t *testing.T) {
	s, _ := newTestStore(5)
	require.Equal(t, "", s.Context("nope", "socrates", true))
}

func TestContextBoundedByMemoryDepth(t *testing.T) {
	s, _ := newTestStore(5)
	for i := 0; i < 8; i++ {
		s.Record("c1", "socrates", "q", fmt.Sprintf("answer-%d", i))
	}

	ctx := s.Context("c1", "socrates", true)
	for i := 3; i < 8; i++ {
		require.Contains(t, ctx, fmt.Sprintf("answer-%d", i), "the 5 most recent exchanges are kept")
	}
	for i := 0; i < 3; i++ {
		require.NotContains(t, ctx, fmt.Sprintf("answer-%d", i), "older exchanges are dropped")
	}
}

func TestContextAscendingTimestampOrder(t *testing.T) {
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	params := agent.DefaultParams()
	s := NewStore(fixedParams{params: params}, func(o *Options) { o.Now = clock.now })

	// Interleave two agents so reading order must come from timestamps, not
	// per-agent insertion order.
	s.Record("c1", "socrates", "q", "first")
	s.Record("c1", "nietzsche", "q", "second")
	s.Record("c1", "socrates", "q", "third")

	ctx := s.Context("c1", "socrates", true)
	first := strings.Index(ctx, "first")
	second := strings.Index(ctx, "second")
	third := strings.Index(ctx, "third")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	require.Less(t, first, second)
	require.Less(t, second, third)
}

func TestContextTiedTimestampsKeepRecordingOrder(t *testing.T) {
	// A frozen clock gives every exchange the same timestamp, so ordering
	// must come from recording order alone.
	frozen := time.Unix(1_700_000_000, 0)
	params := agent.DefaultParams()
	s := NewStore(fixedParams{params: params}, func(o *Options) {
		o.Now = func() time.Time { return frozen }
	})

	s.Record("c1", "socrates", "q", "reply-0")
	for i := 1; i < 8; i++ {
		s.Record("c1", fmt.Sprintf("agent_%d", i), "q", fmt.Sprintf("reply-%d", i))
	}

	want := s.Context("c1", "socrates", true)
	prev := -1
	for i := 0; i < 8; i++ {
		pos := strings.Index(want, fmt.Sprintf("reply-%d", i))
		require.Greater(t, pos, prev, "exchanges render in recording order")
		prev = pos
	}
	for i := 0; i < 50; i++ {
		require.Equal(t, want, s.Context("c1", "socrates", true))
	}
}

func TestContextTiedTimestampsTruncateOldestFirst(t *testing.T) {
	frozen := time.Unix(1_700_000_000, 0)
	params := agent.DefaultParams()
	params.MemoryDepth = 2
	s := NewStore(fixedParams{params: params}, func(o *Options) {
		o.Now = func() time.Time { return frozen }
	})

	for i := 0; i < 10; i++ {
		s.Record("c1", "nietzsche", "q", fmt.Sprintf("other-%d", i))
	}
	s.Record("c1", "socrates", "q", "mine")

	// The 2x-depth cut keeps the last-recorded four despite the shared
	// timestamp.
	ctx := s.Context("c1", "socrates", true)
	for i := 6; i < 10; i++ {
		require.Contains(t, ctx, fmt.Sprintf("other-%d", i))
	}
	for i := 0; i < 6; i++ {
		require.NotContains(t, ctx, fmt.Sprintf("other-%d", i))
	}
}

func TestContextExcludesOthersWhenAsked(t *testing.T) {
	s, _ := newTestStore(5)
	s.Record("c1", "socrates", "q", "own point")
	s.Record("c1", "nietzsche", "q", "other point")

	ctx := s.Context("c1", "socrates", false)
	require.Contains(t, ctx, "own point")
	require.NotContains(t, ctx, "other point")
}

func TestContextOthersBoundedByTwiceDepth(t *testing.T) {
	s, _ := newTestStore(2)
	for i := 0; i < 10; i++ {
		s.Record("c1", "nietzsche", "q", fmt.Sprintf("other-%d", i))
	}
	s.Record("c1", "socrates", "q", "mine")

	ctx := s.Context("c1", "socrates", true)
	require.Contains(t, ctx, "mine")
	count := strings.Count(ctx, "other-")
	require.Equal(t, 4, count, "others are truncated to 2x memory depth")
	require.Contains(t, ctx, "other-9")
	require.NotContains(t, ctx, "other-5")
}

func TestContextRendersDisplayNames(t *testing.T) {
	s, _ := newTestStore(5)
	s.Record("c1", "alan_watts", "q", "the universe is playful")
	ctx := s.Context("c1", "alan_watts", true)
	require.Contains(t, ctx, "Alan Watts: the universe is playful")
}

func TestContextUsesArchetypeTemplate(t *testing.T) {
	clock := &testClock{t: time.Unix(1_700_000_000, 0)}
	params := agent.DefaultParams()
	params.Archetype = "scientist"
	s := NewStore(fixedParams{params: params}, func(o *Options) { o.Now = clock.now })

	s.Record("c1", "einstein", "q", "observation")
	ctx := s.Context("c1", "einstein", true)
	require.Contains(t, ctx, "Previous exchanges:")
	require.Contains(t, ctx, "scientific methodology")
}

func TestRenderTemplateFallsBackToPhilosopher(t *testing.T) {
	out := RenderTemplate("no_such_archetype", "BLOCK")
	require.Contains(t, out, "You have previously discussed:")
	require.Contains(t, out, "BLOCK")
}

func TestClearIsIdempotent(t *testing.T) {
	s, _ := newTestStore(5)
	s.Record("c1", "socrates", "q", "a")
	s.Clear("c1")
	require.Equal(t, "", s.Context("c1", "socrates", true))
	s.Clear("c1") // second clear is a no-op
	s.Clear("never_existed")
}

func TestConcurrentRecordAndContext(t *testing.T) {
	s, _ := newTestStore(5)
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Record("c1", fmt.Sprintf("agent_%d", i%3), "q", "r")
			_ = s.Context("c1", "agent_0", true)
		}(i)
	}
	wg.Wait()
	require.NotEqual(t, "", s.Context("c1", "agent_0", true))
}
