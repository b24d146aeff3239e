package csinsight

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cognicore/csinsight/internal/llm"
)

// Mode is the analysis flavour chosen at the start of a chat.
type Mode string

const (
	ModeNone    Mode = "none"
	ModeInitial Mode = "initial"
	ModeSummary Mode = "summary"
)

// History bounds.
const (
	MaxHistory    = 20
	ContextWindow = 10
)

const (
	minPatternLen  = 4
	maxInsights    = 5
	insightsHeader = "Based on our interactions, I've learned these are effective approaches:"
)

// PatternStats counts how often a word appeared in a successful or failed
// interaction.
type PatternStats struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Session is the per-user conversation state. All methods are safe for
// concurrent use.
type Session struct {
	ID string

	// work serialises dataset loads against analysis.
	work sync.Mutex

	mu       sync.Mutex
	mode     Mode
	final    bool
	prompt   string
	history  []llm.Message
	patterns map[string]PatternStats
}

// NewSession returns an empty session with a random ID.
func NewSession() *Session {
	return newSession(uuid.NewString())
}

func newSession(id string) *Session {
	return &Session{
		ID:       id,
		mode:     ModeNone,
		patterns: make(map[string]PatternStats),
	}
}

// Mode returns the current analysis mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Prompt returns the finalized prompt, or "" when none is finalized.
func (s *Session) Prompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.final {
		return ""
	}
	return s.prompt
}

// PromptFinalized reports whether a complete prompt has been produced.
func (s *Session) PromptFinalized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.final
}

// History returns a copy of the conversation history.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Message(nil), s.history...)
}

func (s *Session) setMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.final = false
	s.prompt = ""
	s.mu.Unlock()
}

// SetPrompt finalizes prompt directly, bypassing the chat. An empty prompt
// clears it.
func (s *Session) SetPrompt(prompt string) {
	if strings.TrimSpace(prompt) == "" {
		s.mu.Lock()
		s.final = false
		s.prompt = ""
		s.mu.Unlock()
		return
	}
	s.finalize(prompt)
}

func (s *Session) finalize(prompt string) {
	s.mu.Lock()
	s.final = true
	s.prompt = prompt
	s.mu.Unlock()
}

// appendHistory records msg and trims to MaxHistory, returning the context
// window that preceded it.
func (s *Session) appendHistory(msg llm.Message) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	prior := s.history
	if len(prior) > ContextWindow-1 {
		prior = prior[len(prior)-(ContextWindow-1):]
	}
	window := append([]llm.Message(nil), prior...)
	s.history = append(s.history, msg)
	if len(s.history) > MaxHistory {
		s.history = append([]llm.Message(nil), s.history[len(s.history)-MaxHistory:]...)
	}
	return window
}

func (s *Session) clearHistory() {
	s.mu.Lock()
	s.history = nil
	s.final = false
	s.prompt = ""
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.history = nil
	s.mode = ModeNone
	s.final = false
	s.prompt = ""
	s.patterns = make(map[string]PatternStats)
	s.mu.Unlock()
}

// LearnFromInteraction counts every word longer than three characters in
// input as a success or a failure.
func (s *Session) LearnFromInteraction(input string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range strings.Fields(strings.ToLower(input)) {
		if len(w) < minPatternLen {
			continue
		}
		st := s.patterns[w]
		if success {
			st.Success++
		} else {
			st.Failure++
		}
		s.patterns[w] = st
	}
}

// LearnedInsights lists up to five words whose successes outnumber their
// failures, most successful first. It returns "" when there are none.
func (s *Session) LearnedInsights() string {
	s.mu.Lock()
	type pattern struct {
		word  string
		count int
	}
	var ps []pattern
	for w, st := range s.patterns {
		if st.Success > st.Failure {
			ps = append(ps, pattern{w, st.Success})
		}
	}
	s.mu.Unlock()

	if len(ps) == 0 {
		return ""
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].count != ps[j].count {
			return ps[i].count > ps[j].count
		}
		return ps[i].word < ps[j].word
	})
	if len(ps) > maxInsights {
		ps = ps[:maxInsights]
	}
	lines := []string{insightsHeader}
	for _, p := range ps {
		lines = append(lines, fmt.Sprintf("- Using '%s' has been successful %d times", p.word, p.count))
	}
	return strings.Join(lines, "\n")
}

// Registry limits.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// SessionOptions bounds a Sessions registry. Zero values select defaults.
type SessionOptions struct {
	// TTL evicts sessions idle for longer than this.
	TTL time.Duration
	// Max evicts the least recently used session once exceeded.
	Max int
	// OnEvict runs for every evicted ID, outside the registry lock.
	OnEvict func(id string)
	Now     func() time.Time
}

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

// Sessions is a bounded registry of live sessions keyed by ID.
type Sessions struct {
	mu      sync.Mutex
	byID    map[string]*sessionEntry
	ttl     time.Duration
	max     int
	onEvict func(id string)
	now     func() time.Time
}

// NewSessions returns an empty registry.
func NewSessions(opts SessionOptions) *Sessions {
	r := &Sessions{
		byID:    make(map[string]*sessionEntry),
		ttl:     opts.TTL,
		max:     opts.Max,
		onEvict: opts.OnEvict,
		now:     opts.Now,
	}
	if r.ttl <= 0 {
		r.ttl = DefaultSessionTTL
	}
	if r.max <= 0 {
		r.max = DefaultMaxSessions
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Get returns the session for id, creating it on first use. An empty id
// creates a session with a fresh ID. Idle and surplus sessions are evicted
// on the way.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	now := r.now()
	evicted := r.expire(now)
	if id == "" {
		id = uuid.NewString()
	}
	e, ok := r.byID[id]
	if !ok {
		e = &sessionEntry{session: newSession(id)}
		r.byID[id] = e
	}
	e.lastUsed = now
	evicted = append(evicted, r.trim(id)...)
	r.mu.Unlock()

	r.evicted(evicted)
	return e.session
}

// Sweep evicts idle sessions and returns how many were dropped.
func (r *Sessions) Sweep() int {
	r.mu.Lock()
	evicted := r.expire(r.now())
	r.mu.Unlock()
	r.evicted(evicted)
	return len(evicted)
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Sessions) expire(now time.Time) []string {
	var out []string
	for id, e := range r.byID {
		if now.Sub(e.lastUsed) > r.ttl {
			delete(r.byID, id)
			out = append(out, id)
		}
	}
	return out
}

// trim drops least recently used sessions other than keep until the
// registry fits.
func (r *Sessions) trim(keep string) []string {
	var out []string
	for len(r.byID) > r.max {
		oldest := ""
		var at time.Time
		for id, e := range r.byID {
			if id == keep {
				continue
			}
			if oldest == "" || e.lastUsed.Before(at) || (e.lastUsed.Equal(at) && id < oldest) {
				oldest, at = id, e.lastUsed
			}
		}
		if oldest == "" {
			break
		}
		delete(r.byID, oldest)
		out = append(out, oldest)
	}
	return out
}

func (r *Sessions) evicted(ids []string) {
	if r.onEvict == nil {
		return
	}
	for _, id := range ids {
		r.onEvict(id)
	}
}
