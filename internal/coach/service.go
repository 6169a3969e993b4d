package coach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rkahn/rundash/internal/cache"
	"go.uber.org/zap"
)

const (
	// notConfiguredMessage is shown when no generator credential exists.
	notConfiguredMessage = "AI Assistant requires an API key. Add OPENAI_API_KEY to your environment."
	// unavailableMessage is shown when generation fails and no prior
	// message exists to fall back to.
	unavailableMessage = "Unable to generate coaching insight right now. Check back soon."
	// errorMode marks the two user-visible failure results.
	errorMode = "error"
)

// Generator produces a completion for a system prompt and user message.
// An empty completion must be returned as an error, never as "".
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Result is the coaching message handed to the client. Cached marks
// messages served from the bounded cache without a generator call.
type Result struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
	Cached  bool   `json:"cached,omitempty"`
}

// Service ties mode detection, context assembly, the bounded message
// cache and the text generator together. One instance per process.
type Service struct {
	gen   Generator
	cache *cache.MessageCache
	clock cache.Clock
	loc   *time.Location
	log   *zap.Logger

	// mu serializes detect→validate→generate→store so concurrent
	// misses collapse into a single in-flight generation.
	mu sync.Mutex
}

// NewService creates the coaching service. gen may be nil when no
// credential is configured; every request then gets the configuration
// message without touching the provider.
func NewService(gen Generator, msgCache *cache.MessageCache, clock cache.Clock, loc *time.Location, log *zap.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{gen: gen, cache: msgCache, clock: clock, loc: loc, log: log}
}

// Message returns the coaching message for the current moment,
// generating one only when the cached entry is invalid for the detected
// mode. Every path returns a value; no failure here is fatal.
func (s *Service) Message(ctx context.Context, in ContextInput) Result {
	if s.gen == nil {
		return Result{Message: notConfiguredMessage, Mode: errorMode}
	}

	// One now snapshot feeds both mode detection and assembly, so the
	// mode can never disagree with the context about today's runs.
	now := s.clock().In(s.loc)
	mode := DetectMode(in.Activities, in.Plan, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache.Valid(mode) {
		entry := s.cache.Stale()
		s.log.Debug("coaching_cache_hit",
			zap.String("mode", string(entry.Mode)),
			zap.Time("generated_at", entry.GeneratedAt),
		)
		return Result{Message: entry.Message, Mode: string(entry.Mode), Cached: true}
	}

	assembled := BuildContext(in, now)
	userMessage := fmt.Sprintf("Mode: %s\n\nContext:\n%s", mode, assembled)

	message, err := s.gen.Generate(ctx, systemPrompt, userMessage)
	if err != nil {
		s.log.Warn("coaching_generation_failed",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		// Fall back to the previous message even if expired, annotated
		// with its original mode.
		if stale := s.cache.Stale(); stale != nil {
			return Result{Message: stale.Message, Mode: string(stale.Mode)}
		}
		return Result{Message: unavailableMessage, Mode: errorMode}
	}

	s.cache.Store(message, mode)
	s.log.Info("coaching_message_generated",
		zap.String("mode", string(mode)),
		zap.Int("context_length", len(assembled)),
	)
	return Result{Message: message, Mode: string(mode)}
}

// Refresh drops the cached message so the next request regenerates.
// It takes the same mutex as Message so an invalidation can never land
// between the validity check and the entry read.
func (s *Service) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Invalidate()
}
