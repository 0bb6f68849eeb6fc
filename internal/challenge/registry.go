package challenge

import (
	"fmt"
	"sync"

	"github.com/amirbiron/markdown-trainer/internal/domain"
)

// Registry provides read-only access to the challenge catalog. Unknown
// topics yield empty results, not errors.
type Registry struct {
	loader *Loader

	mu      sync.RWMutex
	order   []domain.Topic
	names   map[domain.Topic]string
	byTopic map[domain.Topic][]*domain.Challenge
	byID    map[string]*domain.Challenge
	loaded  bool
}

// NewRegistry creates a registry backed by the given loader.
func NewRegistry(loader *Loader) *Registry {
	return &Registry{
		loader:  loader,
		names:   make(map[domain.Topic]string),
		byTopic: make(map[domain.Topic][]*domain.Challenge),
		byID:    make(map[string]*domain.Challenge),
	}
}

// Load reads the whole catalog into memory.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sets, err := r.loader.LoadCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	for _, set := range sets {
		if _, ok := r.names[set.Topic]; ok {
			return fmt.Errorf("duplicate topic %s", set.Topic)
		}
		r.order = append(r.order, set.Topic)
		r.names[set.Topic] = set.Name
		r.byTopic[set.Topic] = set.Challenges
		for _, ch := range set.Challenges {
			if _, ok := r.byID[ch.ID]; ok {
				return fmt.Errorf("duplicate challenge id %s", ch.ID)
			}
			r.byID[ch.ID] = ch
		}
	}

	r.loaded = true
	return nil
}

// ByTopic returns the topic's challenges in catalog order, or an empty slice
// for an unknown topic.
func (r *Registry) ByTopic(topic domain.Topic) []*domain.Challenge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byTopic[topic]
	out := make([]*domain.Challenge, len(src))
	copy(out, src)
	return out
}

// ByID returns a single challenge by its identifier.
func (r *Registry) ByID(id string) (*domain.Challenge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.byID[id]
	return ch, ok
}

// Topics returns all topic keys in catalog order.
func (r *Registry) Topics() []domain.Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Topic, len(r.order))
	copy(out, r.order)
	return out
}

// DisplayName returns the human-readable topic name, falling back to the
// topic key itself.
func (r *Registry) DisplayName(topic domain.Topic) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.names[topic]; ok {
		return name
	}
	return string(topic)
}
