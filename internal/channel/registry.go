package channel

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the channels the gateway accepts traffic for
type Registry struct {
	mu       sync.RWMutex
	channels map[Channel]bool
}

// NewRegistry creates a registry for the given channels
func NewRegistry(channels []Channel) *Registry {
	set := make(map[Channel]bool, len(channels))
	for _, c := range channels {
		set[c] = true
	}
	return &Registry{
		channels: set,
	}
}

// Get looks up an enabled channel by name
func (r *Registry) Get(name string) (Channel, error) {
	c, err := Parse(name)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.channels[c] {
		return "", fmt.Errorf("channel '%s' not enabled", name)
	}
	return c, nil
}

// Has reports whether the channel is enabled
func (r *Registry) Has(c Channel) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.channels[c]
}

// List returns the enabled channels sorted by name
func (r *Registry) List() []Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Channel, 0, len(r.channels))
	for c := range r.channels {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })

	return list
}

// Count returns the number of enabled channels
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.channels)
}
