package channel

import (
	"fmt"
	"strings"
)

// Channel identifies an upstream platform whose webhook traffic is accepted
// at its own path (/facebook, /instagram, /threads).
type Channel string

const (
	Facebook  Channel = "facebook"
	Instagram Channel = "instagram"
	Threads   Channel = "threads"
)

// All returns every supported channel in a stable order
func All() []Channel {
	return []Channel{Facebook, Instagram, Threads}
}

// Parse converts a name into a Channel. Matching is case-insensitive and
// ignores surrounding whitespace.
func Parse(name string) (Channel, error) {
	candidate := Channel(strings.ToLower(strings.TrimSpace(name)))
	for _, c := range All() {
		if c == candidate {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown channel '%s' (supported: %s)", name, strings.Join(Names(All()), ", "))
}

// ParseList parses a list of channel names, dropping duplicates.
func ParseList(names []string) ([]Channel, error) {
	seen := make(map[Channel]bool, len(names))
	channels := make([]Channel, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		channels = append(channels, c)
	}
	return channels, nil
}

// Path returns the HTTP route for the channel
func (c Channel) Path() string {
	return "/" + string(c)
}

func (c Channel) String() string {
	return string(c)
}

// Names converts channels to their string names
func Names(channels []Channel) []string {
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = string(c)
	}
	return names
}
