package channel

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		input    string
		expected Channel
		wantErr  bool
	}{
		{"facebook", Facebook, false},
		{"Instagram", Instagram, false},
		{"  threads ", Threads, false},
		{"twitter", "", true},
		{"", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := Parse(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error, got %q", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("Parse(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestParse_ErrorListsSupported(t *testing.T) {
	_, err := Parse("myspace")
	if err == nil {
		t.Fatal("Expected error for unknown channel")
	}
	if !strings.Contains(err.Error(), "facebook, instagram, threads") {
		t.Errorf("Expected supported channels in error, got: %v", err)
	}
}

func TestParseList_DropsDuplicatesAndBlanks(t *testing.T) {
	channels, err := ParseList([]string{"facebook", "", "FACEBOOK", "threads"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(channels) != 2 {
		t.Fatalf("Expected 2 channels, got %d: %v", len(channels), channels)
	}
	if channels[0] != Facebook || channels[1] != Threads {
		t.Errorf("Expected [facebook threads], got %v", channels)
	}
}

func TestParseList_Invalid(t *testing.T) {
	if _, err := ParseList([]string{"facebook", "nope"}); err == nil {
		t.Error("Expected error for invalid channel in list")
	}
}

func TestChannelPath(t *testing.T) {
	if Instagram.Path() != "/instagram" {
		t.Errorf("Expected /instagram, got %s", Instagram.Path())
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry([]Channel{Threads, Facebook})

	if registry.Count() != 2 {
		t.Errorf("Expected 2 channels, got %d", registry.Count())
	}

	list := registry.List()
	if len(list) != 2 || list[0] != Facebook || list[1] != Threads {
		t.Errorf("Expected sorted [facebook threads], got %v", list)
	}

	if !registry.Has(Facebook) {
		t.Error("Expected facebook to be enabled")
	}
	if registry.Has(Instagram) {
		t.Error("Expected instagram to be disabled")
	}

	if _, err := registry.Get("instagram"); err == nil {
		t.Error("Expected error getting disabled channel")
	}
	c, err := registry.Get("threads")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if c != Threads {
		t.Errorf("Expected threads, got %s", c)
	}
}
