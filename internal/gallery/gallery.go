// Package gallery stores named drawings on disk and serves them over HTTP.
package gallery

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned for unknown drawing IDs.
	ErrNotFound = errors.New("drawing not found")
	// ErrInvalidName is returned for blank or over-long names.
	ErrInvalidName = errors.New("invalid drawing name")
	// ErrInvalidTag is returned for malformed tags or too many of them.
	ErrInvalidTag = errors.New("invalid drawing tag")
)

// Validation limits.
const (
	MaxNameLength = 30
	MaxTags       = 5
	MaxTagLength  = 15
)

// Drawing describes one stored image.
type Drawing struct {
	ID      string    `yaml:"id" json:"id"`
	Name    string    `yaml:"name" json:"name"`
	Tags    []string  `yaml:"tags,omitempty" json:"tags"`
	Created time.Time `yaml:"created" json:"created"`
	Width   int       `yaml:"width" json:"width"`
	Height  int       `yaml:"height" json:"height"`
}

// HasTag reports whether d carries tag, compared case-insensitively.
func (d Drawing) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// ValidateName checks a drawing name after trimming.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return fmt.Errorf("%w: %d characters, at most %d", ErrInvalidName, n, MaxNameLength)
	}
	return nil
}

// ValidateTags checks the tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("%w: %d tags, at most %d", ErrInvalidTag, len(tags), MaxTags)
	}
	for _, t := range tags {
		if t == "" || utf8.RuneCountInString(t) > MaxTagLength {
			return fmt.Errorf("%w: %q must be 1 to %d characters", ErrInvalidTag, t, MaxTagLength)
		}
		for _, r := range t {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return fmt.Errorf("%w: %q must be alphanumeric", ErrInvalidTag, t)
			}
		}
	}
	return nil
}

// ParseTags splits a comma separated tag list, dropping empty entries.
func ParseTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// EventType names a gallery change.
type EventType string

const (
	EventSaved   EventType = "saved"
	EventDeleted EventType = "deleted"
)

// Event is published after every change to a store.
type Event struct {
	Type    EventType `json:"type"`
	Drawing Drawing   `json:"drawing"`
}
