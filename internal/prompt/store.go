package prompt

import (
	"strings"
	"unicode"
)

// Presets are the canned instructions offered for one-click insertion.
var Presets = []string{
	"Clear the room of all furniture",
	"Clear the room of furniture and stage as a modern living room",
	"Clear the room of furniture and stage as a modern bedroom",
	"Declutter this room",
	"Stage as a minimalist space",
	"Add modern decor",
}

// Store maps image indices to their current editing instruction. It lives
// as long as the owning batch and is cleared when the batch changes.
type Store struct {
	prompts map[int]string
}

func NewStore() *Store {
	return &Store{prompts: make(map[int]string)}
}

// Get returns the instruction for index, or "" if unset.
func (s *Store) Get(index int) string {
	return s.prompts[index]
}

func (s *Store) Set(index int, text string) {
	s.prompts[index] = text
}

// AppendPreset concatenates phrase onto the current instruction, inserting
// one separating space when the text is non-empty and does not already end
// with whitespace. Repeated application keeps appending; presets are never
// deduplicated.
func (s *Store) AppendPreset(index int, phrase string) {
	current := s.prompts[index]
	if current != "" && !endsWithSpace(current) {
		current += " "
	}
	s.prompts[index] = current + phrase
}

// IsEmpty reports whether the instruction is unset or whitespace-only.
func (s *Store) IsEmpty(index int) bool {
	return strings.TrimSpace(s.prompts[index]) == ""
}

func (s *Store) Len() int {
	return len(s.prompts)
}

func (s *Store) Reset() {
	s.prompts = make(map[int]string)
}

func endsWithSpace(text string) bool {
	runes := []rune(text)
	return unicode.IsSpace(runes[len(runes)-1])
}
