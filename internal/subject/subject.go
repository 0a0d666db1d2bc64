// Package subject defines the Olympiad subjects a learner can prepare for.
package subject

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSubject is returned by Parse for names that match no subject.
var ErrUnknownSubject = errors.New("unknown olympiad subject")

// Subject is an Olympiad discipline. The string value is the display name.
type Subject string

const (
	Mathematics Subject = "Mathematics"
	Physics     Subject = "Physics"
	Chemistry   Subject = "Chemistry"
	Informatics Subject = "Informatics"
)

// All returns every subject in display order.
func All() []Subject {
	return []Subject{Mathematics, Physics, Chemistry, Informatics}
}

var aliases = map[string]Subject{
	"mathematics": Mathematics,
	"math":        Mathematics,
	"maths":       Mathematics,
	"physics":     Physics,
	"phys":        Physics,
	"chemistry":   Chemistry,
	"chem":        Chemistry,
	"informatics": Informatics,
	"info":        Informatics,
	"cs":          Informatics,
}

// Parse resolves a subject from its display name or a short alias,
// ignoring case and surrounding whitespace.
func Parse(s string) (Subject, error) {
	if sub, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return sub, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSubject, s)
}

// Valid reports whether s is one of the defined subjects.
func (s Subject) Valid() bool {
	switch s {
	case Mathematics, Physics, Chemistry, Informatics:
		return true
	}
	return false
}

// Slug returns a lowercase identifier suitable for IDs and cache keys.
func (s Subject) Slug() string {
	return strings.ToLower(string(s))
}

func (s Subject) String() string {
	return string(s)
}
