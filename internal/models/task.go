package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTextLength is the longest task text accepted, in characters.
const MaxTextLength = 500

// Task represents a single entry in one of the two columns.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Ignored   bool   `json:"ignored"` // excluded from the ratio, still shown
	Order     int    `json:"order"`
}

// ValidateText checks that text is usable as task content.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text is required")
	}

	if utf8.RuneCountInString(text) > MaxTextLength {
		return fmt.Errorf("text must be %d characters or fewer", MaxTextLength)
	}

	return nil
}

// Counted returns true if the task contributes to the ratio statistic.
func (t *Task) Counted() bool {
	return !t.Ignored
}
