package grid

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleRunes bounds the center goal and theme titles.
	MaxTitleRunes = 30
	// MaxDetailRunes bounds a single action item.
	MaxDetailRunes = 50
	// MinDetails is the number of filled details required to complete a grid
	// (four per theme on average).
	MinDetails = 32
)

type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Reason }

// ValidationErrors carries every problem found by Validate.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	if len(es) == 0 {
		return "grid: valid"
	}
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return "grid: invalid: " + strings.Join(parts, "; ")
}

// Err returns es as an error, or nil when empty.
func (es ValidationErrors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// Validate reports why g cannot be completed yet.
func Validate(g Grid) ValidationErrors {
	var out ValidationErrors

	center := strings.TrimSpace(g.Center)
	switch {
	case center == "":
		out = append(out, ValidationError{Field: "center", Reason: "required"})
	case utf8.RuneCountInString(center) > MaxTitleRunes:
		out = append(out, ValidationError{Field: "center", Reason: tooLong(MaxTitleRunes)})
	}

	details := 0
	for t, th := range g.Themes {
		field := fmt.Sprintf("themes[%d].title", t)
		title := strings.TrimSpace(th.Title)
		switch {
		case title == "":
			out = append(out, ValidationError{Field: field, Reason: "required"})
		case utf8.RuneCountInString(title) > MaxTitleRunes:
			out = append(out, ValidationError{Field: field, Reason: tooLong(MaxTitleRunes)})
		}
		for d, s := range th.Details {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			details++
			if utf8.RuneCountInString(s) > MaxDetailRunes {
				out = append(out, ValidationError{
					Field:  fmt.Sprintf("themes[%d].details[%d]", t, d),
					Reason: tooLong(MaxDetailRunes),
				})
			}
		}
	}
	if details < MinDetails {
		out = append(out, ValidationError{
			Field:  "details",
			Reason: fmt.Sprintf("at least %d details required (have %d)", MinDetails, details),
		})
	}
	return out
}

func tooLong(n int) string { return fmt.Sprintf("longer than %d characters", n) }
