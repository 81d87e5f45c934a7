// Package validation holds input rules for circle content and request payloads.
package validation

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 5000
	MaxTags              = 5
	MaxTagLength         = 32
	MaxIntentLength      = 2000
	MaxPostLength        = 4000

	// MaxCircleLimit is the largest capacity or duration the INTEGER columns hold.
	MaxCircleLimit = math.MaxInt32
)

// ValidateCircleText checks a circle title and description.
func ValidateCircleText(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return errors.New("description is required")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// NormalizeTags trims tags, drops blanks and case-insensitive duplicates,
// and rejects more than MaxTags distinct tags.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return nil, fmt.Errorf("tag %q must be at most %d characters", tag, MaxTagLength)
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("at most %d tags are allowed", MaxTags)
	}
	return out, nil
}

// ValidatePositive checks an optional positive integer such as capacity.
func ValidatePositive(field string, v *int) error {
	if v == nil {
		return nil
	}
	if *v <= 0 {
		return fmt.Errorf("%s must be a positive number", field)
	}
	if *v > MaxCircleLimit {
		return fmt.Errorf("%s must be at most %d", field, MaxCircleLimit)
	}
	return nil
}

// NormalizeIntentStatement trims the statement and checks its length.
func NormalizeIntentStatement(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("intent statement is required")
	}
	if utf8.RuneCountInString(s) > MaxIntentLength {
		return "", fmt.Errorf("intent statement must be at most %d characters", MaxIntentLength)
	}
	return s, nil
}

// NormalizePostContent trims discussion content and checks its length.
func NormalizePostContent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("content is required")
	}
	if utf8.RuneCountInString(s) > MaxPostLength {
		return "", fmt.Errorf("content must be at most %d characters", MaxPostLength)
	}
	return s, nil
}

// ValidateLink accepts absolute http(s) URLs only.
func ValidateLink(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("url must be an absolute http or https link")
	}
	return nil
}
