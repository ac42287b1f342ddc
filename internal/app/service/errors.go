package service

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var validate = validator.New()

// fieldErrors accumulates validation failures before a ValidationError is built.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// checkURL accepts absolute http(s) links.
func (f fieldErrors) checkURL(field string, value *string) {
	if value == nil || *value == "" {
		return
	}
	if err := validate.Var(*value, "url"); err != nil {
		f.add(field, "must be a valid URL")
		return
	}
	if u, err := url.Parse(*value); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		f.add(field, "must be an http or https URL")
	}
}

var socialHandle = regexp.MustCompile(`^@?[\w.\-]{1,100}$`)

// checkSocialLink accepts either a full http(s) profile URL or a bare
// handle such as @vintagevault.
func (f fieldErrors) checkSocialLink(field string, value *string) {
	if value == nil || *value == "" {
		return
	}
	if strings.Contains(*value, "://") {
		f.checkURL(field, value)
		return
	}
	if !socialHandle.MatchString(*value) {
		f.add(field, "must be a profile URL or a handle")
	}
}

func (f fieldErrors) checkEmail(field, value string) {
	if value == "" {
		return
	}
	if err := validate.Var(value, "email"); err != nil {
		f.add(field, "must be a valid email address")
	}
}

// trimmed returns a trimmed copy of s, or nil when s is nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// blankToNil treats an empty optional string as absent.
func blankToNil(s *string) *string {
	if t := trimmed(s); t != nil && *t != "" {
		return t
	}
	return nil
}
