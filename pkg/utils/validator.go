package utils

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidScore    = errors.New("invalid score")
)

const (
	MinScore = 1
	MaxScore = 10
)

// ValidationConfig is read once at startup and handed to NewValidator.
type ValidationConfig struct {
	ReservedUsernames []string
	UsernameMaxLength int
}

// InvalidCharsError lists the distinct characters that made a username invalid.
type InvalidCharsError struct {
	Chars []rune
}

func (e *InvalidCharsError) Error() string {
	return fmt.Sprintf("characters '%s' are not allowed in username", string(e.Chars))
}

func (e *InvalidCharsError) Unwrap() error {
	return ErrInvalidUsername
}

// Validator holds the request validator and the username/year/score rules.
type Validator struct {
	validate *validator.Validate
	reserved map[string]struct{}
	maxLen   int

	// Now is the clock used by Year; tests may replace it.
	Now func() time.Time
}

func NewValidator(cfg ValidationConfig) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		reserved: make(map[string]struct{}, len(cfg.ReservedUsernames)),
		maxLen:   cfg.UsernameMaxLength,
		Now:      time.Now,
	}
	if v.maxLen <= 0 {
		v.maxLen = 150
	}

	reserved := cfg.ReservedUsernames
	if len(reserved) == 0 {
		reserved = []string{"me"}
	}
	for _, name := range reserved {
		v.reserved[name] = struct{}{}
	}

	// report fields by their JSON names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return v.Username(fl.Field().String()) == nil
	})
	v.validate.RegisterValidation("pastyear", func(fl validator.FieldLevel) bool {
		return v.Year(int(fl.Field().Int())) == nil
	})
	v.validate.RegisterValidation("score", func(fl validator.FieldLevel) bool {
		return v.Score(int(fl.Field().Int())) == nil
	})
	// optslug also accepts "", which clears an optional reference on PATCH
	v.validate.RegisterValidation("optslug", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || IsSlug(s)
	})
	v.validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})

	return v
}

// NonReserved rejects usernames from the reserved list.
func (v *Validator) NonReserved(username string) error {
	if _, ok := v.reserved[username]; ok {
		return fmt.Errorf("%w: '%s' cannot be used as a username", ErrInvalidUsername, username)
	}
	return nil
}

// AllowedChars rejects usernames with characters outside [A-Za-z0-9_.@+-].
func (v *Validator) AllowedChars(username string) error {
	seen := make(map[rune]struct{})
	var bad []rune
	for _, r := range username {
		if isUsernameRune(r) {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		bad = append(bad, r)
	}

	if len(bad) == 0 {
		return nil
	}

	sort.Slice(bad, func(i, j int) bool { return bad[i] < bad[j] })
	return &InvalidCharsError{Chars: bad}
}

// Username applies the length, character and reserved-word rules.
func (v *Validator) Username(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if len([]rune(username)) > v.maxLen {
		return fmt.Errorf("%w: maximum length is %d", ErrInvalidUsername, v.maxLen)
	}
	if err := v.AllowedChars(username); err != nil {
		return err
	}
	return v.NonReserved(username)
}

// Year accepts years in (0, current year].
func (v *Validator) Year(year int) error {
	current := v.Now().Year()
	if year <= 0 || year > current {
		return fmt.Errorf("%w: year must be between 1 and %d", ErrInvalidYear, current)
	}
	return nil
}

// Score accepts scores in [1, 10].
func (v *Validator) Score(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: score must be between %d and %d", ErrInvalidScore, MinScore, MaxScore)
	}
	return nil
}

// Struct validates tagged request structs and returns field -> message, or nil.
func (v *Validator) Struct(data any) map[string]string {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			errs[fe.Field()] = v.errorMessage(fe)
		}
	} else {
		errs["_"] = err.Error()
	}

	return errs
}

// converts validator errors to human-readable messages
func (v *Validator) errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Minimum length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("Maximum length is %s", fe.Param())
	case "oneof":
		options := strings.ReplaceAll(fe.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	case "slug", "optslug":
		return "Must contain only letters, digits, hyphens and underscores"
	case "username":
		if s, ok := fe.Value().(string); ok {
			if err := v.Username(s); err != nil {
				return err.Error()
			}
		}
		return "Invalid username"
	case "pastyear":
		return messageOr(v.Year(int(reflect.Indirect(reflect.ValueOf(fe.Value())).Int())), "Invalid year")
	case "score":
		return messageOr(v.Score(int(reflect.Indirect(reflect.ValueOf(fe.Value())).Int())), "Invalid score")
	default:
		return fmt.Sprintf("Invalid %s field", fe.Field())
	}
}

// FormatValidationErrors formats validation errors map into single string
func FormatValidationErrors(errs map[string]string) string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, errs[field]))
	}
	return strings.Join(msgs, "; ")
}

func messageOr(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}

// IsSlug reports whether s is a non-empty [-a-zA-Z0-9_]+ string.
func IsSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			continue
		}
		return false
	}
	return true
}

func isUsernameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '@', r == '+', r == '-':
		return true
	}
	return false
}
