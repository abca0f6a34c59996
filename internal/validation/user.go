package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLength    = 4
	MaxUsernameLength    = 30
	MinPasswordLength    = 6
	MaxPasswordLength    = 72
	MinDisplayNameLength = 3
	MaxDisplayNameLength = 80
	MaxBioLength         = 320
	MaxLocationLength    = 120
	maxEmailLength       = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// NormalizeHandle lowercases and trims a username or email so lookups and
// uniqueness checks are case-insensitive.
func NormalizeHandle(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ValidateUsername checks a normalized (lowercase) username.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}

	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}

	// Only allow alphanumeric and underscores
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, and underscores")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks the raw credential length. The upper bound is the
// bcrypt input limit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLength)
	}
	return nil
}

// ValidateDisplayName checks a trimmed display name.
func ValidateDisplayName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinDisplayNameLength {
		return fmt.Errorf("display name must be at least %d characters long", MinDisplayNameLength)
	}
	if n > MaxDisplayNameLength {
		return fmt.Errorf("display name must not exceed %d characters", MaxDisplayNameLength)
	}
	return nil
}

// ValidateBio checks the profile bio length.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLength)
	}
	return nil
}

// ValidateLocation checks the profile location length.
func ValidateLocation(location string) error {
	if utf8.RuneCountInString(location) > MaxLocationLength {
		return fmt.Errorf("location must not exceed %d characters", MaxLocationLength)
	}
	return nil
}

// ValidateOptionalURL accepts an empty string or an absolute http(s) URL.
func ValidateOptionalURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%s must be a valid http(s) URL", field)
	}
	return nil
}
