package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/project-scout/internal/search"
)

var (
	// ErrInvalidLogLevel indicates an unsupported log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidLogFormat indicates an unsupported log format
	ErrInvalidLogFormat = errors.New("invalid log format")

	// ErrInvalidLaunch indicates inconsistent engine launch settings
	ErrInvalidLaunch = errors.New("invalid engine launch settings")

	// ErrInvalidLanguage indicates an unsupported default language
	ErrInvalidLanguage = errors.New("invalid default language")

	// ErrInvalidExclude indicates an exclude pattern that does not compile
	ErrInvalidExclude = errors.New("invalid exclude pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateLog(&cfg.Log); err != nil {
		errs = append(errs, err)
	}

	if err := validateEngine(&cfg.Engine); err != nil {
		errs = append(errs, err)
	}

	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	var errs []error

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: must be debug, info, warn or error, got '%s'", ErrInvalidLogLevel, cfg.Level))
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: must be text or json, got '%s'", ErrInvalidLogFormat, cfg.Format))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateEngine(cfg *EngineConfig) error {
	var errs []error

	if cfg.Command == "" && strings.TrimSpace(cfg.Image) == "" {
		errs = append(errs, fmt.Errorf("%w: image is required when no command is set", ErrInvalidLaunch))
	}

	if cfg.Command == "" && len(cfg.Args) > 0 {
		errs = append(errs, fmt.Errorf("%w: args require a command", ErrInvalidLaunch))
	}

	for _, entry := range cfg.Env {
		key, _, found := strings.Cut(entry, "=")
		if !found || key == "" {
			errs = append(errs, fmt.Errorf("%w: env entry %q is not KEY=VALUE", ErrInvalidLaunch, entry))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if !search.SupportedLanguages[cfg.DefaultLanguage] {
		errs = append(errs, fmt.Errorf("%w: '%s' is not a supported language", ErrInvalidLanguage, cfg.DefaultLanguage))
	}

	for _, pattern := range cfg.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidExclude, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
