package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/mvp-joe/project-scout/internal/config"
	"github.com/mvp-joe/project-scout/internal/search"
)

// Service is the search facade: it validates a request, translates it into
// the engine's pattern syntax, drives the engine connection, and filters the
// normalized matches through the configured exclude patterns.
//
// The facade serializes engine invocations. Concurrent callers queue on a
// mutex instead of surfacing the connection's busy rejection.
type Service struct {
	conn            EngineConnection
	searchRoot      string
	defaultLanguage string
	excludes        []glob.Glob
	excludeSrc      []string // raw patterns, parallel to excludes
	log             *slog.Logger

	mu sync.Mutex // one engine invocation at a time
}

// NewService builds the search facade over an engine connection. searchRoot
// is resolved to an absolute path; exclude patterns are compiled up front so
// a bad pattern fails construction instead of every search.
func NewService(conn EngineConnection, searchRoot string, cfg config.SearchConfig, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	root, err := filepath.Abs(searchRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve search root: %w", err)
	}

	lang := cfg.DefaultLanguage
	if lang == "" {
		lang = search.DefaultLanguage
	}

	excludes := make([]glob.Glob, 0, len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("compile exclude pattern %q: %w", pattern, err)
		}
		excludes = append(excludes, g)
	}

	return &Service{
		conn:            conn,
		searchRoot:      root,
		defaultLanguage: lang,
		excludes:        excludes,
		excludeSrc:      cfg.Exclude,
		log:             log,
	}, nil
}

// FindFunctionDefinition implements the Finder interface. The connection is
// established lazily on first use; Connect is idempotent so a ready
// connection is reused as-is.
func (s *Service) FindFunctionDefinition(ctx context.Context, req *FunctionDefinitionRequest) (*FunctionDefinitionResponse, error) {
	if req == nil {
		return nil, errors.New("request is required")
	}

	log := s.log.With("search_id", uuid.New().String())

	sreq := &search.SearchRequest{
		Kind:         search.FunctionDefinition,
		FunctionName: req.FunctionName,
		Language:     req.Language,
		Scope:        req.TargetFiles,
	}
	if sreq.Language == "" {
		sreq.Language = s.defaultLanguage
	}

	if err := search.ValidateRequest(sreq, s.searchRoot); err != nil {
		return nil, err
	}

	// Fail fast when the caller scopes the search to an excluded path;
	// post-filtering would silently return zero matches instead.
	for _, path := range sreq.Scope {
		if excl, excluded := s.matchingExclude(path); excluded {
			return nil, fmt.Errorf("invalid scope: %q matches exclude pattern %q", path, excl)
		}
	}

	pattern, err := search.Translate(*sreq)
	if err != nil {
		return nil, err
	}

	log.Debug("function definition search",
		"function", req.FunctionName,
		"language", sreq.Language,
		"pattern", pattern,
		"scope", sreq.Scope)

	if err := s.conn.Connect(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, err := s.conn.Execute(ctx, pattern, sreq.Language, sreq.Scope)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	matches := s.filterExcluded(records)
	if dropped := len(records) - len(matches); dropped > 0 {
		log.Debug("matches dropped by exclude patterns", "dropped", dropped)
	}

	log.Info("function definition search complete",
		"function", req.FunctionName,
		"language", sreq.Language,
		"matches", len(matches))

	return &FunctionDefinitionResponse{Matches: matches}, nil
}

// Close tears down the underlying engine connection.
func (s *Service) Close() error {
	return s.conn.Close()
}

func (s *Service) filterExcluded(records []search.MatchRecord) []search.MatchRecord {
	if len(s.excludes) == 0 {
		return records
	}

	kept := make([]search.MatchRecord, 0, len(records))
	for _, record := range records {
		if s.excludedPath(record.FilePath) {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}

func (s *Service) excludedPath(path string) bool {
	_, excluded := s.matchingExclude(path)
	return excluded
}

// matchingExclude returns the first configured pattern that matches the path.
func (s *Service) matchingExclude(path string) (string, bool) {
	for i, g := range s.excludes {
		if g.Match(path) {
			return s.excludeSrc[i], true
		}
	}
	return "", false
}
