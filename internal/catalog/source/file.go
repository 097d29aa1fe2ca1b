package source

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"

	"github.com/papershelf/papershelf/internal/catalog"
	"github.com/papershelf/papershelf/pkg/config"
)

// FileSource loads the snapshot from flat JSON exports (papers.json,
// topics.json, collections.json, blacklist.json). Collections and blacklist
// files are optional; a missing or malformed file degrades to an empty
// collection rather than failing the boot.
type FileSource struct {
	cfg    config.CatalogConfig
	logger *slog.Logger
}

// NewFileSource creates a FileSource for the configured paths.
func NewFileSource(cfg config.CatalogConfig) *FileSource {
	return &FileSource{
		cfg:    cfg,
		logger: slog.Default().With("component", "catalog-file-source"),
	}
}

// Load reads and decodes all catalog files. Only a missing papers file is an
// error; everything else degrades to empty.
func (s *FileSource) Load(ctx context.Context) (*catalog.Snapshot, error) {
	papers, err := os.ReadFile(s.cfg.PapersPath)
	if err != nil {
		return nil, fmt.Errorf("reading papers file %s: %w", s.cfg.PapersPath, err)
	}

	topics := s.readOptional(s.cfg.TopicsPath)
	collections := s.readOptional(s.cfg.CollectionsPath)
	blacklist := s.readOptional(s.cfg.BlacklistPath)

	hash := sha256.New()
	hash.Write(papers)
	hash.Write(topics)
	hash.Write(collections)
	hash.Write(blacklist)

	snap := &catalog.Snapshot{
		Records:     catalog.DecodeRecords(papers),
		Topics:      catalog.DecodeTopics(topics),
		Collections: catalog.DecodeCollections(collections),
		Blacklist:   catalog.DecodeBlacklist(blacklist),
		Version:     fmt.Sprintf("%x", hash.Sum(nil)[:16]),
	}
	s.logger.Info("snapshot loaded",
		"records", len(snap.Records),
		"topics", snap.Topics.Len(),
		"collections", len(snap.Collections),
		"blacklisted", len(snap.Blacklist),
		"version", snap.Version,
	)
	return snap, nil
}

func (s *FileSource) readOptional(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("optional catalog file unreadable", "path", path, "error", err)
		}
		return nil
	}
	return data
}
