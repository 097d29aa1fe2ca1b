package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/papershelf/papershelf/internal/catalog"
	"github.com/papershelf/papershelf/pkg/postgres"
)

// PostgresSource loads the snapshot from the catalog database. The schema
// mirrors the JSON exports: papers, topics (label + synonyms), collections
// (tag filters), and blacklist (locators).
type PostgresSource struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewPostgresSource creates a PostgresSource on an open client.
func NewPostgresSource(db *postgres.Client) *PostgresSource {
	return &PostgresSource{
		db:     db,
		logger: slog.Default().With("component", "catalog-pg-source"),
	}
}

// Load reads all catalog tables inside one transaction so the snapshot is a
// consistent view.
func (s *PostgresSource) Load(ctx context.Context) (*catalog.Snapshot, error) {
	snap := &catalog.Snapshot{Blacklist: make(catalog.Blacklist)}

	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.Records, err = loadRecords(ctx, tx); err != nil {
			return err
		}
		if snap.Topics, err = loadTopics(ctx, tx); err != nil {
			return err
		}
		if snap.Collections, err = loadCollections(ctx, tx); err != nil {
			return err
		}
		if snap.Blacklist, err = loadBlacklist(ctx, tx); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(updated_at)::text, '') || ':' || COUNT(*)::text FROM papers`,
		).Scan(&snap.Version)
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalog from postgres: %w", err)
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

func loadRecords(ctx context.Context, tx *sql.Tx) ([]catalog.Record, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, title, COALESCE(abstract, ''), COALESCE(tags, '{}'),
		        COALESCE(category, ''), COALESCE(year, 0), COALESCE(date, ''),
		        COALESCE(pages, 0), COALESCE(size, ''), COALESCE(venue, ''),
		        COALESCE(wait, 0), COALESCE(source_id, ''), COALESCE(doi, ''),
		        COALESCE(locked, false), COALESCE(first_page, ''), COALESCE(eval_text, '')
		 FROM papers
		 ORDER BY ord, id`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var r catalog.Record
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Abstract, pq.Array(&r.Tags),
			&r.Category, &r.Year, &r.Date,
			&r.Pages, &r.Size, &r.Venue,
			&r.Wait, &r.SourceID, &r.DOI,
			&r.Locked, &r.FirstPage, &r.EvalText,
		); err != nil {
			return nil, fmt.Errorf("scanning paper row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func loadTopics(ctx context.Context, tx *sql.Tx) (catalog.TopicSet, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT label, COALESCE(synonyms, '{}') FROM topics ORDER BY ord, label`)
	if err != nil {
		return catalog.NewTopicSet(nil), fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var raw []struct {
		label    string
		synonyms []string
	}
	for rows.Next() {
		var label string
		var synonyms []string
		if err := rows.Scan(&label, pq.Array(&synonyms)); err != nil {
			return catalog.NewTopicSet(nil), fmt.Errorf("scanning topic row: %w", err)
		}
		raw = append(raw, struct {
			label    string
			synonyms []string
		}{label, synonyms})
	}
	if err := rows.Err(); err != nil {
		return catalog.NewTopicSet(nil), err
	}

	topics := make([]catalog.Topic, 0, len(raw))
	for _, r := range raw {
		topics = append(topics, catalog.NewTopic(r.label, r.synonyms))
	}
	return catalog.NewTopicSet(topics), nil
}

func loadCollections(ctx context.Context, tx *sql.Tx) ([]catalog.Collection, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, label, COALESCE(any_tags, '{}'), COALESCE(all_tags, '{}')
		 FROM collections ORDER BY ord, id`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []catalog.Collection
	for rows.Next() {
		var c catalog.Collection
		if err := rows.Scan(&c.ID, &c.Label,
			pq.Array(&c.Filter.AnyTags), pq.Array(&c.Filter.AllTags)); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func loadBlacklist(ctx context.Context, tx *sql.Tx) (catalog.Blacklist, error) {
	rows, err := tx.QueryContext(ctx, `SELECT locator FROM blacklist`)
	if err != nil {
		return nil, fmt.Errorf("querying blacklist: %w", err)
	}
	defer rows.Close()

	blacklist := make(catalog.Blacklist)
	for rows.Next() {
		var locator string
		if err := rows.Scan(&locator); err != nil {
			return nil, fmt.Errorf("scanning blacklist row: %w", err)
		}
		blacklist.Add(locator)
	}
	return blacklist, rows.Err()
}
