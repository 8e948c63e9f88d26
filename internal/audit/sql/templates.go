package sql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rezkam/bulkscroll/internal/domain"
	"github.com/rezkam/bulkscroll/internal/schedule"
)

// TemplateStore is a relational schedule.TemplateStore, backed by the same
// database as the audit Store.
type TemplateStore struct {
	db *sql.DB
}

var _ schedule.TemplateStore = (*TemplateStore)(nil)

// NewTemplateStore wraps an already-opened Store's pool. Callers typically
// hold both a *Store and a *TemplateStore against the same DSN.
func NewTemplateStore(s *Store) *TemplateStore {
	return &TemplateStore{db: s.db}
}

func (s *TemplateStore) DueTemplates(ctx context.Context, now time.Time) ([]schedule.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template_id, op_type, pattern, interval_units, search_source,
			size, conflicts, refresh, destination_index, last_run_at, next_run_at, enabled
		FROM schedule_templates WHERE enabled = $1 AND next_run_at <= $2`,
		true, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("query due templates: %w", err)
	}
	defer rows.Close()

	var out []schedule.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TemplateStore) Advance(ctx context.Context, t schedule.Template) error {
	searchSource, err := json.Marshal(t.SearchSource)
	if err != nil {
		return fmt.Errorf("marshal search source: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE schedule_templates SET last_run_at = $1, next_run_at = $2,
			op_type = $3, pattern = $4, interval_units = $5, search_source = $6,
			size = $7, conflicts = $8, refresh = $9, destination_index = $10
		WHERE template_id = $11`,
		nullTime(t.LastRunAt), t.NextRunAt.UTC(),
		t.OpType, string(t.Pattern), t.Interval, string(searchSource),
		t.Size, string(t.Conflicts), t.Refresh, nullString(t.DestinationIndex),
		t.TemplateID,
	)
	return err
}

// Create inserts a new recurring template.
func (s *TemplateStore) Create(ctx context.Context, t schedule.Template) error {
	searchSource, err := json.Marshal(t.SearchSource)
	if err != nil {
		return fmt.Errorf("marshal search source: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO schedule_templates
			(template_id, op_type, pattern, interval_units, search_source, size,
			 conflicts, refresh, destination_index, last_run_at, next_run_at, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.TemplateID, t.OpType, string(t.Pattern), t.Interval, string(searchSource),
		t.Size, string(t.Conflicts), t.Refresh, nullString(t.DestinationIndex),
		nullTime(t.LastRunAt), t.NextRunAt.UTC(), t.Enabled,
	)
	return err
}

func scanTemplate(rows *sql.Rows) (schedule.Template, error) {
	var (
		templateID, opType, pattern, conflicts, searchSourceJSON string
		interval, size                                           int
		destinationIndex                                         sql.NullString
		lastRunAt                                                sql.NullTime
		nextRunAt                                                time.Time
		refresh, enabled                                         bool
	)
	if err := rows.Scan(&templateID, &opType, &pattern, &interval, &searchSourceJSON,
		&size, &conflicts, &refresh, &destinationIndex, &lastRunAt, &nextRunAt, &enabled); err != nil {
		return schedule.Template{}, err
	}

	var searchSource domain.SearchSource
	if err := json.Unmarshal([]byte(searchSourceJSON), &searchSource); err != nil {
		return schedule.Template{}, fmt.Errorf("unmarshal search source: %w", err)
	}

	t := schedule.Template{
		TemplateID:       templateID,
		OpType:           opType,
		Pattern:          schedule.Pattern(pattern),
		Interval:         interval,
		SearchSource:     searchSource,
		Size:             size,
		Conflicts:        domain.ConflictBehavior(conflicts),
		Refresh:          refresh,
		DestinationIndex: destinationIndex.String,
		NextRunAt:        nextRunAt,
		Enabled:          enabled,
	}
	if lastRunAt.Valid {
		t.LastRunAt = lastRunAt.Time
	}
	return t, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
