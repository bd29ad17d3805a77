// Package history keeps the query log and the result log of every search.
package history

import (
	"context"
	"database/sql"
	"ecourts-backend/internal/components/assert"
	"ecourts-backend/internal/components/chrono"
	"ecourts-backend/internal/components/telemetry"
	"ecourts-backend/internal/history/db"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	report_store_log_query  = "store.log-query"
	report_store_log_result = "store.log-result"
)

// DefaultLimit is how many queries Recent returns when asked for none.
const DefaultLimit = 50

func isRemote(dsn string) bool {
	for _, prefix := range []string{"libsql://", "https://", "http://", "wss://", "ws://"} {
		if strings.HasPrefix(dsn, prefix) {
			return true
		}
	}
	return false
}

// Open opens the database behind dsn: a remote libsql database for libsql://
// and http(s):// urls, otherwise a local sqlite file or ":memory:".
func Open(dsn string) (*sql.DB, error) {
	if isRemote(dsn) {
		return sql.Open("libsql", dsn)
	}
	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" {
		err := os.MkdirAll(filepath.Dir(dsn), 0755)
		if err != nil {
			return nil, err
		}
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway, and every connection to :memory: is a
	// separate database.
	sqlDB.SetMaxOpenConns(1)
	if dsn != ":memory:" {
		_, err = sqlDB.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
	}
	return sqlDB, nil
}

// Entry is a logged query with its latest result, if any.
type Entry struct {
	ID        int64           `json:"id"`
	CourtType string          `json:"court_type"`
	Params    json.RawMessage `json:"query_params"`
	Timestamp time.Time       `json:"timestamp"`
	Result    json.RawMessage `json:"result_data,omitempty"`
}

type Store struct {
	qry  *db.Queries
	time chrono.TimeAPI
	tel  telemetry.API
}

// NewStore creates the tables if needed.
func NewStore(ctx context.Context, sqlDB *sql.DB, time chrono.TimeAPI, tel telemetry.API) (Store, error) {
	assert.NotNil(sqlDB)
	assert.NotNil(time)
	assert.NotNil(tel)

	_, err := sqlDB.ExecContext(ctx, db.Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create history schema: %w", err)
	}
	return Store{
		qry:  db.New(sqlDB),
		time: time,
		tel:  telemetry.NewScopedAPI("history", tel),
	}, nil
}

// LogQuery records a search about to be made and returns its id.
func (s Store) LogQuery(ctx context.Context, courtType string, params any) (int64, error) {
	serialized, err := json.Marshal(params)
	if err != nil {
		return 0, fmt.Errorf("serialize query params: %w", err)
	}
	id, err := s.qry.CreateQuery(ctx, db.CreateQueryParams{
		CourtType:   courtType,
		QueryParams: string(serialized),
		CreatedAt:   s.time.Now().UnixMilli(),
	})
	if err != nil {
		s.tel.ReportBroken(report_store_log_query, err)
		return 0, fmt.Errorf("log query: %w", err)
	}
	return id, nil
}

// LogResult records the outcome of query id along with the raw portal answer.
func (s Store) LogResult(ctx context.Context, queryID int64, result any, raw string) error {
	serialized, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("serialize result: %w", err)
	}
	err = s.qry.CreateResult(ctx, db.CreateResultParams{
		QueryID:     queryID,
		ResultData:  string(serialized),
		RawResponse: raw,
		CreatedAt:   s.time.Now().UnixMilli(),
	})
	if err != nil {
		s.tel.ReportBroken(report_store_log_result, err)
		return fmt.Errorf("log result: %w", err)
	}
	return nil
}

// Recent returns the latest queries, newest first.
func (s Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.qry.GetRecentQueries(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("recent queries: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entry := Entry{
			ID:        row.ID,
			CourtType: row.CourtType,
			Params:    json.RawMessage(row.QueryParams),
			Timestamp: time.UnixMilli(row.CreatedAt).In(chrono.IST()),
		}
		if row.ResultData.Valid {
			entry.Result = json.RawMessage(row.ResultData.String)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
