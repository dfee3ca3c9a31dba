// Package store persists score results for the dashboard, insights, and
// metrics surfaces. SQLite is the default backend; Postgres is available
// for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/credit-engine/internal/model"
)

// ErrNotFound indicates no stored result matches the lookup.
var ErrNotFound = eris.New("store: result not found")

// ResultFilter specifies criteria for listing stored results.
type ResultFilter struct {
	ApplicantID string       `json:"applicant_id,omitempty"`
	Method      model.Method `json:"method,omitempty"`
	Since       time.Time    `json:"since,omitzero"`
	Limit       int          `json:"limit,omitempty"`
	Offset      int          `json:"offset,omitempty"`
}

// Store defines the persistence interface for score results.
type Store interface {
	SaveResult(ctx context.Context, applicantID string, result *model.ScoreResult) (*model.StoredResult, error)
	GetResult(ctx context.Context, id string) (*model.StoredResult, error)
	LatestResult(ctx context.Context, applicantID string) (*model.StoredResult, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]model.StoredResult, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Config selects and configures the backend.
type Config struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// Open creates a store for the configured driver and runs migrations.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = "credit-engine.db"
		}
		s, err = NewSQLite(path)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
