package history

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

func init() {
	// WebSocket upgrade requires HTTP/1.1; keep WSS from negotiating HTTP/2.
	gorillaws.DefaultDialer.TLSClientConfig = &tls.Config{
		NextProtos: []string{"http/1.1"},
	}
}

const surrealSchema = `
    DEFINE TABLE IF NOT EXISTS run SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON run TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON run TYPE datetime;
    DEFINE FIELD IF NOT EXISTS n ON run TYPE int;
    DEFINE FIELD IF NOT EXISTS potentials ON run TYPE array<int>;
    DEFINE FIELD IF NOT EXISTS classes ON run TYPE string;
    DEFINE FIELD IF NOT EXISTS tie_break ON run TYPE string;
    -- energy can exceed the signed 64-bit range, so it is kept as decimal text
    DEFINE FIELD IF NOT EXISTS energy ON run TYPE string;
    DEFINE FIELD IF NOT EXISTS removal_order ON run TYPE array<int>;
    DEFINE FIELD IF NOT EXISTS duration_ns ON run TYPE int;

    DEFINE INDEX IF NOT EXISTS run_run_id ON run FIELDS run_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS run_created_at ON run FIELDS created_at;
`

const surrealSelect = `SELECT run_id, created_at, n, potentials, classes, tie_break, energy, removal_order, duration_ns FROM run`

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	AuthLevel string // "root" or "database"
}

// surrealRun is the stored shape of a Run.
type surrealRun struct {
	RunID        string    `json:"run_id"`
	CreatedAt    time.Time `json:"created_at"`
	N            int       `json:"n"`
	Potentials   []int64   `json:"potentials"`
	Classes      string    `json:"classes"`
	TieBreak     string    `json:"tie_break"`
	Energy       string    `json:"energy"`
	RemovalOrder []int     `json:"removal_order"`
	DurationNs   int64     `json:"duration_ns"`
}

func (r surrealRun) toRun() (Run, error) {
	energy, err := strconv.ParseUint(r.Energy, 10, 64)
	if err != nil {
		return Run{}, fmt.Errorf("parse energy: %w", err)
	}
	potentials := make([]uint64, len(r.Potentials))
	for i, p := range r.Potentials {
		potentials[i] = uint64(p)
	}
	order := r.RemovalOrder
	if order == nil {
		order = []int{}
	}
	return Run{
		ID:         r.RunID,
		CreatedAt:  r.CreatedAt.UTC(),
		N:          r.N,
		Potentials: potentials,
		Classes:    r.Classes,
		TieBreak:   r.TieBreak,
		Energy:     energy,
		Order:      order,
		Duration:   time.Duration(r.DurationNs),
	}, nil
}

// SurrealStore keeps runs in SurrealDB over an auto-reconnecting WebSocket.
type SurrealStore struct {
	conn   *rews.Connection[*gorillaws.Connection]
	db     *surrealdb.DB
	logger logger.Logger
}

// NewSurrealStore connects, authenticates, selects the namespace and
// database, and defines the run table.
func NewSurrealStore(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*SurrealStore, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())
	codec := surrealcbor.New()

	// gorillaws appends /rpc itself
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)

	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = 1 * time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	sdkLogger.Info("connecting to SurrealDB", "url", cfg.URL)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}

	auth := surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}
	if cfg.AuthLevel == "database" {
		auth.Namespace = cfg.Namespace
		auth.Database = cfg.Database
	}
	if _, err := db.SignIn(ctx, auth); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}

	if _, err := surrealdb.Query[any](ctx, db, surrealSchema, nil); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("init schema: %w", err)
	}

	sdkLogger.Info("SurrealDB run store ready", "namespace", cfg.Namespace, "database", cfg.Database)
	return &SurrealStore{conn: conn, db: db, logger: sdkLogger}, nil
}

// Close closes the SurrealDB connection.
func (s *SurrealStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Close(ctx)
}

// Save creates a run record keyed by the run ID.
func (s *SurrealStore) Save(ctx context.Context, run Run) error {
	potentials := make([]int64, len(run.Potentials))
	for i, p := range run.Potentials {
		potentials[i] = int64(p)
	}
	order := run.Order
	if order == nil {
		order = []int{}
	}

	_, err := surrealdb.Query[any](ctx, s.db, `
		CREATE type::record("run", $run_id) SET
			run_id = $run_id,
			created_at = type::datetime($created_at),
			n = $n,
			potentials = $potentials,
			classes = $classes,
			tie_break = $tie_break,
			energy = $energy,
			removal_order = $removal_order,
			duration_ns = $duration_ns
	`, map[string]any{
		"run_id":        run.ID,
		"created_at":    run.CreatedAt.UTC().Format(time.RFC3339Nano),
		"n":             run.N,
		"potentials":    potentials,
		"classes":       run.Classes,
		"tie_break":     run.TieBreak,
		"energy":        strconv.FormatUint(run.Energy, 10),
		"removal_order": order,
		"duration_ns":   run.Duration.Nanoseconds(),
	})
	if err != nil {
		return fmt.Errorf("create run: %w", wrapSurrealError(err))
	}
	return nil
}

// Get retrieves a run by ID.
func (s *SurrealStore) Get(ctx context.Context, id string) (Run, error) {
	results, err := surrealdb.Query[[]surrealRun](ctx, s.db, surrealSelect+` WHERE run_id = $run_id`,
		map[string]any{"run_id": id})
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return (*results)[0].Result[0].toRun()
}

// List returns runs newest first.
func (s *SurrealStore) List(ctx context.Context, limit int) ([]Run, error) {
	sql := surrealSelect + ` ORDER BY created_at DESC`
	vars := map[string]any{}
	if limit > 0 {
		sql += ` LIMIT $limit`
		vars["limit"] = limit
	}

	results, err := surrealdb.Query[[]surrealRun](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := []Run{}
	if results == nil || len(*results) == 0 {
		return runs, nil
	}
	for _, r := range (*results)[0].Result {
		run, err := r.toRun()
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", r.RunID, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
