package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/chainburst/internal/config"
)

// Open returns the store selected by cfg.History, or nil when history is
// disabled.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.History {
	case config.HistoryNone, "":
		return nil, nil
	case config.HistorySQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite history: %w", err)
		}
		return store, nil
	case config.HistorySurrealDB:
		store, err := NewSurrealStore(ctx, SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open surrealdb history: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History)
	}
}
