package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/dmitrijs2005/gophauth/internal/server/sweeper"
)

// SweepOnce removes expired session tokens and returns how many went.
// It needs only the database settings, so it suits a cron job.
func SweepOnce(ctx context.Context, c *config.Config) (int64, error) {
	return sweepOnce(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func sweepOnce(ctx context.Context, c *config.Config, logger logging.Logger) (int64, error) {
	db, rm, err := openStore(ctx, c)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	tokens := services.NewTokenStore(db, rm, auth.NewCodec([]byte(c.SecretKey)), logger.With("module", "tokens"))
	return sweeper.NewSweeper(tokens, c.SweepInterval, logger).SweepOnce(ctx)
}
