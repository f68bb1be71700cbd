package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tradercopilot/swingdash/internal/backend"
	"github.com/tradercopilot/swingdash/internal/core"
	"github.com/tradercopilot/swingdash/internal/entitlement"
	"github.com/tradercopilot/swingdash/internal/performance"
	"github.com/tradercopilot/swingdash/internal/storage/archive"
)

// exportLimit caps the records pulled for one export.
const exportLimit = 500

// SignalSource lists signal history.
type SignalSource interface {
	RecentLogs(ctx context.Context, q backend.LogsQuery) ([]core.Signal, error)
}

// BuildExport collects the unlocked signals inside the user's history window.
func BuildExport(ctx context.Context, src SignalSource, r entitlement.Resolver, now time.Time) (archive.Export, error) {
	if r.User == nil {
		return archive.Export{}, core.ErrNoSession
	}
	signals, err := src.RecentLogs(ctx, backend.LogsQuery{Limit: exportLimit})
	if err != nil {
		return archive.Export{}, err
	}
	days := r.HistoryDays()
	signals = performance.Unlocked(performance.WithinHistory(signals, days, now), r)
	return archive.Export{
		UserID:      r.User.ID,
		Tier:        r.Tier(),
		HistoryDays: days,
		GeneratedAt: now.UTC(),
		Signals:     signals,
	}, nil
}

// Export archives the signed-in user's signal history and returns its path.
func (a *App) Export(ctx context.Context, st *State) (string, archive.Export, error) {
	if a.archive == nil {
		return "", archive.Export{}, core.WrapError(core.ErrConfigMissing, errArchiveDisabled)
	}
	exp, err := BuildExport(ctx, a.Client(st.Session()), st.Resolver(), time.Now())
	if err != nil {
		return "", archive.Export{}, err
	}
	path, err := archive.SaveExport(ctx, a.archive, exp)
	if err != nil {
		return "", exp, err
	}
	a.logger.Info("signal history exported",
		zap.Int64("user_id", exp.UserID),
		zap.Int("signals", len(exp.Signals)),
		zap.String("path", path))
	return path, exp, nil
}
