package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/tradercopilot/swingdash/internal/core"
)

// ReportFilename names a PRO analysis report for download.
func ReportFilename(token core.Token, at time.Time) string {
	return fmt.Sprintf("Institutional_Analysis_%s_%s.md", token, at.UTC().Format("2006-01-02"))
}

// ReportPath is where a user's report is archived.
func ReportPath(userID int64, filename string) string {
	return "reports/" + strconv.FormatInt(userID, 10) + "/" + filename
}

// ExportPrefix is the directory holding a user's exports.
func ExportPrefix(userID int64) string {
	return "exports/" + strconv.FormatInt(userID, 10) + "/"
}

// ExportPath is where a user's signal-history export is archived.
func ExportPath(userID int64, at time.Time) string {
	return ExportPrefix(userID) + at.UTC().Format("2006-01-02") + ".json"
}

// Export is the archived form of a signal-history export.
type Export struct {
	UserID      int64         `json:"user_id"`
	Tier        core.Tier     `json:"tier"`
	HistoryDays int           `json:"history_days"`
	GeneratedAt time.Time     `json:"generated_at"`
	Signals     []core.Signal `json:"signals"`
}

// SaveReport archives a markdown report and returns its path.
func SaveReport(ctx context.Context, st Storage, userID int64, filename, markdown string) (string, error) {
	p := ReportPath(userID, filename)
	if err := st.Write(ctx, p, []byte(markdown)); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return p, nil
}

// SaveExport archives an export as indented JSON and returns its path.
func SaveExport(ctx context.Context, st Storage, exp Export) (string, error) {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	p := ExportPath(exp.UserID, exp.GeneratedAt)
	if err := st.Write(ctx, p, data); err != nil {
		return "", core.WrapError(core.ErrArchiveFailed, err)
	}
	return p, nil
}
