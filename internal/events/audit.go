package events

import (
	"encoding/json"
	"log/slog"
)

// Audit subscribes to every completion subject and logs what it sees.
func Audit(c Client, logger *slog.Logger) error {
	if err := c.Subscribe(SubjectRankingAll, func(subject string, data []byte) {
		var evt RankingCompletedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Warn("malformed ranking event", "subject", subject, "error", err)
			return
		}
		logger.Debug("ranking event", "snapshot_id", evt.SnapshotID, "method", evt.Method, "top", evt.Top)
	}); err != nil {
		return err
	}
	return c.Subscribe(SubjectSensitivityAll, func(subject string, data []byte) {
		var evt SensitivityCompletedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			logger.Warn("malformed sensitivity event", "subject", subject, "error", err)
			return
		}
		logger.Debug("sensitivity event", "snapshot_id", evt.SnapshotID, "criterion", evt.Criterion, "changed", evt.Changed)
	})
}
