package events

import "time"

// Subjects are laid out as destinasi.<kind>.<snapshot id>.completed.
const (
	subjectRoot = "destinasi"

	KindRanking     = "ranking"
	KindSensitivity = "sensitivity"

	SubjectRankingAll     = subjectRoot + "." + KindRanking + ".*.completed"
	SubjectSensitivityAll = subjectRoot + "." + KindSensitivity + ".*.completed"

	// StreamName is the JetStream stream that retains completion events.
	StreamName   = "DESTINASI_EVENTS"
	StreamMaxAge = 30 * 24 * time.Hour
)

// StreamSubjects lists the subject filters captured by StreamName.
func StreamSubjects() []string {
	return []string{
		subjectRoot + "." + KindRanking + ".>",
		subjectRoot + "." + KindSensitivity + ".>",
	}
}

func completed(kind, snapshotID string) string {
	return subjectRoot + "." + kind + "." + snapshotID + ".completed"
}

func SubjectRankingCompleted(snapshotID string) string {
	return completed(KindRanking, snapshotID)
}

func SubjectSensitivityCompleted(snapshotID string) string {
	return completed(KindSensitivity, snapshotID)
}
