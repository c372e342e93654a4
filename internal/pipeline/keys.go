package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Storage key layout. Keys are deterministic per (user, project, chapter)
// triple so a re-submitted job overwrites its earlier audio instead of
// accumulating versions.
const (
	keyFormat         = "kokoro_audio/%s/project_%s_chapter_%s.wav"
	fallbackKeyFormat = "kokoro_audio/%s/audio_%s.wav"

	fallbackSuffixLength = 8
)

// segmentSanitizer strips path separators from caller-supplied ids so a key
// can never climb out of its user prefix.
var segmentSanitizer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
)

// DeriveKey builds the object key for a job's audio. It is pure: the same
// triple always yields the same key. Empty ids are kept as empty segments.
func DeriveKey(userID, projectID, chapterID string) string {
	return fmt.Sprintf(
		keyFormat,
		segmentSanitizer.Replace(userID),
		segmentSanitizer.Replace(projectID),
		segmentSanitizer.Replace(chapterID),
	)
}

// fallbackKey builds a random key under the user's prefix for ad-hoc jobs
// submitted without a project or chapter id, so they never overwrite each
// other.
func fallbackKey(userID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:fallbackSuffixLength]

	return fmt.Sprintf(fallbackKeyFormat, segmentSanitizer.Replace(userID), suffix)
}
