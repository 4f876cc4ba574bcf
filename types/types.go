package types

// Scene is one parsed unit of a script: a visual description and the
// narration spoken over it. Scenes are immutable once parsed.
type Scene struct {
	ID        int    `json:"id"`
	Visual    string `json:"visual"`
	Narration string `json:"narration"`
}

// HistoryEntry records one generated topic in the history file.
type HistoryEntry struct {
	Title string `json:"title"`
	Angle string `json:"angle"`
	Date  string `json:"date"` // YYYY-MM-DD
	Time  string `json:"time"` // HH:MM:SS
}

// MediaSegment is one finalized timeline entry handed to the encoder.
// Duration is authoritative: audio longer than Duration is cut at encode time.
type MediaSegment struct {
	SceneID  int     `json:"scene_id"`
	ImageRef string  `json:"image_ref"`
	AudioRef string  `json:"audio_ref,omitempty"`
	Duration float64 `json:"duration_sec"`
}

// VideoMetadata holds the upload payload for a finished video.
type VideoMetadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}
