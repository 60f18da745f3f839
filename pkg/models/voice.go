package models

import "time"

// VoicePresets is the closed set of synthesis voices a character can be
// mapped to.
var VoicePresets = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"onyx", "nova", "sage", "shimmer", "verse",
}

func ValidVoicePreset(v string) bool {
	for _, p := range VoicePresets {
		if p == v {
			return true
		}
	}
	return false
}

type CharacterVoice struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	VoiceID      string    `json:"voice_id"`
	Instructions string    `json:"instructions,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AudioSegment is one synthesized dialogue span of a chapter.
type AudioSegment struct {
	ID          string    `json:"id"`
	ChapterID   string    `json:"chapter_id"`
	Seq         int       `json:"seq"`
	Text        string    `json:"text"`
	AudioURL    string    `json:"audio_url"`
	CharacterID string    `json:"character_id,omitempty"`
	StartIndex  int       `json:"start_index"`
	EndIndex    int       `json:"end_index"`
	CreatedAt   time.Time `json:"created_at"`
}
