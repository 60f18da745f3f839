package voice

import (
	"context"
	"fmt"
	"log"

	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/internal/upload"
	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/models"
)

// MaxGenerationsPerChapter is the hard ceiling on synthesized segments.
const MaxGenerationsPerChapter = 10

// Synthesizer turns dialogue text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, instructions string) ([]byte, error)
}

// MockSynthesizer keeps dev and tests offline.
type MockSynthesizer struct{}

func (MockSynthesizer) Synthesize(ctx context.Context, text, voiceID, instructions string) ([]byte, error) {
	return []byte("mp3:" + voiceID + ":" + text), nil
}

type SegmentInput struct {
	Text        string `json:"text"`
	CharacterID string `json:"character_id"`
	StartIndex  int    `json:"start_index"`
	EndIndex    int    `json:"end_index"`
}

type BatchResult struct {
	GeneratedCount       int `json:"generated_count"`
	TotalSegments        int `json:"total_segments"`
	RemainingGenerations int `json:"remaining_generations"`
}

// Generator runs the audio batch. Failures are isolated per segment: a
// failed synthesis or upload is logged and skipped while the rest of the
// batch continues.
type Generator struct {
	Voices   *Repo
	Chapters *chapter.Repo
	Series   *series.Repo
	Synth    Synthesizer
	Store    upload.Store
}

func NewGenerator(voices *Repo, chapters *chapter.Repo, seriesRepo *series.Repo, synth Synthesizer, store upload.Store) *Generator {
	return &Generator{Voices: voices, Chapters: chapters, Series: seriesRepo, Synth: synth, Store: store}
}

func (g *Generator) Generate(ctx context.Context, callerID, chapterID string, segments []SegmentInput) (*BatchResult, error) {
	ch, err := g.Chapters.GetByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, apperr.ErrNotFound
	}

	sr, err := g.Series.GetByID(ctx, ch.SeriesID)
	if err != nil {
		return nil, err
	}
	if sr == nil {
		return nil, apperr.ErrNotFound
	}
	if sr.AuthorID != callerID {
		return nil, apperr.ErrForbidden
	}

	priorCount := ch.AudioGenerationCount
	if priorCount >= MaxGenerationsPerChapter {
		return nil, apperr.ErrGenerationLimit
	}

	voices, err := g.Voices.ListByUser(ctx, callerID)
	if err != nil {
		return nil, err
	}
	voiceByCharacter := make(map[string]models.CharacterVoice, len(voices))
	for _, v := range voices {
		voiceByCharacter[v.ID] = v
	}

	var generated []models.AudioSegment
	for _, seg := range segments {
		if priorCount+len(generated) >= MaxGenerationsPerChapter {
			log.Printf("[audio] chapter %s hit the generation ceiling, stopping", chapterID)
			break
		}

		v, ok := voiceByCharacter[seg.CharacterID]
		if !ok {
			log.Printf("[audio] no voice mapped for character %s, skipping", seg.CharacterID)
			continue
		}

		data, err := g.Synth.Synthesize(ctx, seg.Text, v.VoiceID, v.Instructions)
		if err != nil {
			log.Printf("[audio] synthesis failed for segment %d-%d: %v", seg.StartIndex, seg.EndIndex, err)
			continue
		}

		name := fmt.Sprintf("audio-%s-%d.mp3", chapterID, len(generated))
		res, err := g.Store.Upload(ctx, data, name, "audio/mpeg")
		if err != nil {
			log.Printf("[audio] upload failed for segment %d-%d: %v", seg.StartIndex, seg.EndIndex, err)
			continue
		}

		generated = append(generated, models.AudioSegment{
			ChapterID:   chapterID,
			Text:        seg.Text,
			AudioURL:    res.URL,
			CharacterID: seg.CharacterID,
			StartIndex:  seg.StartIndex,
			EndIndex:    seg.EndIndex,
		})
	}

	newCount := priorCount + len(generated)
	if err := g.Voices.ReplaceSegments(ctx, chapterID, generated, newCount); err != nil {
		return nil, err
	}

	return &BatchResult{
		GeneratedCount:       len(generated),
		TotalSegments:        len(generated),
		RemainingGenerations: MaxGenerationsPerChapter - newCount,
	}, nil
}
