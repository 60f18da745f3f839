package voice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malawadd/qisati/internal/chapter"
	"github.com/malawadd/qisati/internal/series"
	"github.com/malawadd/qisati/internal/upload"
	"github.com/malawadd/qisati/pkg/apperr"
	"github.com/malawadd/qisati/pkg/database"
	"github.com/malawadd/qisati/pkg/models"
)

// flakySynthesizer fails for any text containing the trigger substring.
type flakySynthesizer struct {
	trigger string
}

func (f flakySynthesizer) Synthesize(ctx context.Context, text, voiceID, instructions string) ([]byte, error) {
	if f.trigger != "" && strings.Contains(text, f.trigger) {
		return nil, errors.New("synthesis backend unavailable")
	}
	return []byte("mp3:" + voiceID + ":" + text), nil
}

type audioFixture struct {
	db        *sql.DB
	voices    *Repo
	chapters  *chapter.Repo
	authorID  string
	chapterID string
	voiceID   string
}

func newAudioFixture(t *testing.T, synth Synthesizer) (*audioFixture, *Generator) {
	t.Helper()
	db, err := database.OpenForTest(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	authorID := uuid.NewString()
	_, err = db.Exec("INSERT INTO users (id, handle) VALUES (?, ?)", authorID, "writer_"+authorID[:8])
	require.NoError(t, err)

	srRepo := series.NewRepo(db)
	sr, err := srRepo.Create(context.Background(), series.CreateParams{
		Slug: "audio-test", Title: "Audio Test", AuthorID: authorID, Category: "fantasy",
	})
	require.NoError(t, err)

	chRepo := chapter.NewRepo(db)
	ch, err := chRepo.Create(context.Background(), sr.ID, "Chapter One")
	require.NoError(t, err)

	voices := NewRepo(db)
	v, err := voices.Create(context.Background(), models.CharacterVoice{
		UserID: authorID, Name: "Narrator", VoiceID: "onyx",
	})
	require.NoError(t, err)

	store := upload.NewLocalStore(t.TempDir())
	gen := NewGenerator(voices, chRepo, srRepo, synth, store)

	return &audioFixture{
		db: db, voices: voices, chapters: chRepo,
		authorID: authorID, chapterID: ch.ID, voiceID: v.ID,
	}, gen
}

func segments(n int, characterID string) []SegmentInput {
	out := make([]SegmentInput, n)
	for i := range out {
		out[i] = SegmentInput{
			Text:        fmt.Sprintf("line %d", i),
			CharacterID: characterID,
			StartIndex:  i * 10,
			EndIndex:    i*10 + 9,
		}
	}
	return out
}

func TestGenerateBatch(t *testing.T) {
	f, gen := newAudioFixture(t, MockSynthesizer{})
	ctx := context.Background()

	res, err := gen.Generate(ctx, f.authorID, f.chapterID, segments(3, f.voiceID))
	require.NoError(t, err)
	assert.Equal(t, 3, res.GeneratedCount)
	assert.Equal(t, MaxGenerationsPerChapter-3, res.RemainingGenerations)

	stored, err := f.voices.ListSegments(ctx, f.chapterID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "line 0", stored[0].Text)
	assert.NotEmpty(t, stored[0].AudioURL)

	ch, err := f.chapters.GetByID(ctx, f.chapterID)
	require.NoError(t, err)
	assert.Equal(t, 3, ch.AudioGenerationCount)
}

func TestGenerateStopsAtCeiling(t *testing.T) {
	f, gen := newAudioFixture(t, MockSynthesizer{})
	ctx := context.Background()

	// one prior generation leaves nine slots
	_, err := gen.Generate(ctx, f.authorID, f.chapterID, segments(1, f.voiceID))
	require.NoError(t, err)

	res, err := gen.Generate(ctx, f.authorID, f.chapterID, segments(12, f.voiceID))
	require.NoError(t, err)
	assert.Equal(t, 9, res.GeneratedCount)
	assert.Zero(t, res.RemainingGenerations)

	ch, err := f.chapters.GetByID(ctx, f.chapterID)
	require.NoError(t, err)
	assert.Equal(t, MaxGenerationsPerChapter, ch.AudioGenerationCount)

	// the cap now rejects further batches outright
	_, err = gen.Generate(ctx, f.authorID, f.chapterID, segments(1, f.voiceID))
	assert.ErrorIs(t, err, apperr.ErrGenerationLimit)
}

func TestGenerateSkipsUnmappedCharacters(t *testing.T) {
	f, gen := newAudioFixture(t, MockSynthesizer{})
	ctx := context.Background()

	segs := segments(2, f.voiceID)
	segs = append(segs, SegmentInput{Text: "orphan line", CharacterID: "no-such-character"})

	res, err := gen.Generate(ctx, f.authorID, f.chapterID, segs)
	require.NoError(t, err)
	assert.Equal(t, 2, res.GeneratedCount)
}

func TestGenerateIsolatesSynthesisFailures(t *testing.T) {
	f, gen := newAudioFixture(t, flakySynthesizer{trigger: "line 1"})
	ctx := context.Background()

	res, err := gen.Generate(ctx, f.authorID, f.chapterID, segments(4, f.voiceID))
	require.NoError(t, err)

	// segment "line 1" failed, the rest went through
	assert.Equal(t, 3, res.GeneratedCount)

	stored, err := f.voices.ListSegments(ctx, f.chapterID)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, s := range stored {
		assert.NotEqual(t, "line 1", s.Text)
	}

	ch, err := f.chapters.GetByID(ctx, f.chapterID)
	require.NoError(t, err)
	assert.Equal(t, 3, ch.AudioGenerationCount)
}

func TestGenerateRejectsNonAuthor(t *testing.T) {
	f, gen := newAudioFixture(t, MockSynthesizer{})

	_, err := gen.Generate(context.Background(), uuid.NewString(), f.chapterID, segments(1, f.voiceID))
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGenerateReplacesPriorSegments(t *testing.T) {
	f, gen := newAudioFixture(t, MockSynthesizer{})
	ctx := context.Background()

	_, err := gen.Generate(ctx, f.authorID, f.chapterID, segments(3, f.voiceID))
	require.NoError(t, err)

	_, err = gen.Generate(ctx, f.authorID, f.chapterID, segments(2, f.voiceID))
	require.NoError(t, err)

	// a regeneration replaces the stored segments, it does not append
	stored, err := f.voices.ListSegments(ctx, f.chapterID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
