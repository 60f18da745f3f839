package voice

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/malawadd/qisati/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, v models.CharacterVoice) (*models.CharacterVoice, error) {
	v.ID = uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, `
		INSERT INTO character_voices (id, user_id, name, voice_id, instructions, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`, v.ID, v.UserID, v.Name, v.VoiceID, v.Instructions, v.Description); err != nil {
		return nil, fmt.Errorf("create character voice: %w", err)
	}
	return r.GetByID(ctx, v.ID)
}

func (r *Repo) Update(ctx context.Context, v models.CharacterVoice) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE character_voices
		SET name = ?, voice_id = ?, instructions = ?, description = ?
		WHERE id = ?
	`, v.Name, v.VoiceID, v.Instructions, v.Description, v.ID)
	if err != nil {
		return fmt.Errorf("update character voice: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update character voice: not found")
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.CharacterVoice, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, name, voice_id, instructions, description, created_at
		FROM character_voices
		WHERE id = ?
	`, id)

	var v models.CharacterVoice
	if err := row.Scan(&v.ID, &v.UserID, &v.Name, &v.VoiceID, &v.Instructions, &v.Description, &v.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get character voice: %w", err)
	}
	return &v, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.CharacterVoice, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, name, voice_id, instructions, description, created_at
		FROM character_voices
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list character voices: %w", err)
	}
	defer rows.Close()

	var out []models.CharacterVoice
	for rows.Next() {
		var v models.CharacterVoice
		if err := rows.Scan(&v.ID, &v.UserID, &v.Name, &v.VoiceID, &v.Instructions, &v.Description, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan character voice: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM character_voices WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete character voice: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ReplaceSegments swaps a chapter's audio segments wholesale and records the
// new generation count, in one transaction.
func (r *Repo) ReplaceSegments(ctx context.Context, chapterID string, segments []models.AudioSegment, generationCount int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace segments: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		DELETE FROM audio_segments WHERE chapter_id = ?
	`, chapterID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}

	for i, seg := range segments {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO audio_segments (id, chapter_id, seq, text, audio_url, character_id, start_index, end_index)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), chapterID, i, seg.Text, seg.AudioURL, seg.CharacterID, seg.StartIndex, seg.EndIndex); err != nil {
			return fmt.Errorf("insert segment: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE chapters SET audio_generation_count = ? WHERE id = ?
	`, generationCount, chapterID); err != nil {
		return fmt.Errorf("update generation count: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace segments: %w", err)
	}
	return nil
}

func (r *Repo) ListSegments(ctx context.Context, chapterID string) ([]models.AudioSegment, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, chapter_id, seq, text, audio_url, character_id, start_index, end_index, created_at
		FROM audio_segments
		WHERE chapter_id = ?
		ORDER BY seq ASC
	`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []models.AudioSegment
	for rows.Next() {
		var s models.AudioSegment
		if err := rows.Scan(&s.ID, &s.ChapterID, &s.Seq, &s.Text, &s.AudioURL, &s.CharacterID, &s.StartIndex, &s.EndIndex, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
