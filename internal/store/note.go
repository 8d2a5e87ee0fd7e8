package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/types"
)

// NoteRepository handles persistence for notes.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// List returns all notes, or only notes whose category exactly equals
// the filter when it is non-empty. Ordered by creation time.
func (r *NoteRepository) List(ctx context.Context, category string) ([]types.Note, error) {
	const listQuery = `
		SELECT id, title, content, category, image, created_at, updated_at
		FROM notes
		ORDER BY created_at`
	const filterQuery = `
		SELECT id, title, content, category, image, created_at, updated_at
		FROM notes
		WHERE category = $1
		ORDER BY created_at`

	var rows *sql.Rows
	var err error
	if category == "" {
		rows, err = r.db.QueryContext(ctx, listQuery)
	} else {
		rows, err = r.db.QueryContext(ctx, filterQuery, category)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]types.Note, 0)
	for rows.Next() {
		var note types.Note
		if err := rows.Scan(
			&note.ID,
			&note.Title,
			&note.Content,
			&note.Category,
			&note.Image,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *NoteRepository) Get(ctx context.Context, id string) (types.Note, error) {
	const query = `
		SELECT id, title, content, category, image, created_at, updated_at
		FROM notes
		WHERE id = $1`
	var note types.Note
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.Title,
		&note.Content,
		&note.Category,
		&note.Image,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Note{}, ErrNotFound
		}
		return types.Note{}, err
	}
	return note, nil
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	now := time.Now()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now

	const query = `
		INSERT INTO notes (id, title, content, category, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.Title,
		note.Content,
		note.Category,
		note.Image,
		note.CreatedAt,
		note.UpdatedAt,
	); err != nil {
		return types.Note{}, err
	}

	return note, nil
}

func (r *NoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	note.UpdatedAt = time.Now()

	const query = `
		UPDATE notes
		SET title = $1,
			content = $2,
			category = $3,
			image = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		note.Title,
		note.Content,
		note.Category,
		note.Image,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return types.Note{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Note{}, err
	}
	if affected == 0 {
		return types.Note{}, ErrNotFound
	}

	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM notes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
