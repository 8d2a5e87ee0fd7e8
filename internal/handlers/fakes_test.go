package handlers_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/notekeep/apiserver/internal/store"
	"github.com/notekeep/apiserver/types"
)

type memNoteRepo struct {
	notes []types.Note
}

func (r *memNoteRepo) List(ctx context.Context, category string) ([]types.Note, error) {
	out := make([]types.Note, 0)
	for _, note := range r.notes {
		if category == "" || note.Category == category {
			out = append(out, note)
		}
	}
	return out, nil
}

func (r *memNoteRepo) Get(ctx context.Context, id string) (types.Note, error) {
	for _, note := range r.notes {
		if note.ID == id {
			return note, nil
		}
	}
	return types.Note{}, store.ErrNotFound
}

func (r *memNoteRepo) Create(ctx context.Context, note types.Note) (types.Note, error) {
	now := time.Now()
	note.ID = uuid.NewString()
	note.CreatedAt = now
	note.UpdatedAt = now
	r.notes = append(r.notes, note)
	return note, nil
}

func (r *memNoteRepo) Update(ctx context.Context, note types.Note) (types.Note, error) {
	for i := range r.notes {
		if r.notes[i].ID == note.ID {
			note.UpdatedAt = time.Now()
			r.notes[i] = note
			return note, nil
		}
	}
	return types.Note{}, store.ErrNotFound
}

func (r *memNoteRepo) Delete(ctx context.Context, id string) error {
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes = append(r.notes[:i], r.notes[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type memUserRepo struct {
	users []types.User
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (types.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users = append(r.users, user)
	return user, nil
}
