package services

import (
	"context"
	"errors"
	"strings"

	"github.com/notekeep/apiserver/types"
)

// ErrTitleRequired is returned when a note is written without a title.
var ErrTitleRequired = errors.New("title is required")

// ErrContentRequired is returned when a note is written without content.
var ErrContentRequired = errors.New("content is required")

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	List(ctx context.Context, category string) ([]types.Note, error)
	Get(ctx context.Context, id string) (types.Note, error)
	Create(ctx context.Context, note types.Note) (types.Note, error)
	Update(ctx context.Context, note types.Note) (types.Note, error)
	Delete(ctx context.Context, id string) error
}

// NoteInput carries the writable fields of a note. ImageURL is nil
// when the request attached no file.
type NoteInput struct {
	Title    string
	Content  string
	Category string
	ImageURL *string
}

// NoteService encapsulates note use-cases.
type NoteService struct {
	repo NoteRepository
}

func NewNoteService(repo NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

// List returns all notes, or only those whose category exactly equals
// the non-empty filter. Matching is case-sensitive.
func (s *NoteService) List(ctx context.Context, category string) ([]types.Note, error) {
	return s.repo.List(ctx, category)
}

// Create validates the input and persists a new note. An omitted
// category defaults to "General".
func (s *NoteService) Create(ctx context.Context, input NoteInput) (types.Note, error) {
	if err := validateNoteInput(&input); err != nil {
		return types.Note{}, err
	}

	return s.repo.Create(ctx, types.Note{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		Image:    input.ImageURL,
	})
}

// Update replaces a note's fields. Title and content are validated the
// same way as on create; an omitted category resets to the default. The
// stored image is kept unless the request attached a new one, and the
// previous image file is never deleted.
func (s *NoteService) Update(ctx context.Context, id string, input NoteInput) (types.Note, error) {
	if err := validateNoteInput(&input); err != nil {
		return types.Note{}, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Note{}, err
	}

	image := existing.Image
	if input.ImageURL != nil {
		image = input.ImageURL
	}

	return s.repo.Update(ctx, types.Note{
		ID:        existing.ID,
		Title:     input.Title,
		Content:   input.Content,
		Category:  input.Category,
		Image:     image,
		CreatedAt: existing.CreatedAt,
	})
}

// Delete removes a note by id. The referenced image file, if any,
// stays in the upload store.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateNoteInput(input *NoteInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Category = strings.TrimSpace(input.Category)

	if input.Title == "" {
		return ErrTitleRequired
	}
	if input.Content == "" {
		return ErrContentRequired
	}
	if input.Category == "" {
		input.Category = types.DefaultNoteCategory
	}
	return nil
}
