package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
	ErrMalformedID   = errors.New("malformed movie id")
	ErrForbidden     = errors.New("access forbidden")
	// ErrMovieVanished is returned when a delete passed the ownership check
	// but the store reported no affected rows.
	ErrMovieVanished = errors.New("movie disappeared before delete")
)

const (
	MinRating = 1
	MaxRating = 10
	MinYear   = 1
	MaxYear   = 9999
)

// Movie is a record owned by exactly one user.
type Movie struct {
	ID        string
	Title     string
	Director  string
	Year      *int
	Genre     string
	Rating    *int
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MovieFields are the client-settable attributes used on create.
type MovieFields struct {
	Title    string
	Director string
	Year     *int
	Genre    string
	Rating   *int
}

// MoviePatch is a partial update. Nil fields are left untouched.
type MoviePatch struct {
	Title    *string
	Director *string
	Year     *int
	Genre    *string
	Rating   *int
}

// IsEmpty reports whether the patch changes nothing.
func (p MoviePatch) IsEmpty() bool {
	return p.Title == nil && p.Director == nil && p.Year == nil && p.Genre == nil && p.Rating == nil
}

// Normalize trims the free-text fields in place.
func (f *MovieFields) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Director = strings.TrimSpace(f.Director)
	f.Genre = strings.TrimSpace(f.Genre)
}

// Validate requires a title, and a year and rating within range.
func (f MovieFields) Validate() error {
	if f.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if err := validateYear(f.Year); err != nil {
		return err
	}
	return validateRating(f.Rating)
}

// Normalize trims the free-text fields that are present.
func (p *MoviePatch) Normalize() {
	for _, s := range []*string{p.Title, p.Director, p.Genre} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
}

// Validate rejects a patch that would blank the title or set an out-of-range
// year or rating.
func (p MoviePatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return NewValidationError("title", "title cannot be empty")
	}
	if err := validateYear(p.Year); err != nil {
		return err
	}
	return validateRating(p.Rating)
}

func validateYear(y *int) error {
	if y != nil && (*y < MinYear || *y > MaxYear) {
		return NewValidationError("year", "year must be between 1 and 9999")
	}
	return nil
}

func validateRating(r *int) error {
	if r != nil && (*r < MinRating || *r > MaxRating) {
		return NewValidationError("rating", "rating must be between 1 and 10")
	}
	return nil
}

// MovieFilter narrows a listing. Zero values impose no constraint.
type MovieFilter struct {
	Title     string
	Director  string
	Genre     string
	Year      *int
	MinRating *int
}
