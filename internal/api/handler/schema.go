package handler

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// messageResponse is the plain acknowledgement body.
type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type loginResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
	Token   string       `json:"token"`
}

type protectedResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// --- Movies ---

type createMovieRequest struct {
	Title    string `json:"title"    validate:"required"`
	Director string `json:"director"`
	Year     *int   `json:"year"     validate:"omitempty,min=1,max=9999"`
	Genre    string `json:"genre"`
	Rating   *int   `json:"rating"   validate:"omitempty,min=1,max=10"`
}

func (r createMovieRequest) toFields() domain.MovieFields {
	return domain.MovieFields{
		Title:    r.Title,
		Director: r.Director,
		Year:     r.Year,
		Genre:    r.Genre,
		Rating:   r.Rating,
	}
}

// updateMovieRequest has no owner field; an ownerId or user key in the body
// is dropped by the decoder.
type updateMovieRequest struct {
	Title    *string `json:"title"`
	Director *string `json:"director"`
	Year     *int    `json:"year"     validate:"omitempty,min=1,max=9999"`
	Genre    *string `json:"genre"`
	Rating   *int    `json:"rating"   validate:"omitempty,min=1,max=10"`
}

func (r updateMovieRequest) toPatch() domain.MoviePatch {
	return domain.MoviePatch{
		Title:    r.Title,
		Director: r.Director,
		Year:     r.Year,
		Genre:    r.Genre,
		Rating:   r.Rating,
	}
}

type movieResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Director  string    `json:"director"`
	Year      *int      `json:"year"`
	Genre     string    `json:"genre"`
	Rating    *int      `json:"rating"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type movieEnvelope struct {
	Message string        `json:"message"`
	Movie   movieResponse `json:"movie"`
}

func toMovieResponse(m *domain.Movie) movieResponse {
	return movieResponse{
		ID:        m.ID,
		Title:     m.Title,
		Director:  m.Director,
		Year:      m.Year,
		Genre:     m.Genre,
		Rating:    m.Rating,
		OwnerID:   m.OwnerID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// filterFromQuery reads the list filters. Unknown keys are ignored, and so is
// a year that is not a 32-bit integer or a rating that is not a number.
func filterFromQuery(c echo.Context) domain.MovieFilter {
	f := domain.MovieFilter{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Director: strings.TrimSpace(c.QueryParam("director")),
		Genre:    strings.TrimSpace(c.QueryParam("genre")),
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(c.QueryParam("year")), 10, 32); err == nil {
		year := int(n)
		f.Year = &year
	}
	f.MinRating = minRatingParam(c.QueryParam("rating"))
	return f
}

// minRatingParam accepts any finite number. Ratings are whole, so a
// fractional minimum rounds up: 8.5 keeps 9 and 10.
func minRatingParam(raw string) *int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return nil
	}
	n := int(math.Ceil(v))
	return &n
}
