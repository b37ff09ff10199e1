package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/movielist-api/internal/api/metrics"
	"github.com/99minutos/movielist-api/internal/core/domain"
	"github.com/99minutos/movielist-api/internal/core/ports"
)

// MovieHandler handles HTTP requests for the caller's movie list. Every route
// runs behind the Auth middleware.
type MovieHandler struct {
	service ports.MovieService
}

func NewMovieHandler(service ports.MovieService) *MovieHandler {
	return &MovieHandler{service: service}
}

func observe(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.MovieOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Create handles POST /api/movies.
//
// @Summary      Add a movie to the caller's list
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createMovieRequest  true  "Movie fields"
// @Success      201   {object}  movieEnvelope
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /api/movies [post]
func (h *MovieHandler) Create(c echo.Context) (err error) {
	defer func() { observe("create", err) }()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createMovieRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("body", "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	movie, err := h.service.Create(c.Request().Context(), req.toFields(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, movieEnvelope{Message: "movie added successfully", Movie: toMovieResponse(movie)})
}

// List handles GET /api/movies.
//
// @Summary      List the caller's movies
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        title     query     string  false  "Case-insensitive substring of the title"
// @Param        director  query     string  false  "Case-insensitive substring of the director"
// @Param        genre     query     string  false  "Case-insensitive substring of the genre"
// @Param        year      query     int     false  "Exact release year"
// @Param        rating    query     int     false  "Minimum rating"
// @Success      200       {array}   movieResponse
// @Failure      401       {object}  messageResponse
// @Router       /api/movies [get]
func (h *MovieHandler) List(c echo.Context) (err error) {
	defer func() { observe("list", err) }()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	movies, err := h.service.List(c.Request().Context(), userID, filterFromQuery(c))
	if err != nil {
		return err
	}

	resp := make([]movieResponse, 0, len(movies))
	for i := range movies {
		resp = append(resp, toMovieResponse(&movies[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/movies/:id.
//
// @Summary      Get one of the caller's movies
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Movie id"
// @Success      200  {object}  movieResponse
// @Failure      400  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/movies/{id} [get]
func (h *MovieHandler) Get(c echo.Context) (err error) {
	defer func() { observe("get", err) }()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	movie, err := h.service.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMovieResponse(movie))
}

// Update handles PUT and PATCH /api/movies/:id. Both are partial updates.
//
// @Summary      Update one of the caller's movies
// @Tags         movies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Movie id"
// @Param        body  body      updateMovieRequest  true  "Fields to change"
// @Success      200   {object}  movieEnvelope
// @Failure      400   {object}  messageResponse
// @Failure      403   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /api/movies/{id} [put]
// @Router       /api/movies/{id} [patch]
func (h *MovieHandler) Update(c echo.Context) (err error) {
	defer func() { observe("update", err) }()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateMovieRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return domain.NewValidationError("body", "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	movie, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toPatch(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, movieEnvelope{Message: "movie updated successfully", Movie: toMovieResponse(movie)})
}

// Delete handles DELETE /api/movies/:id.
//
// @Summary      Delete one of the caller's movies
// @Tags         movies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Movie id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /api/movies/{id} [delete]
func (h *MovieHandler) Delete(c echo.Context) (err error) {
	defer func() { observe("delete", err) }()

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "movie deleted successfully"})
}
