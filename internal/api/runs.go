package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/san-kum/loopsim/internal/storage"
)

func registerRunEndpoints(rest *echo.Echo, s *Service) {
	group := rest.Group("/runs")

	group.GET("/", s.getRuns)
	group.GET("/:"+urlParamId+"/", s.getRun)
	group.DELETE("/:"+urlParamId+"/", s.deleteRun)
}

// returns the metadata of all stored runs, newest first
func (s *Service) getRuns(c echo.Context) error {
	if s.store == nil {
		return c.JSONPretty(http.StatusOK, []storage.Metadata{}, indentationChar)
	}
	data, err := s.store.List()
	if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func (s *Service) getRun(c echo.Context) error {
	id := c.Param(urlParamId)
	if s.store == nil {
		return returnNotFound(c, id)
	}
	data, err := s.store.Load(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return returnNotFound(c, id)
	} else if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func (s *Service) deleteRun(c echo.Context) error {
	id := c.Param(urlParamId)
	if s.store == nil {
		return returnNotFound(c, id)
	}
	err := s.store.Delete(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return returnNotFound(c, id)
	} else if err != nil {
		return returnError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
