package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/kmorav/gom3u8/internal/store"
	"github.com/labstack/echo/v5"
)

// HistoryLister is what the controller needs from the persistent store.
type HistoryLister interface {
	ListResults(ctx context.Context, limit int) ([]store.HistoryEntry, error)
}

type HistoryController struct {
	Store HistoryLister
}

// List returns archived job results, newest first.
func (ctrl *HistoryController) List(c *echo.Context) error {
	if ctrl.Store == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "history store not configured"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	entries, err := ctrl.Store.ListResults(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read history"})
	}

	if entries == nil {
		entries = []store.HistoryEntry{}
	}
	return c.JSON(http.StatusOK, entries)
}
