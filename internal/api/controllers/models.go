package controllers

import "github.com/kmorav/gom3u8/internal/domain"

// --- Requests ---

type CreateBatchRequest struct {
	URLs        []string `json:"urls"`
	Concurrency int      `json:"concurrency,omitempty"`
}

// --- Responses ---

type CreateBatchResponse struct {
	ID    string `json:"id"`
	Total int    `json:"total"`
}

type BatchStatusResponse struct {
	ID       string              `json:"id"`
	Done     bool                `json:"done"`
	Summary  domain.BatchSummary `json:"summary"`
	Messages []string            `json:"messages"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
