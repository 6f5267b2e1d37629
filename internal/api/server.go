package api

import (
	"fmt"
	"net/http"
	"time"
)

// NewServer returns a configured *http.Server for the ledger API.
func NewServer(port uint16, l Ledger, b Board) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(l, b),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
