package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tunesmith/studio/schema"
	"tunesmith/studio/storage"
	"tunesmith/studio/store"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

// responseCode translates store and schema errors into status codes. Errors
// that already carry a code pass through unchanged.
func responseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}

	switch {
	case store.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, schema.ErrUserNotFound),
		errors.Is(err, schema.ErrProjectNotFound),
		errors.Is(err, schema.ErrArtistNotFound),
		errors.Is(err, schema.ErrStatsNotFound),
		errors.Is(err, schema.ErrCollaboratorNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrForbidden),
		errors.Is(err, store.ErrInsufficientCredits):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func checkDiskUsage(storage storage.Storage) error {
	stats, err := storage.Usage()
	if err != nil {
		slog.Error("unable to get disk usage from storage", "error", err)
		return CodedError(errors.New("unable to get disk usage"), http.StatusInternalServerError)
	}
	oneMib := uint64(1024 * 1024)
	// Either 20% disk needs to be free or 20Gb (in case the disk is very large)
	threshold := min(stats.TotalBytes/5, 20*1024*oneMib)
	if stats.FreeBytes < threshold {
		used := (stats.TotalBytes - stats.FreeBytes) / oneMib
		total := stats.TotalBytes / oneMib
		delta := (threshold - stats.FreeBytes) / oneMib
		return CodedError(fmt.Errorf("insufficient disk space available, usage: %d/%d Mib, please clear %d Mib", used, total, delta), http.StatusInsufficientStorage)
	}
	return nil
}

// checkSufficientStorage guards routes that write generated assets to disk.
func checkSufficientStorage(storage storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			if err := checkDiskUsage(storage); err != nil {
				slog.Error(err.Error())
				http.Error(w, err.Error(), GetResponseCode(err))
				return
			}
			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(handler)
	}
}
