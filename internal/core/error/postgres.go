package errx

import (
	"net/http"
)

// WrapPostgres maps vector index query failures to AppError.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}
