package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/budgetbridge/internal/adapter/http/dto"
	"github.com/iho/budgetbridge/internal/adapter/http/middleware"
	"github.com/iho/budgetbridge/internal/domain"
)

// writeError writes the error envelope carrying the request id.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	dto.WriteError(w, middleware.GetRequestID(r.Context()), err)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, domain.NewValidation(
			fmt.Sprintf("%s must be an integer", key),
			map[string]any{"field": key, "value": val},
		)
	}
	return i, nil
}
