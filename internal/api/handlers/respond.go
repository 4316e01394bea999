package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// parseDate parses an optional YYYY-MM-DD query value
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(contracts.DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
