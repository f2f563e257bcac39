package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as the JSON body
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// List writes items as a JSON array; an empty collection is [] and never null
func List[T any](w http.ResponseWriter, status int, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(w, status, items)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
