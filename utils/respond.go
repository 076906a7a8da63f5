package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/estatehub/backend/models"
)

// RespondJSON writes the success envelope with the given payload.
func RespondJSON(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// RespondError writes the error envelope. The message is what the caller
// sees; internal error detail is logged by the caller, never returned.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, models.APIResponse{Success: false, Message: message})
}

// RespondValidationError includes the validation detail in the envelope's
// error field, since it describes the caller's own input.
func RespondValidationError(w http.ResponseWriter, message string, err error) {
	resp := models.APIResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	RespondJSON(w, http.StatusBadRequest, resp)
}
