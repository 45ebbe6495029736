package api

import (
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// RegisterRoutes wires the endpoints behind open CORS, panic recovery and
// access logging.
func RegisterRoutes(h *Handler) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/predict", h.Predict).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Accept", "Authorization", "Content-Type", "Origin", "X-Requested-With"}),
	)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))

	return handlers.LoggingHandler(os.Stdout, recovery(cors(router)))
}
