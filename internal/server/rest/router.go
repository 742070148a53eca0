// Package rest is the MealMate HTTP API.
package rest

import (
	"net/http"

	"github.com/dmitrijs2005/mealmate/internal/logging"
	"github.com/dmitrijs2005/mealmate/internal/server/recipes"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MaxBodyBytes bounds every request body.
const MaxBodyBytes = 50 << 20

type Deps struct {
	Directory          Directory
	Recipes            recipes.Lookup
	Chat               http.Handler
	Logger             logging.Logger
	SecretKey          []byte
	CORSAllowedOrigins []string
}

// NewRouter wires the middleware chain and mounts every route.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logging(d.Logger))
	r.Use(Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(d.CORSAllowedOrigins))
	r.Use(BodyLimit(MaxBodyBytes))

	auth := Authenticate(d.SecretKey)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusOK, "Ok from the server side")
	})
	r.Mount("/user", NewUserHandler(d.Directory, auth, d.Logger).Routes())
	r.Mount("/meals", NewMealsHandler(d.Recipes, auth, d.Logger).Routes())
	if d.Chat != nil {
		r.Handle("/ws", d.Chat)
	}
	r.Handle("/metrics", promhttp.Handler())

	return r
}
