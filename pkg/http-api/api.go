package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	headerlottery "github.com/ericselin/header-lottery"
	"github.com/ericselin/header-lottery/headers"
	"github.com/ericselin/header-lottery/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// maxBodyBytes limits request bodies; header sets are small.
const maxBodyBytes = 1 << 20

type ClassifyRequest struct {
	Headers map[string]string `json:"headers"`
	// Origin of the response. Derived from URL if empty.
	Origin string `json:"origin"`
	URL    string `json:"url"`
	// Archived means the headers were replayed by a web archive.
	Archived bool `json:"archived"`
}

type NormalizeRequest struct {
	Headers map[string]string `json:"headers"`
}

type CompareRequest struct {
	Header  string `json:"header"`
	Earlier string `json:"earlier"`
	Later   string `json:"later"`
}

type CompareResponse struct {
	AtLeastAsProtective bool `json:"atLeastAsProtective"`
}

type DiffRequest struct {
	Earlier snapshot.Snapshot `json:"earlier"`
	Later   snapshot.Snapshot `json:"later"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Options adjust how classification requests are interpreted.
type Options struct {
	// ArchivePrefix marks original headers of archived responses.
	// Defaults to headers.ArchivePrefix.
	ArchivePrefix string
	// DefaultOrigin is used when a request has neither origin nor URL.
	DefaultOrigin string
}

type api struct {
	classifier *headerlottery.Classifier
	log        zerolog.Logger
	opts       Options
}

// NewRouter returns the HTTP handler exposing the classifier.
func NewRouter(classifier *headerlottery.Classifier, logger zerolog.Logger, opts Options) http.Handler {
	if opts.ArchivePrefix == "" {
		opts.ArchivePrefix = headers.ArchivePrefix
	}
	opts.ArchivePrefix = strings.ToLower(opts.ArchivePrefix)
	if origin, err := headers.Origin(opts.DefaultOrigin); err == nil {
		opts.DefaultOrigin = origin
	}
	a := api{classifier: classifier, log: logger, opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/classify", a.classify)
	r.Post("/normalize", a.normalize)
	r.Post("/compare", a.compare)
	r.Post("/diff", a.diff)
	return r
}

func (a api) classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !a.decode(w, r, &req) {
		return
	}
	h := headers.Lower(req.Headers)
	if req.Archived {
		h = headers.Unwrap(h, a.opts.ArchivePrefix)
	}
	origin := a.opts.DefaultOrigin
	for _, u := range []string{req.Origin, req.URL} {
		if u == "" {
			continue
		}
		var err error
		if origin, err = headers.Origin(u); err != nil {
			a.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		break
	}
	a.writeJSON(w, r, a.classifier.Classify(h, origin))
}

func (a api) normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.writeJSON(w, r, headers.NormalizeSet(headers.Lower(req.Headers)))
}

func (a api) compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !a.decode(w, r, &req) {
		return
	}
	kind, ok := headers.KindOf(req.Header)
	if !ok {
		a.writeError(w, r, http.StatusBadRequest, errors.New("unrecognized header "+req.Header))
		return
	}
	res, err := headers.AtLeastAsProtective(kind, req.Earlier, req.Later)
	if err != nil {
		a.writeError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	a.writeJSON(w, r, CompareResponse{AtLeastAsProtective: res})
}

func (a api) diff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if !a.decode(w, r, &req) {
		return
	}
	a.writeJSON(w, r, snapshot.Diff(req.Earlier, req.Later))
}

func (a api) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		a.writeError(w, r, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (a api) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error().Err(err).Str("requestId", middleware.GetReqID(r.Context())).Msg("Could not write response")
	}
}

func (a api) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	a.log.Debug().Err(err).Str("requestId", middleware.GetReqID(r.Context())).Msg("Rejecting request")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func (a api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug().
			Str("method", r.Method).
			Str("url", r.URL.String()).
			Str("requestId", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("Sending response to client")
	})
}
