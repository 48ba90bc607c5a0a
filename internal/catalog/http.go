package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

const (
	maxCreateBody = 1 << 20
	readyTimeout  = 1 * time.Second

	msgNotFound = "Product not found"
)

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *Metrics
}

// Routes registers the probes on r and the product API in its own group.
// apiMiddleware wraps only the product API, so liveness and readiness keep
// answering when a client is throttled.
func (s *Server) Routes(r chi.Router, apiMiddleware ...func(http.Handler) http.Handler) {
	r.Get("/health", health)
	r.Get("/readyz", s.ready)

	r.Group(func(api chi.Router) {
		api.Use(apiMiddleware...)
		api.Post("/items", s.create)
		api.Get("/items/{id}", s.get)
	})
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func health(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteDetail(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body, err := decodeCreateRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req, err := body.request()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.Store.Create(r.Context(), req.Name, req.Price)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("create product: %w", err))
		return
	}

	s.Metrics.productCreated()
	s.logger().Debug("product created", zap.Int64("id", p.ID))
	kit.WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(chi.URLParam(r, "id"))
	if errors.Is(err, ErrIDOutOfRange) {
		kit.WriteDetail(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, ok, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("get product %d: %w", id, err))
		return
	}
	if !ok {
		kit.WriteDetail(w, r, http.StatusNotFound, msgNotFound)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve       *ValidationError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		kit.WriteDetail(w, r, http.StatusUnprocessableEntity, ve.Fields)
	case errors.As(err, &tooLarge):
		kit.WriteDetail(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		s.logger().Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteDetail(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

// decodeCreateRequest turns body problems into validation failures so that
// malformed input and constraint violations share one response shape.
func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (createBody, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)

	var body createBody
	if err := dec.Decode(&body); err != nil {
		return createBody{}, decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return createBody{}, invalid([]string{"body"}, "json_invalid", "JSON decode error: extra data after object")
	}

	return body, nil
}

func decodeError(err error) error {
	var (
		typeErr  *json.UnmarshalTypeError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, io.EOF):
		return invalid([]string{"body"}, "missing", "Field required")
	case errors.As(err, &typeErr):
		loc := []string{"body"}
		if typeErr.Field != "" {
			loc = append(loc, typeErr.Field)
		}
		kind := reflect.Invalid
		if typeErr.Type != nil {
			kind = typeErr.Type.Kind()
		}
		switch kind {
		case reflect.String:
			return invalid(loc, "string_type", "Input should be a valid string")
		case reflect.Float64:
			return invalid(loc, "float_type", "Input should be a valid number")
		default:
			return invalid(loc, "model_attributes_type", "Input should be a valid dictionary or object to extract fields from")
		}
	default:
		return invalid([]string{"body"}, "json_invalid", "JSON decode error")
	}
}
