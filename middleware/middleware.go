// Package middleware validates HTTP request parameters before a handler runs.
// Query string, route parameters and a JSON body are merged into one input
// tree, run through a pipeline.Pipeline, and the result is stored in the
// request context.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	j "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	ps "github.com/reoring/paramshape"
	"github.com/reoring/paramshape/pipeline"
	"github.com/reoring/paramshape/schema"
	"github.com/reoring/paramshape/source"
)

// DefaultMaxBody caps request bodies unless WithMaxBody says otherwise.
const DefaultMaxBody = 1 << 20

// ErrMalformed wraps input that could not be decoded at all.
var ErrMalformed = errors.New("malformed request")

// ctxKeyParams is a typed context key for the accepted parameters.
type ctxKeyParams struct{}

// ContextWithParams attaches accepted parameters to the context.
func ContextWithParams(ctx context.Context, params map[string]any) context.Context {
	return context.WithValue(ctx, ctxKeyParams{}, params)
}

// ParamsFromContext retrieves parameters stored by Params.
func ParamsFromContext(ctx context.Context) (map[string]any, bool) {
	v, ok := ctx.Value(ctxKeyParams{}).(map[string]any)
	return v, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues ps.Issues) map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, it := range issues {
		e := map[string]any{"code": it.Code, "pointer": it.Pointer(), "detail": it.Detail}
		if len(it.Meta) > 0 {
			e["meta"] = it.Meta
		}
		out = append(out, e)
	}
	return map[string]any{"issues": out}
}

// Option configures Params.
type Option func(*options)

type options struct {
	log     zerolog.Logger
	maxBody int64
	metrics *Metrics
	name    string
}

// WithLogger logs rejected requests at debug level.
func WithLogger(l zerolog.Logger) Option { return func(o *options) { o.log = l } }

// WithMaxBody caps the request body size in bytes.
func WithMaxBody(n int64) Option { return func(o *options) { o.maxBody = n } }

// WithMetrics records every outcome under the given shape name.
func WithMetrics(m *Metrics, name string) Option {
	return func(o *options) { o.metrics, o.name = m, name }
}

// Params returns chi-compatible middleware that checks every request against
// shape. Invalid input is answered with 422 and the issue list; malformed
// bodies with 400.
func Params(p *pipeline.Pipeline, shape *schema.Shape, opts ...Option) func(http.Handler) http.Handler {
	o := options{log: zerolog.Nop(), maxBody: DefaultMaxBody}
	for _, fn := range opts {
		fn(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params, err := Check(p, shape, r, RouteParams(r), o.maxBody)
			o.metrics.Observe(o.name, err)
			if err != nil {
				status, payload := Reject(err)
				o.log.Debug().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("rejected parameters")
				WriteJSON(w, status, payload)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithParams(r.Context(), params)))
		})
	}
}

// Check collects the request input and runs it through p. The error is
// either ps.Issues or wraps ErrMalformed.
func Check(p *pipeline.Pipeline, shape *schema.Shape, r *http.Request, path map[string]string, maxBody int64) (map[string]any, error) {
	in, err := Input(r, path, maxBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p.Run(shape, in)
}

// Reject maps a Check error to a status and JSON payload.
func Reject(err error) (int, map[string]any) {
	if iss, ok := ps.AsIssues(err); ok {
		return http.StatusUnprocessableEntity, ErrorPayload(iss)
	}
	if errors.Is(err, ErrMalformed) {
		return http.StatusBadRequest, map[string]any{"error": err.Error()}
	}
	return http.StatusInternalServerError, map[string]any{"error": err.Error()}
}

// RouteParams returns the chi URL parameters of r, skipping the catch-all.
func RouteParams(r *http.Request) map[string]string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return nil
	}
	out := make(map[string]string, len(rc.URLParams.Keys))
	for i, k := range rc.URLParams.Keys {
		if k == "*" || i >= len(rc.URLParams.Values) {
			continue
		}
		out[k] = rc.URLParams.Values[i]
	}
	return out
}

// Input merges the query string, path parameters and a JSON object body into
// one tree. Body keys win over path parameters, which win over query keys.
func Input(r *http.Request, path map[string]string, maxBody int64) (map[string]any, error) {
	in, err := source.Values(r.URL.Query())
	if err != nil {
		return nil, err
	}
	for k, v := range path {
		in[k] = v
	}
	if r.Body == nil || r.ContentLength == 0 || !isJSON(r.Header.Get("Content-Type")) {
		return in, nil
	}
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	body, err := source.JSONReader(io.LimitReader(r.Body, maxBody), source.Strict())
	if err != nil {
		return nil, err
	}
	m, ok := body.(map[string]any)
	if !ok {
		return nil, errBodyNotObject
	}
	for k, v := range m {
		in[k] = v
	}
	return in, nil
}

var errBodyNotObject = errors.New("request body must be a JSON object")

func isJSON(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = j.NewEncoder(w).Encode(v)
}
