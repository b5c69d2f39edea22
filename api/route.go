package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"lookout/core"
	"lookout/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/xeipuuv/gojsonschema"
)

// decodeErrorSeparator joins decode errors in a 400 response
const decodeErrorSeparator = "|"

// semanticValidator is implemented by inputs with checks beyond schema and tags
type semanticValidator interface {
	Validate() []string
}

// route wires one endpoint: decode the request into T, then run the handler.
// A request that fails to decode never reaches the handler.
type route[T any] struct {
	name    string
	schema  *routeSchema
	handler func(ctx context.Context, in *T) (any, error)
}

// serve returns the http.HandlerFunc of the route
func (rt route[T]) serve(a *API) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, problems, stage := rt.decode(a, w, r)
		if len(problems) > 0 {
			metrics.DecodeFailures.WithLabelValues(rt.name, stage).Inc()
			a.logger.Debugw("Request rejected", "route", rt.name, "stage", stage, "errors", problems, "request_id", requestIDFrom(r.Context()))
			respondJSON(w, http.StatusBadRequest, errorBody{Message: strings.Join(problems, decodeErrorSeparator)})
			return
		}

		result, err := rt.handler(r.Context(), in)
		if err != nil {
			a.respondError(w, r, rt.name, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// decode assembles {body, query, params}, validates it against the route
// schema, unmarshals it into T and runs struct and semantic validation
func (rt route[T]) decode(a *API, w http.ResponseWriter, r *http.Request) (*T, []string, string) {
	params := mux.Vars(r)
	if params == nil {
		params = map[string]string{}
	}
	doc := map[string]any{
		"params": params,
		"query":  coerceQuery(r.URL.Query(), rt.schema.queryTypes),
	}

	if r.Body != nil {
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBodyBytes()))
		if err != nil {
			return nil, []string{fmt.Sprintf("body: %v", err)}, "read"
		}
		if len(bytes.TrimSpace(raw)) > 0 {
			var body any
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()
			if err := dec.Decode(&body); err != nil {
				return nil, []string{fmt.Sprintf("body: invalid JSON: %v", err)}, "unmarshal"
			}
			doc["body"] = body
		}
	}

	result, err := rt.schema.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, []string{err.Error()}, "schema"
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
		}
		return nil, problems, "schema"
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, []string{err.Error()}, "unmarshal"
	}
	in := new(T)
	if err := json.Unmarshal(data, in); err != nil {
		return nil, []string{err.Error()}, "unmarshal"
	}

	if err := a.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, []string{err.Error()}, "validate"
		}
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s: failed on the '%s' tag", fe.Namespace(), fe.Tag()))
		}
		return nil, problems, "validate"
	}

	if v, ok := any(in).(semanticValidator); ok {
		if problems := v.Validate(); len(problems) > 0 {
			return nil, problems, "validate"
		}
	}
	return in, nil, ""
}

// coerceQuery converts query string values to the types the route schema
// declares. Arrays accept repeated and comma-separated values. Values that do
// not parse are left as strings for the schema to reject.
func coerceQuery(values url.Values, types map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		switch types[key] {
		case "array":
			items := make([]string, 0, len(vals))
			for _, v := range vals {
				for _, part := range strings.Split(v, ",") {
					if part = strings.TrimSpace(part); part != "" {
						items = append(items, part)
					}
				}
			}
			out[key] = items
		case "integer", "number":
			if n, err := strconv.ParseFloat(vals[0], 64); err == nil {
				out[key] = n
			} else {
				out[key] = vals[0]
			}
		case "boolean":
			if b, err := strconv.ParseBool(vals[0]); err == nil {
				out[key] = b
			} else {
				out[key] = vals[0]
			}
		default:
			out[key] = vals[0]
		}
	}
	return out
}

// respondError maps a handler error to its status code and public message.
// Server errors are logged at error level, client errors at debug level.
func (a *API) respondError(w http.ResponseWriter, r *http.Request, routeName string, err error) {
	status := core.StatusCodeOf(err)
	message := core.MessageOf(err)

	fields := []any{"route", routeName, "status", status, "error", err, "request_id", requestIDFrom(r.Context())}
	if user, ok := GetUsername(r.Context()); ok {
		fields = append(fields, "user", user)
	}
	if status >= http.StatusInternalServerError {
		a.logger.Errorw("Request failed", fields...)
	} else {
		a.logger.Debugw("Request failed", fields...)
	}

	respondJSON(w, status, errorBody{Message: message})
}
