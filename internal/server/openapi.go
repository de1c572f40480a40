package server

import (
	"context"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

//go:embed openapi.yaml
var contractYAML []byte

// contract is the parsed API document and the router used to match
// requests against it.
type contract struct {
	doc    *openapi3.T
	router routers.Router
	json   []byte
}

func loadContract() (*contract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(contractYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI contract: %w", err)
	}

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build OpenAPI router: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode OpenAPI contract: %w", err)
	}

	return &contract{doc: doc, router: router, json: data}, nil
}

// Document returns the parsed OpenAPI document.
func (s *Server) Document() *openapi3.T {
	return s.contract.doc
}

// validateRequests rejects /api requests that do not match the contract
// with a GOAL-003 error. Paths the contract does not describe pass through.
func (s *Server) validateRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		route, pathParams, err := s.contract.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodPost && r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			s.writeError(w, r, errors.NewMalformedInputError(contractDetail(err), err))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// contractDetail turns a validation failure into a one-line message
// naming the offending field.
func contractDetail(err error) string {
	var se *openapi3.SchemaError
	if stderrors.As(err, &se) {
		if ptr := se.JSONPointer(); len(ptr) > 0 {
			return fmt.Sprintf("%s: %s", strings.Join(ptr, "."), se.Reason)
		}
		return se.Reason
	}

	var re *openapi3filter.RequestError
	if stderrors.As(err, &re) {
		if re.Reason != "" {
			return re.Reason
		}
		if re.Err != nil {
			return re.Err.Error()
		}
	}
	return err.Error()
}
