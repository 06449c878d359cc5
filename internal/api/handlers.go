package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/basestation-calc/internal/calc"
	"github.com/sells-group/basestation-calc/internal/model"
)

// Error kinds reported in the "kind" field of error bodies.
const (
	kindValidation  = "validation"
	kindResolution  = "resolution"
	kindComputation = "computation"
	kindInternal    = "internal"
	kindNotFound    = "not_found"
)

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Detail string `json:"detail"`
	Kind   string `json:"kind"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleCalculate(svc Calculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

		dec := json.NewDecoder(r.Body)
		var req model.CalculationRequest
		if err := dec.Decode(&req); err != nil {
			status, detail := decodeFailure(err)
			writeError(w, r, status, kindValidation, detail)
			return
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			status, detail := trailingFailure(err)
			writeError(w, r, status, kindValidation, detail)
			return
		}

		resp, err := svc.Calculate(r.Context(), req)
		if err != nil {
			writeCalcError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// trailingFailure reports anything after the request object other than
// whitespace.
func trailingFailure(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return decodeFailure(err)
	}
	return http.StatusBadRequest, "malformed request body: unexpected data after JSON object"
}

func decodeFailure(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "request body exceeds 1 MiB"
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, "request body is required"
	default:
		return http.StatusBadRequest, "malformed request body: " + err.Error()
	}
}

// writeCalcError maps the calculator error taxonomy onto HTTP statuses.
func writeCalcError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case calc.IsValidation(err):
		writeError(w, r, http.StatusBadRequest, kindValidation, err.Error())
	case calc.IsResolution(err) && errors.Is(err, context.DeadlineExceeded) && r.Context().Err() != nil:
		writeError(w, r, http.StatusGatewayTimeout, kindResolution, "request timed out resolving handover data")
	case calc.IsResolution(err):
		writeError(w, r, http.StatusBadGateway, kindResolution, err.Error())
	case calc.IsComputation(err):
		writeError(w, r, http.StatusInternalServerError, kindComputation, "calculation failed")
	default:
		zap.L().Error("api: unexpected calculation error",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, kindInternal, "internal server error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, kind, detail string) {
	if status >= http.StatusInternalServerError {
		zap.L().Warn("api: request failed",
			zap.Int("status", status),
			zap.String("kind", kind),
			zap.String("request_id", RequestIDFrom(r.Context())),
		)
	}
	writeJSON(w, status, ErrorBody{Detail: detail, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: write response", zap.Error(err))
	}
}
