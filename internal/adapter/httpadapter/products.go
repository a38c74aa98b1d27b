package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
	"github.com/couchcryptid/hazard-product-generator/internal/validation"
)

const maxRequestBytes = 8 << 20

// Generator produces the products of one event set.
type Generator interface {
	Generate(ctx context.Context, set domain.EventSet) (*generator.Output, error)
}

type productHandler struct {
	gen    Generator
	logger *slog.Logger
}

// generate runs a preview or an issuance, overriding the request's issue
// flag with the route's.
func (h *productHandler) generate(issue bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, ok := decodeSet(w, r)
		if !ok {
			return
		}
		set.Attributes.IssueFlag = issue

		out, err := h.gen.Generate(r.Context(), set)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type validationIssue struct {
	EventID string `json:"eventID"`
	Message string `json:"message"`
}

func (h *productHandler) validate(w http.ResponseWriter, r *http.Request) {
	set, ok := decodeSet(w, r)
	if !ok {
		return
	}
	issues := []validationIssue{}
	for _, ev := range set.Events {
		var ve *domain.ValidationError
		if err := validation.Event(ev); errors.As(err, &ve) {
			issues = append(issues, validationIssue{EventID: ve.EventID, Message: ve.Message})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": len(issues) == 0, "issues": issues})
}

func decodeSet(w http.ResponseWriter, r *http.Request) (domain.EventSet, bool) {
	var set domain.EventSet
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return set, false
	}
	if len(set.Events) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("event set has no events"))
		return set, false
	}
	return set, true
}

func statusFor(err error) int {
	switch {
	case generator.IsRejected(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExternalService):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
