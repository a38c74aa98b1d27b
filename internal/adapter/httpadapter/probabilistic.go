package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
	"github.com/couchcryptid/hazard-product-generator/internal/probabilistic"
)

// objectRequest carries one dialog interaction on a probabilistic object.
type objectRequest struct {
	User   string               `json:"user"`
	Object probabilistic.Object `json:"object"`
	Button probabilistic.Button `json:"button,omitempty"`
	Shape  probabilistic.Shape  `json:"shape,omitempty"`
	Status domain.Status        `json:"status,omitempty"`
}

type objectResponse struct {
	Object   probabilistic.Object `json:"object"`
	ReadOnly bool                 `json:"readOnly"`
}

type objectHandler struct {
	clock clockwork.Clock
}

// apply runs action ("create", "press", "reshape" or "status") on the posted
// object and returns its new state.
func (h *objectHandler) apply(w http.ResponseWriter, r *http.Request) {
	var req objectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, errors.New("user is required"))
		return
	}

	m := probabilistic.NewMachine(h.clock, req.User)
	obj := req.Object
	var err error
	switch action := r.PathValue("action"); action {
	case "create":
		m.Create(&obj)
	case "press":
		err = m.Press(&obj, req.Button)
	case "reshape":
		err = m.Reshape(&obj, req.Shape)
	case "status":
		if req.Status == "" {
			err = fmt.Errorf("%w: status is required", domain.ErrValidation)
			break
		}
		m.SetStatus(&obj, req.Status)
	default:
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown object action %q", action))
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, err)
	case err != nil:
		writeError(w, statusFor(err), err)
	default:
		writeJSON(w, http.StatusOK, objectResponse{Object: obj, ReadOnly: m.ReadOnly(&obj)})
	}
}
