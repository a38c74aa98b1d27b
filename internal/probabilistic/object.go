// Package probabilistic models the edit state of convective probabilistic
// hazard objects: per-attribute automation, ownership and the probability
// trend graph.
package probabilistic

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// Object is the state of one probabilistic hazard object.
type Object struct {
	ObjectID           string        `json:"objectID"`
	DisplayEventID     string        `json:"displayEventID"`
	Status             domain.Status `json:"status"`
	Owner              string        `json:"owner"`
	ManuallyCreated    bool          `json:"manuallyCreated"`
	GeometryAutomated  bool          `json:"geometryAutomated"`
	MotionAutomated    bool          `json:"motionAutomated"`
	ProbTrendAutomated bool          `json:"probTrendAutomated"`
	DurationAutomated  bool          `json:"durationAutomated"`
	Editable           bool          `json:"editable"`
	ModifyEnabled      bool          `json:"modifyEnabled"`
	EndObjectEnabled   bool          `json:"endObjectEnabled"`
	Activate           bool          `json:"activate"`
	ActivateModify     bool          `json:"activateModify"`
	Trend              []Point       `json:"probTrend"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Button is a control of the object's dialog.
type Button string

const (
	AutomateAll  Button = "Automate All"
	AutomateNone Button = "Automate None"
	Modify       Button = "Modify"
)

// CanonicalUser normalizes "user:workstation" so that a workstation named by
// its short host name matches its fully qualified name. Case is ignored.
func CanonicalUser(s string) string {
	user, ws, _ := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	if host, _, ok := strings.Cut(ws, "."); ok {
		ws = host
	}
	if ws == "" {
		return user
	}
	return user + ":" + ws
}

// Machine applies dialog transitions on behalf of one user.
type Machine struct {
	clock clockwork.Clock
	user  string
}

// NewMachine returns a Machine acting as user ("user:workstation").
func NewMachine(clock clockwork.Clock, user string) *Machine {
	return &Machine{clock: clock, user: CanonicalUser(user)}
}

// Owns reports whether the machine's user owns obj.
func (m *Machine) Owns(obj *Object) bool {
	return CanonicalUser(obj.Owner) == m.user
}

// Create initializes a new object. An object without an ID was drawn by hand:
// it gets the ID "M<displayEventID>" and the current user as owner.
func (m *Machine) Create(obj *Object) {
	if obj.ObjectID == "" {
		obj.ObjectID = "M" + obj.DisplayEventID
		obj.ManuallyCreated = true
		obj.Owner = m.user
	}
	if obj.Status == "" {
		obj.Status = domain.StatusPending
	}
	obj.ModifyEnabled = true
	obj.EndObjectEnabled = !m.allAutomated(obj)
	m.refresh(obj)
}

// Press applies a dialog button. Users other than the owner get ErrNotOwner
// and the object is left unchanged.
func (m *Machine) Press(obj *Object, b Button) error {
	if !m.Owns(obj) {
		return domain.ErrNotOwner
	}
	switch b {
	case AutomateAll:
		m.setAutomation(obj, true)
		obj.EndObjectEnabled = false
	case AutomateNone:
		m.setAutomation(obj, false)
		obj.EndObjectEnabled = true
	case Modify:
		obj.Editable = true
		obj.ModifyEnabled = false
	default:
		return fmt.Errorf("%w: unknown button %q", domain.ErrValidation, b)
	}
	m.refresh(obj)
	return nil
}

// Reshape applies a trend shape to the object's probability graph.
func (m *Machine) Reshape(obj *Object, s Shape) error {
	if !m.Owns(obj) {
		return domain.ErrNotOwner
	}
	trend, err := ApplyShape(s, obj.Trend)
	if err != nil {
		return err
	}
	obj.Trend = trend
	obj.ProbTrendAutomated = false
	m.refresh(obj)
	return nil
}

// SetStatus moves the object to status and recomputes its activation.
func (m *Machine) SetStatus(obj *Object, status domain.Status) {
	obj.Status = status
	m.refresh(obj)
}

// ReadOnly reports whether every control is read-only for the machine's user.
func (m *Machine) ReadOnly(obj *Object) bool {
	return !m.Owns(obj)
}

func (m *Machine) setAutomation(obj *Object, on bool) {
	obj.GeometryAutomated = on
	obj.MotionAutomated = on
	obj.ProbTrendAutomated = on
	obj.DurationAutomated = on
}

func (m *Machine) allAutomated(obj *Object) bool {
	return obj.GeometryAutomated && obj.MotionAutomated && obj.ProbTrendAutomated && obj.DurationAutomated
}

// refresh recomputes the derived flags. Modify is enabled again whenever
// activate toggles.
func (m *Machine) refresh(obj *Object) {
	activate := m.Owns(obj) && obj.Status != domain.StatusEnded && obj.Status != domain.StatusElapsed
	if activate != obj.Activate {
		obj.ModifyEnabled = true
	}
	obj.Activate = activate
	obj.ActivateModify = activate && obj.ModifyEnabled
	obj.UpdatedAt = m.clock.Now()
}
