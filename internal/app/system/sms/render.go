// internal/app/system/sms/render.go
package sms

import (
	"strings"

	"github.com/ovibase/ovibase/internal/domain/models"
)

// Placeholders recognised in template bodies.
const (
	PhFirstName  = "{first_name}"
	PhLastName   = "{last_name}"
	PhName       = "{name}"
	PhChurchUnit = "{church_unit}"
	PhEvent      = "{event}"
)

// Placeholders lists every recognised placeholder, for template editors.
var Placeholders = []string{PhFirstName, PhLastName, PhName, PhChurchUnit, PhEvent}

// Vars are the values substituted into a template. Missing values render
// as the empty string.
type Vars struct {
	FirstName  string
	LastName   string
	ChurchUnit string
	Event      string
}

// VarsFor builds Vars for a member.
func VarsFor(m models.Member, event string) Vars {
	return Vars{
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		ChurchUnit: m.ChurchUnit,
		Event:      event,
	}
}

// Render replaces every occurrence of every placeholder in one pass, so
// substituted values are never re-expanded.
func Render(body string, v Vars) string {
	full := strings.TrimSpace(v.FirstName + " " + v.LastName)
	return strings.NewReplacer(
		PhFirstName, v.FirstName,
		PhLastName, v.LastName,
		PhName, full,
		PhChurchUnit, v.ChurchUnit,
		PhEvent, v.Event,
	).Replace(body)
}
