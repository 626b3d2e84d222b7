// Package formutil reads submitted form values.
//
// Settings and send handlers accept either a urlencoded/multipart form or
// the same fields as query-style form values; these helpers hide the
// difference and apply the checkbox conventions used by the admin pages.
package formutil

import (
	"net/http"
	"strings"

	"github.com/ovibase/ovibase/internal/app/system/limits"
)

// Parse limits the body to limits.MaxFormSize and parses it. Multipart
// bodies are parsed in memory.
func Parse(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxFormSize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(limits.MaxFormSize)
	}
	return r.ParseForm()
}

// String returns the trimmed value of name.
func String(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// Checked reports whether a checkbox was ticked: "on", "true" or "1".
func Checked(r *http.Request, name string) bool {
	switch r.FormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

// List returns every non-empty value of name. Values may also be given
// comma-separated in a single field.
func List(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.Form[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
