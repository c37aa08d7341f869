// Package qr derives a student boleta from a scanned credential payload.
package qr

import (
	"net/url"
	"regexp"

	appErrors "github.com/cecyt9/prefect-gate-api/pkg/errors"
)

var boletaPattern = regexp.MustCompile(`\d{10}`)

// ExtractBoleta parses a scanned payload into a boleta. Structured payloads
// are URLs carrying a `boleta` query parameter; degraded or legacy codes may
// hold the bare number somewhere in the raw string, so the first 10-digit
// run is the fallback.
func ExtractBoleta(payload string) (string, error) {
	if u, err := url.Parse(payload); err == nil {
		if boleta := u.Query().Get("boleta"); boleta != "" {
			return boleta, nil
		}
	}

	if boleta := boletaPattern.FindString(payload); boleta != "" {
		return boleta, nil
	}

	return "", appErrors.Clone(appErrors.ErrInvalidPayload, "")
}
