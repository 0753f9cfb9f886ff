// Package apiview fetches JSON from a REST API and renders it as text into a
// display sink. It also reads values from an ambient cookie jar for callers
// that need a CSRF token before writing to the API.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, sqlite/, goquery/).
package apiview
