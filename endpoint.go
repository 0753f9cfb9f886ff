package apiview

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the address of a locally running API server.
const DefaultBaseURL = "http://localhost:8000"

// Endpoint describes a REST collection exposed by the API.
type Endpoint struct {
	Name string
	Path string
}

// Endpoints lists the collections registered on the API router.
var Endpoints = []Endpoint{
	{Name: "users", Path: "/api/users/"},
	{Name: "tutors", Path: "/api/tutors/"},
	{Name: "students", Path: "/api/students/"},
	{Name: "schools", Path: "/api/schools/"},
	{Name: "registrations", Path: "/api/registrations/"},
	{Name: "visits", Path: "/api/visits/"},
	{Name: "participations", Path: "/api/participations/"},
	{Name: "places", Path: "/api/places/"},
	{Name: "projects", Path: "/api/projects/"},
	{Name: "project-participations", Path: "/api/project-participations/"},
	{Name: "editions", Path: "/api/editions/"},
	{Name: "forms", Path: "/api/forms/"},
	{Name: "form-entries", Path: "/api/form-entries/"},
	{Name: "documents", Path: "/api/documents/"},
}

// LookupEndpoint returns the catalog entry with the given name.
func LookupEndpoint(name string) (Endpoint, bool) {
	for _, e := range Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return Endpoint{}, false
}

// ResolveEndpoint turns a catalog name, path, or absolute URL into the URL to
// request. Catalog names map to their path. Relative references are resolved
// against baseURL when one is given and are otherwise returned unchanged, so
// that the transport decides whether they are usable.
func ResolveEndpoint(baseURL, endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", Errorf(EINVALID, "endpoint required")
	}

	if e, ok := LookupEndpoint(endpoint); ok {
		endpoint = e.Path
	}

	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", Errorf(EINVALID, "invalid endpoint %q: %v", endpoint, err)
	}
	if ref.IsAbs() || baseURL == "" {
		return endpoint, nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", Errorf(EINVALID, "invalid base URL %q: %v", baseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}
