// Package domain contains core domain types for the onboarding front-end.
package domain

// Template is a backend-provided descriptor of a prebuilt application
// used to seed onboarding.
type Template struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Widgets     []string `json:"widgets"`
	Sources     []Source `json:"sources"`
}

// Source names a data source used by a template.
type Source struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// TemplateManifests is the body returned by the library apps endpoint.
type TemplateManifests struct {
	Templates []Template `json:"template_app_manifests"`
}
