package models

// ErrorResponse mirrors the failure shape of the prediction endpoint so that
// browser code reading `success`/`error` handles both services the same way.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Type    string `json:"type,omitempty"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Time           string `json:"time"`
	Upstream       string `json:"upstream,omitempty"`
	UpstreamStatus string `json:"upstream_status,omitempty"`
}

// PrakritiTypeInfo is the public description of one constitution type
type PrakritiTypeInfo struct {
	Elements        string   `json:"elements"`
	Description     string   `json:"description"`
	Characteristics []string `json:"characteristics"`
}

// PrakritiCatalogResponse lists every constitution type the classifier can return
type PrakritiCatalogResponse struct {
	PrakritiTypes []string                    `json:"prakriti_types"`
	Details       map[string]PrakritiTypeInfo `json:"details"`
}
