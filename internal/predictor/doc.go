// Package predictor talks to the remote prediction service. It sends one tongue
// photograph as multipart form data and decodes the classification and diet payload.
// Requests are never retried: a failed attempt is reported to the caller, who decides
// whether the user resubmits.
package predictor
