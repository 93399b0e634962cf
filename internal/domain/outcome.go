package domain

import (
	"encoding/json"
	"strings"
)

// Outcome is the remote server's verdict on a presented credential.
// Beyond the display fields the payload is opaque; the extras are kept only
// so history preserves what the server said.
type Outcome struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	SubjectName     string `json:"subject_name"`
	SubjectPhotoRef string `json:"subject_photo_ref,omitempty"`

	SubjectID int64             `json:"subject_id,omitempty"`
	PortalID  int64             `json:"portal_id,omitempty"`
	Event     int64             `json:"event,omitempty"`
	HasPhoto  bool              `json:"has_photo,omitempty"`
	Actions   []json.RawMessage `json:"actions,omitempty"`
}

// PhotoURL resolves the subject photo reference against the server base URL.
// Returns "" when the outcome carries no photo.
func (o Outcome) PhotoURL(baseURL string) string {
	if o.SubjectPhotoRef == "" {
		return ""
	}
	if strings.HasPrefix(o.SubjectPhotoRef, "http://") || strings.HasPrefix(o.SubjectPhotoRef, "https://") {
		return o.SubjectPhotoRef
	}
	return strings.TrimSuffix(baseURL, "/") + o.SubjectPhotoRef
}

// FailureKind classifies why a validation produced no outcome.
// The arbitrator treats every kind the same; the kind is diagnostics only.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureMalformed FailureKind = "malformed"
)

// Failure is the diagnostic recorded in history when validation fails.
type Failure struct {
	Kind       FailureKind `json:"kind"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code,omitempty"`
}

// AccessRecord is one row of the server-side access log for a credential.
type AccessRecord struct {
	Granted     bool
	Description string
	At          string
	Reader      string
	Sector      string
}

// DeviceInfo describes the kiosk host. It is attached to validation requests
// when enabled so the server can tell stations apart.
type DeviceInfo struct {
	Hostname   string   `json:"deviceName"`
	OSName     string   `json:"osName"`
	Arch       string   `json:"arch"`
	CPUArchs   []string `json:"supportedCpuArchitectures"`
	IPAddress  string   `json:"ipAddress,omitempty"`
	NumCPU     int      `json:"numCpu"`
	AppVersion string   `json:"appVersion,omitempty"`
}
