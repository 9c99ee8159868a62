package models

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-01T00:00:00Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"12345" doc:"CI build identifier"`
	GoVersion string `json:"go_version" example:"go1.24" doc:"Go runtime version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Target platform"`
}

type VersionResponse struct {
	Body VersionData
}

// Display models
type DisplayListData struct {
	Displays []string `json:"displays" doc:"Selectable virtual display names"`
	Count    int      `json:"count" example:"1" doc:"Number of displays"`
}

type DisplayListResponse struct {
	Body DisplayListData
}

type DisplaySupportData struct {
	Supported bool   `json:"supported" example:"true" doc:"Whether the evdi kernel module is loaded"`
	Message   string `json:"message,omitempty" doc:"Remediation hint when unsupported"`
}

type DisplaySupportResponse struct {
	Body DisplaySupportData
}

type DisplayStatusData struct {
	State       string `json:"state" example:"active" doc:"Lifecycle state of the virtual display"`
	Active      bool   `json:"active" example:"true" doc:"Whether a session is active"`
	Degraded    bool   `json:"degraded" example:"false" doc:"Whether the active session is running degraded"`
	Width       int    `json:"width,omitempty" example:"1920" doc:"Active mode width in pixels"`
	Height      int    `json:"height,omitempty" example:"1080" doc:"Active mode height in pixels"`
	RefreshRate int    `json:"refresh_rate,omitempty" example:"60" doc:"Active mode refresh rate in Hz"`
	HDR         bool   `json:"hdr,omitempty" example:"false" doc:"Whether HDR was requested for the session"`
}

type DisplayStatusResponse struct {
	Body DisplayStatusData
}

type DisplayCreateData struct {
	Width       int  `json:"width" example:"1920" minimum:"1" doc:"Display width in pixels"`
	Height      int  `json:"height" example:"1080" minimum:"1" doc:"Display height in pixels"`
	RefreshRate int  `json:"refresh_rate" example:"60" minimum:"1" doc:"Refresh rate in Hz"`
	HDR         bool `json:"hdr,omitempty" example:"false" doc:"Request HDR (accepted but not signaled yet)"`
}

type DisplayCreateRequest struct {
	Body DisplayCreateData
}

type DisplayCreatedData struct {
	Status   string `json:"status" example:"active" doc:"Resulting lifecycle state"`
	Degraded bool   `json:"degraded" example:"false" doc:"True when KMS never detected the connector but the session was kept"`
	Message  string `json:"message,omitempty" doc:"Additional status detail"`
}

type DisplayCreatedResponse struct {
	Body DisplayCreatedData
}

type DisplayDestroyedData struct {
	Status  string `json:"status" example:"inactive" doc:"Resulting lifecycle state"`
	Message string `json:"message,omitempty" doc:"Additional status detail"`
}

type DisplayDestroyedResponse struct {
	Body DisplayDestroyedData
}
