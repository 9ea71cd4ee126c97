package backend

// User is the identity record returned by the backend auth endpoints
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	HasAccess bool   `json:"hasAccess"`
}

// LoginResponse is returned by the sso-login endpoint
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Job is a scheduled job record, shared by both job categories.
// Timestamps are kept as the opaque strings sent by the backend, nil means the event never happened.
type Job struct {
	ID                    int     `json:"id"`
	JobName               string  `json:"jobName"`
	Schedule              string  `json:"schedule"`
	ServerName            string  `json:"serverName"`
	FileLocation          string  `json:"fileLocation"`
	FilePattern           string  `json:"filePattern"`
	LastSuccessfulAttempt *string `json:"lastSuccessfulAttempt"`
	LastSensingAttempt    *string `json:"lastSensingAttempt"`
	Status                string  `json:"status"`
}

// known job statuses, any other value is passed through as is
const (
	StatusRunning = "running"
	StatusFailed  = "failed"
	StatusPaused  = "paused"
)

// IsPaused reports whether the job is paused, used to pick the toggle action label
func (j Job) IsPaused() bool { return j.Status == StatusPaused }

// CreateJobRequest is the user supplied subset of job fields
type CreateJobRequest struct {
	JobName      string `json:"jobName"`
	Schedule     string `json:"schedule"`
	ServerName   string `json:"serverName"`
	FileLocation string `json:"fileLocation"`
	FilePattern  string `json:"filePattern"`
}

// Stats is the aggregate view returned by the dashboard stats endpoint
type Stats struct {
	Total              int     `json:"total"`
	Running            int     `json:"running"`
	Failed             int     `json:"failed"`
	Paused             int     `json:"paused"`
	LastSuccessfulRun  *string `json:"lastSuccessfulRun"`
	AverageSuccessRate float64 `json:"averageSuccessRate"`
}
