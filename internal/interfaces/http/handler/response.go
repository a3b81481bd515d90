package handler

// HealthData is the body of the health endpoint
// @Description Health check result
type HealthData struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"ok"`
	Time     string `json:"time" example:"2024-01-15T10:30:00Z"`
}
