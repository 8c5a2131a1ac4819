package report

import "time"

type ExportRequest struct {
	RecordID string `json:"record_id" validate:"omitempty,max=64"`
}

type ExportResponse struct {
	FileName     string     `json:"file_name"`
	RecordID     string     `json:"record_id"`
	DownloadPath string     `json:"download_path"`
	RemoteURL    string     `json:"remote_url,omitempty"`
	ExpiresAt    *time.Time `json:"remote_url_expires_at,omitempty"`
}
