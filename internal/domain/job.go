package domain

// Job is the payload dispatched for asynchronous image processing.
// LocalPath is the blob object name of the original upload.
type Job struct {
	UserID    int64  `json:"userId"`
	FileID    int64  `json:"fileId"`
	LocalPath string `json:"localPath"`
}
