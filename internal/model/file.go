package model

// UploadResponse is returned after a file reaches the EduSync store.
type UploadResponse struct {
	URL         string `json:"url"`
	BlobName    string `json:"blobName"`
	DownloadURL string `json:"downloadUrl"`
}
