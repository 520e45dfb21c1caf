package models

// Submission is one batch of client photos waiting for identification
type Submission struct {
	ID         string   `json:"id"`
	ClientID   int      `json:"client_id"`
	ImagePaths []string `json:"images"`
}

// SubmissionRequest is the JSON body of POST /wardrobe/submissions
type SubmissionRequest struct {
	ClientID int      `json:"client_id" validate:"required,gt=0"`
	Images   []string `json:"images" validate:"required,min=1,dive,required"`
}

// DriveSubmissionRequest is the JSON body of POST /wardrobe/submissions/drive
type DriveSubmissionRequest struct {
	ClientID int    `json:"client_id" validate:"required,gt=0"`
	FolderID string `json:"folder_id" validate:"required"`
}

// SubmissionReport summarizes one pipeline run. Success is true once the run
// gets past its preconditions, whatever happened to individual units.
type SubmissionReport struct {
	SubmissionID       string `json:"submission_id"`
	ClientID           int    `json:"client_id"`
	Success            bool   `json:"success"`
	Images             int    `json:"images"`
	ImagesSkipped      int    `json:"images_skipped"`
	Persons            int    `json:"persons"`
	PersonsUnmatched   int    `json:"persons_unmatched"`
	PersonsUnsegmented int    `json:"persons_unsegmented"`
	Garments           int    `json:"garments"`
	GarmentsSkipped    int    `json:"garments_skipped"`
	GarmentsPersisted  int    `json:"garments_persisted"`
}

// DriveImage is an image file listed in a Google Drive folder
type DriveImage struct {
	FileID   string `json:"fileId"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}
