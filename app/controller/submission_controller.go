package controller

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"dressing-virtuel/logging"
	"dressing-virtuel/models"
	"dressing-virtuel/service"
)

const maxSubmissionMemory = 32 << 20

// ImageIntake stores submitted photos in the temp directory
type ImageIntake interface {
	SaveImage(r io.Reader) (string, error)
	ResolvePaths(paths []string) ([]string, error)
	FromDrive(ctx context.Context, folderID string) ([]string, int, error)
	Discard(paths []string)
}

// SubmissionRunner schedules or runs submissions
type SubmissionRunner interface {
	Eager() bool
	Enqueue(ctx context.Context, submission models.Submission) (*models.SubmissionReport, error)
	RunNow(ctx context.Context, submission models.Submission) (*models.SubmissionReport, error)
}

// SubmissionController handles HTTP requests for photo submissions
type SubmissionController struct {
	intake ImageIntake
	queue  SubmissionRunner
}

// NewSubmissionController creates a new SubmissionController
func NewSubmissionController(intake ImageIntake, queue SubmissionRunner) *SubmissionController {
	return &SubmissionController{intake: intake, queue: queue}
}

// queuedResponse is returned when a submission runs in the background
type queuedResponse struct {
	SubmissionID string `json:"submission_id"`
	ClientID     int    `json:"client_id"`
	Images       int    `json:"images"`
	Skipped      int    `json:"skipped,omitempty"`
	Status       string `json:"status"`
}

// Submit handles POST /wardrobe/submissions.
// Accepts multipart (client_id + images or images[] files) or JSON {client_id, images: [temp paths]}.
// ?wait=true runs the pipeline before answering.
func (c *SubmissionController) Submit(w http.ResponseWriter, r *http.Request) {
	logging.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("📥 Submit: request received")

	var (
		clientID int
		paths    []string
		err      error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		clientID, paths, err = c.readMultipart(r)
	} else {
		clientID, paths, err = c.readJSON(r)
	}
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	c.run(w, r, "submit", service.NewSubmission(clientID, paths), 0)
}

// SubmitFromDrive handles POST /wardrobe/submissions/drive
func (c *SubmissionController) SubmitFromDrive(w http.ResponseWriter, r *http.Request) {
	var req models.DriveSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, validationMessage(err))
		return
	}

	paths, skipped, err := c.intake.FromDrive(r.Context(), req.FolderID)
	if err != nil {
		writeError(w, "submit_drive", err)
		return
	}
	if len(paths) == 0 {
		writeBadRequest(w, "no image could be downloaded from the folder")
		return
	}

	c.run(w, r, "submit_drive", service.NewSubmission(req.ClientID, paths), skipped)
}

func (c *SubmissionController) run(w http.ResponseWriter, r *http.Request, handler string, submission models.Submission, skipped int) {
	wait := c.queue.Eager()
	if v := r.URL.Query().Get("wait"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			wait = true
		}
	}

	if wait {
		report, err := c.queue.RunNow(r.Context(), submission)
		if err != nil {
			writeError(w, handler, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
		return
	}

	if _, err := c.queue.Enqueue(r.Context(), submission); err != nil {
		c.intake.Discard(submission.ImagePaths)
		writeError(w, handler, err)
		return
	}

	writeJSON(w, http.StatusAccepted, queuedResponse{
		SubmissionID: submission.ID,
		ClientID:     submission.ClientID,
		Images:       len(submission.ImagePaths),
		Skipped:      skipped,
		Status:       "queued",
	})
}

func (c *SubmissionController) readJSON(r *http.Request) (int, []string, error) {
	var req models.SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, nil, fmt.Errorf("Invalid request body: %v", err)
	}
	if err := validate.Struct(req); err != nil {
		return 0, nil, fmt.Errorf("%s", validationMessage(err))
	}
	paths, err := c.intake.ResolvePaths(req.Images)
	if err != nil {
		return 0, nil, err
	}
	return req.ClientID, paths, nil
}

func (c *SubmissionController) readMultipart(r *http.Request) (int, []string, error) {
	if err := r.ParseMultipartForm(maxSubmissionMemory); err != nil {
		return 0, nil, fmt.Errorf("Invalid multipart body: %v", err)
	}

	clientID, err := strconv.Atoi(r.FormValue("client_id"))
	if err != nil || clientID <= 0 {
		return 0, nil, fmt.Errorf("client_id must be a positive integer")
	}

	// browsers and form libraries send repeated files as either images or images[]
	files := append(r.MultipartForm.File["images"], r.MultipartForm.File["images[]"]...)
	if len(files) == 0 {
		return 0, nil, fmt.Errorf("at least one file is required in images")
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := c.saveUpload(fh)
		if err != nil {
			c.intake.Discard(paths)
			return 0, nil, err
		}
		paths = append(paths, path)
	}
	return clientID, paths, nil
}

func (c *SubmissionController) saveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return c.intake.SaveImage(f)
}
