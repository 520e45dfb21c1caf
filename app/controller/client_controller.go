package controller

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	"dressing-virtuel/logging"
	"dressing-virtuel/repository"
)

const maxFaceBytes = 10 << 20

// ClientController handles HTTP requests for client identity
type ClientController struct {
	clients repository.ClientRepositoryInterface
}

// NewClientController creates a new ClientController
func NewClientController(clients repository.ClientRepositoryInterface) *ClientController {
	return &ClientController{clients: clients}
}

// UpdateFaceID handles PUT /clients/{id}/faceid.
// The body is either a raw image or a multipart form with an "image" file.
func (c *ClientController) UpdateFaceID(w http.ResponseWriter, r *http.Request) {
	clientID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || clientID <= 0 {
		writeBadRequest(w, "invalid client id")
		return
	}

	face, err := readImageBody(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(face)); err != nil {
		writeBadRequest(w, "reference face must be a JPEG or PNG image")
		return
	}

	if err := c.clients.UpdateReferenceFace(r.Context(), clientID, face); err != nil {
		writeError(w, "faceid", err)
		return
	}

	logging.Info().Int("client_id", clientID).Int("bytes", len(face)).Msg("🙂 Reference face stored")
	w.WriteHeader(http.StatusNoContent)
}

func readImageBody(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFaceBytes); err != nil {
			return nil, fmt.Errorf("invalid multipart body: %v", err)
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			return nil, fmt.Errorf("image file is required")
		}
		defer f.Close()
		return readLimited(f)
	}
	return readLimited(r.Body)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFaceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %v", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty")
	}
	if len(data) > maxFaceBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxFaceBytes)
	}
	return data, nil
}
