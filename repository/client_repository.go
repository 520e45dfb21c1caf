package repository

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"dressing-virtuel/db"
	"dressing-virtuel/logging"
)

// ErrClientNotFound is returned when no client row matches the id
var ErrClientNotFound = errors.New("client not found")

// ClientRepository handles database operations for clients.
// The reference face is stored base64-encoded in tb_clients.face_id.
type ClientRepository struct{}

// NewClientRepository creates a new ClientRepository
func NewClientRepository() *ClientRepository {
	return &ClientRepository{}
}

// Ensure ClientRepository implements ClientRepositoryInterface
var _ ClientRepositoryInterface = (*ClientRepository)(nil)

// GetReferenceFace returns the decoded reference face of a client, or nil when none is stored
func (r *ClientRepository) GetReferenceFace(ctx context.Context, clientID int) ([]byte, error) {
	var encoded sql.NullString
	query := `SELECT face_id FROM tb_clients WHERE id = $1`
	err := db.DB.QueryRowContext(ctx, query, clientID).Scan(&encoded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logging.Error().Err(err).Int("client_id", clientID).Msg("❌ Error fetching reference face")
		return nil, fmt.Errorf("failed to get reference face: %w", err)
	}

	if !encoded.Valid || encoded.String == "" {
		return nil, nil
	}

	face, err := base64.StdEncoding.DecodeString(encoded.String)
	if err != nil {
		return nil, fmt.Errorf("stored reference face for client %d is not valid base64: %w", clientID, err)
	}
	return face, nil
}

// UpdateReferenceFace stores a new reference face for a client
func (r *ClientRepository) UpdateReferenceFace(ctx context.Context, clientID int, face []byte) error {
	query := `UPDATE tb_clients SET face_id = $1 WHERE id = $2`
	res, err := db.DB.ExecContext(ctx, query, base64.StdEncoding.EncodeToString(face), clientID)
	if err != nil {
		logging.Error().Err(err).Int("client_id", clientID).Msg("❌ Error updating reference face")
		return fmt.Errorf("failed to update reference face: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrClientNotFound
	}

	logging.Info().Int("client_id", clientID).Msg("✅ Reference face updated")
	return nil
}
