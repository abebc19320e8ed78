package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
	"github.com/developersatisa/gestor-back-facturas-pendientes/pkg/database"
)

// ActionRepository reads and updates follow-up actions in the management
// store. Only the sent flag and timestamp are ever written here.
type ActionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewActionRepository creates a follow-up action repository.
func NewActionRepository(db *database.DB, logger *zap.Logger) port.ActionRepository {
	return &ActionRepository{db: db, logger: logger}
}

// ListDue returns actions with a reminder at or before cutoff that have not
// been marked sent, fully materialized.
func (r *ActionRepository) ListDue(ctx context.Context, cutoff time.Time) ([]entity.FollowUpAction, error) {
	query := `
		SELECT id, idcliente, tercero, tipo, asiento, accion_tipo, descripcion,
			aviso, usuario, creado_en, enviada, enviada_en
		FROM acciones_factura
		WHERE aviso IS NOT NULL AND aviso <= ? AND enviada = 0
		ORDER BY aviso ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff.Format(time.RFC3339))
	if err != nil {
		r.logger.Error("Failed to list due actions", zap.Error(err))
		return nil, fmt.Errorf("failed to list due actions: %w", err)
	}
	defer rows.Close()

	var actions []entity.FollowUpAction
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read due actions: %w", err)
	}

	return actions, nil
}

// MarkSent flips the sent flag and records the send timestamp. Updating an
// unknown or already-sent action is an error so a lost update is visible.
func (r *ActionRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithTransaction(func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE acciones_factura
			SET enviada = 1, enviada_en = ?
			WHERE id = ? AND enviada = 0
		`, at.Format(time.RFC3339), id)
		if err != nil {
			r.logger.Error("Failed to mark action sent", zap.Int64("id", id), zap.Error(err))
			return fmt.Errorf("failed to mark action sent: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check mark result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("action %d not found or already marked sent", id)
		}
		return nil
	})
}

func scanAction(rows *sql.Rows) (entity.FollowUpAction, error) {
	var action entity.FollowUpAction
	var clientID, tercero, invoiceType, entry, description, author sql.NullString
	var remindAt, createdAt, sentAt sql.NullString

	err := rows.Scan(
		&action.ID,
		&clientID,
		&tercero,
		&invoiceType,
		&entry,
		&action.Kind,
		&description,
		&remindAt,
		&author,
		&createdAt,
		&action.Sent,
		&sentAt,
	)
	if err != nil {
		return entity.FollowUpAction{}, fmt.Errorf("failed to scan action: %w", err)
	}

	action.ClientID = clientID.String
	action.Tercero = tercero.String
	action.InvoiceType = invoiceType.String
	action.InvoiceEntry = entry.String
	action.Description = description.String
	action.Author = author.String

	if remindAt.Valid {
		t, err := time.Parse(time.RFC3339, remindAt.String)
		if err != nil {
			return entity.FollowUpAction{}, fmt.Errorf("failed to parse reminder timestamp %q: %w", remindAt.String, err)
		}
		action.RemindAt = &t
	}
	if createdAt.Valid {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			action.CreatedAt = t
		}
	}
	if sentAt.Valid {
		if t, err := time.Parse(time.RFC3339, sentAt.String); err == nil {
			action.SentAt = &t
		}
	}

	return action, nil
}
