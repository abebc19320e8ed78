package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

// ClientRepository reads the client store. Keys are terceros without leading
// zeros; absent identifiers are omitted from the result, never an error.
type ClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClientRepository creates a client store reader.
func NewClientRepository(db *sql.DB, logger *zap.Logger) port.ClientRepository {
	return &ClientRepository{db: db, logger: logger}
}

// GetByIDs resolves client identifiers to client records.
func (r *ClientRepository) GetByIDs(ctx context.Context, ids []string) (map[string]entity.Client, error) {
	if len(ids) == 0 {
		return map[string]entity.Client{}, nil
	}

	query := fmt.Sprintf(`
		SELECT idcliente, razsoc, cif
		FROM clientes
		WHERE idcliente IN (%s)
	`, placeholders(len(ids)))

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query clients", zap.Error(err))
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make(map[string]entity.Client, len(ids))
	for rows.Next() {
		var c entity.Client
		var name, taxID sql.NullString
		if err := rows.Scan(&c.ID, &name, &taxID); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.Name = name.String
		c.TaxID = taxID.String
		clients[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}

	return clients, nil
}
