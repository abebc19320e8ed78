package database

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Migration is one versioned schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// LedgerMigrations defines the accounts-receivable ledger schema. Amounts are
// stored as decimal text; the aggregation invariants are to-the-cent and do
// not survive float storage.
var LedgerMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_gaccdudate",
		SQL: `
			CREATE TABLE IF NOT EXISTS gaccdudate (
				tipo TEXT NOT NULL,
				asiento TEXT NOT NULL,
				sociedad TEXT NOT NULL,
				planta TEXT NOT NULL DEFAULT '',
				moneda TEXT NOT NULL DEFAULT 'EUR',
				colectivo TEXT NOT NULL,
				tercero TEXT NOT NULL,
				vencimiento TEXT NOT NULL,
				forma_pago TEXT NOT NULL DEFAULT '',
				sentido TEXT NOT NULL DEFAULT '',
				importe TEXT NOT NULL,
				pago TEXT NOT NULL DEFAULT '0',
				nivel_reclamacion INTEGER,
				fecha_reclamacion TEXT,
				check_pago INTEGER
			);
			CREATE INDEX IF NOT EXISTS idx_gaccdudate_tercero ON gaccdudate(tercero);
			CREATE INDEX IF NOT EXISTS idx_gaccdudate_vencimiento ON gaccdudate(vencimiento);
			CREATE INDEX IF NOT EXISTS idx_gaccdudate_sociedad ON gaccdudate(sociedad);
		`,
	},
}

// ManagementMigrations defines the management store: clients and follow-up
// actions.
var ManagementMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_clientes",
		SQL: `
			CREATE TABLE IF NOT EXISTS clientes (
				idcliente TEXT PRIMARY KEY,
				razsoc TEXT,
				cif TEXT,
				cif_empresa TEXT
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_acciones_factura",
		SQL: `
			CREATE TABLE IF NOT EXISTS acciones_factura (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				idcliente TEXT,
				tercero TEXT,
				tipo TEXT,
				asiento TEXT,
				accion_tipo TEXT NOT NULL,
				descripcion TEXT,
				aviso TEXT,
				usuario TEXT,
				creado_en TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
				enviada INTEGER NOT NULL DEFAULT 0,
				enviada_en TEXT
			);
			CREATE INDEX IF NOT EXISTS idx_acciones_aviso ON acciones_factura(aviso, enviada);
		`,
	},
}

// Migrator applies versioned migrations to one store.
type Migrator struct {
	db     *DB
	logger *zap.Logger
}

// NewMigrator creates a migrator for one store.
func NewMigrator(db *DB, logger *zap.Logger) *Migrator {
	return &Migrator{db: db, logger: logger}
}

// Apply runs the not-yet-applied migrations in version order.
func (m *Migrator) Apply(migrations []Migration) error {
	if err := m.createMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	ordered := make([]Migration, len(migrations))
	copy(ordered, migrations)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Version < ordered[j].Version })

	for _, migration := range ordered {
		if applied[migration.Version] {
			continue
		}
		m.logger.Info("Applying migration",
			zap.Int("version", migration.Version),
			zap.String("name", migration.Name))

		if _, err := m.db.Exec(migration.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}
		if _, err := m.db.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			migration.Version, migration.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

func (m *Migrator) appliedVersions() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
