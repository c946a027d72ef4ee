package sqlstore

import (
	"database/sql"
	"fmt"
)

// dialect holds the SQL that differs between backends.
type dialect struct {
	name           string
	schema         []string
	lockGroupQuery string
}

// Tables are created parents first because of the foreign key constraints.
// Amounts are kept as decimal text in SQLite so no precision is lost. In MySQL
// single amounts fit DECIMAL(12,2), which is calculator.MaxAmount; balances
// and debts add up many of them and get DECIMAL(15,2).
var sqliteDialect = dialect{
	name: DriverSQLite,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS split_groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL,
    created_at INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    name TEXT NOT NULL,
    seq INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE (group_id, name),
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS balances (
    member_id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE,
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS expenses (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount TEXT NOT NULL,
    payer_id TEXT,
    date TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (payer_id) REFERENCES members(id) ON DELETE SET NULL
)`,
		`CREATE TABLE IF NOT EXISTS expense_participants (
    expense_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    PRIMARY KEY (expense_id, member_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS debts (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    borrower_id TEXT NOT NULL,
    lender_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    seq INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (borrower_id) REFERENCES members(id) ON DELETE CASCADE,
    FOREIGN KEY (lender_id) REFERENCES members(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS payments (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    from_member_id TEXT NOT NULL,
    to_member_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (from_member_id) REFERENCES members(id) ON DELETE CASCADE,
    FOREIGN KEY (to_member_id) REFERENCES members(id) ON DELETE CASCADE
)`,
		`CREATE INDEX IF NOT EXISTS idx_members_group_id ON members(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_balances_group_id ON balances(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expense_participants_member_id ON expense_participants(member_id)`,
		`CREATE INDEX IF NOT EXISTS idx_debts_group_id ON debts(group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_group_id ON payments(group_id)`,
	},
	lockGroupQuery: "SELECT id FROM split_groups WHERE id = ?",
}

var mysqlDialect = dialect{
	name: DriverMySQL,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS split_groups (
    id VARCHAR(36) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    currency VARCHAR(4) NOT NULL,
    created_at BIGINT NOT NULL
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS members (
    id VARCHAR(36) PRIMARY KEY,
    group_id VARCHAR(36) NOT NULL,
    name VARCHAR(255) NOT NULL,
    seq INT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE KEY uq_members_group_name (group_id, name),
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS balances (
    member_id VARCHAR(36) PRIMARY KEY,
    group_id VARCHAR(36) NOT NULL,
    amount DECIMAL(15,2) NOT NULL,
    INDEX idx_balances_group_id (group_id),
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE,
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS expenses (
    id VARCHAR(36) PRIMARY KEY,
    group_id VARCHAR(36) NOT NULL,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL,
    amount DECIMAL(12,2) NOT NULL,
    payer_id VARCHAR(36) NULL,
    date VARCHAR(30) NOT NULL,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL,
    INDEX idx_expenses_group_id (group_id),
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (payer_id) REFERENCES members(id) ON DELETE SET NULL
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS expense_participants (
    expense_id VARCHAR(36) NOT NULL,
    member_id VARCHAR(36) NOT NULL,
    seq INT NOT NULL,
    PRIMARY KEY (expense_id, member_id),
    INDEX idx_expense_participants_member_id (member_id),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE,
    FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS debts (
    id VARCHAR(36) PRIMARY KEY,
    group_id VARCHAR(36) NOT NULL,
    borrower_id VARCHAR(36) NOT NULL,
    lender_id VARCHAR(36) NOT NULL,
    amount DECIMAL(15,2) NOT NULL,
    seq INT NOT NULL,
    created_at BIGINT NOT NULL,
    INDEX idx_debts_group_id (group_id),
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (borrower_id) REFERENCES members(id) ON DELETE CASCADE,
    FOREIGN KEY (lender_id) REFERENCES members(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS payments (
    id VARCHAR(36) PRIMARY KEY,
    group_id VARCHAR(36) NOT NULL,
    from_member_id VARCHAR(36) NOT NULL,
    to_member_id VARCHAR(36) NOT NULL,
    amount DECIMAL(12,2) NOT NULL,
    note TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    INDEX idx_payments_group_id (group_id),
    FOREIGN KEY (group_id) REFERENCES split_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (from_member_id) REFERENCES members(id) ON DELETE CASCADE,
    FOREIGN KEY (to_member_id) REFERENCES members(id) ON DELETE CASCADE
) ENGINE=InnoDB`,
	},
	lockGroupQuery: "SELECT id FROM split_groups WHERE id = ? FOR UPDATE",
}

// runMigrations executes the schema setup one statement at a time, since the
// MySQL driver rejects multi-statement strings by default.
func runMigrations(db *sql.DB, d dialect) error {
	for _, stmt := range d.schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s migration failed: %w", d.name, err)
		}
	}
	return nil
}
