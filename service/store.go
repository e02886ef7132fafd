package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/config"
	"github.com/elisa-rivadeneira/gestor-documentario/model"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"golang.org/x/crypto/bcrypt"
)

// Store is the SQLite-backed registry for documents, contracts, attachments
// and staff accounts.
type Store struct {
	db *sql.DB
}

// NewStore opens (and migrates) the registry database.
func NewStore(cfg *config.DatabaseConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	slog.Info("registry store opened", "path", cfg.Path)
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			kind          TEXT NOT NULL,
			direction     TEXT NOT NULL,
			number        TEXT,
			date          TEXT,
			sender        TEXT,
			recipient     TEXT,
			title         TEXT,
			subject       TEXT,
			summary       TEXT,
			year          INTEGER,
			correlative   INTEGER,
			external_link TEXT,
			local_file    TEXT,
			parent_id     INTEGER REFERENCES documents(id) ON DELETE SET NULL,
			created_at    INTEGER NOT NULL,
			updated_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_kind_direction ON documents(kind, direction)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_number ON documents(number)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent_id)`,

		`CREATE TABLE IF NOT EXISTS contracts (
			id                  INTEGER PRIMARY KEY AUTOINCREMENT,
			number              TEXT,
			date                TEXT,
			contract_type       TEXT NOT NULL,
			contracting_party   TEXT,
			counterparty_tax_id TEXT,
			counterparty_name   TEXT,
			contracted_item     TEXT,
			quantity            INTEGER NOT NULL DEFAULT 0,
			unit_price          REAL NOT NULL DEFAULT 0,
			term_days           INTEGER NOT NULL DEFAULT 0,
			extra_days          INTEGER NOT NULL DEFAULT 0,
			summary             TEXT,
			external_link       TEXT,
			local_file          TEXT,
			created_at          INTEGER NOT NULL,
			updated_at          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_type ON contracts(contract_type)`,

		`CREATE TABLE IF NOT EXISTS contract_sites (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			contract_id INTEGER NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
			site_name   TEXT NOT NULL,
			amount      REAL NOT NULL,
			position    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contract_sites_contract ON contract_sites(contract_id)`,

		`CREATE TABLE IF NOT EXISTS attachments (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			document_id   INTEGER REFERENCES documents(id) ON DELETE CASCADE,
			contract_id   INTEGER REFERENCES contracts(id) ON DELETE CASCADE,
			name          TEXT NOT NULL,
			local_file    TEXT,
			external_link TEXT,
			created_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attachments_document ON attachments(document_id)`,
		`CREATE INDEX IF NOT EXISTS idx_attachments_contract ON attachments(contract_id)`,

		`CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			admin         INTEGER NOT NULL DEFAULT 0,
			active        INTEGER NOT NULL DEFAULT 1,
			created_at    INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

var (
	correlativeRe = regexp.MustCompile(`(\d{3,6})`)
	yearRe        = regexp.MustCompile(`(20\d{2})`)
)

// numberParts extracts the year and the correlative from a human number such
// as "01234-2024" for server-side ordering. Either part may be absent.
func numberParts(number string) (year, correlative int) {
	if m := correlativeRe.FindStringSubmatch(number); m != nil {
		correlative, _ = strconv.Atoi(m[1])
	}
	if m := yearRe.FindStringSubmatch(number); m != nil {
		year, _ = strconv.Atoi(m[1])
	}
	return year, correlative
}

const civilDateLayout = "2006-01-02"

func dateToDB(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(civilDateLayout)
}

func dateFromDB(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(civilDateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// ============================================
// Documents
// ============================================

// DocumentFilter is the server-assisted portion of the browse criteria.
type DocumentFilter struct {
	Kind      string
	Direction string
	Search    string // substring over number, title, subject, sender, recipient
	SortBy    string // "numero" (default) or "fecha"
	Page      int
	PageSize  int
}

const documentColumns = `id, kind, direction, number, date, sender, recipient,
	title, subject, summary, year, correlative, external_link, local_file,
	parent_id, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*model.DocumentRecord, error) {
	var d model.DocumentRecord
	var number, date, sender, recipient, title, subject, summary, link, file sql.NullString
	var year, correlative sql.NullInt64
	var parentID sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(&d.ID, &d.Kind, &d.Direction, &number, &date, &sender,
		&recipient, &title, &subject, &summary, &year, &correlative,
		&link, &file, &parentID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	d.Number = number.String
	d.Date = dateFromDB(date)
	d.Sender = sender.String
	d.Recipient = recipient.String
	d.Title = title.String
	d.Subject = subject.String
	d.Summary = summary.String
	d.Year = int(year.Int64)
	d.Correlative = int(correlative.Int64)
	d.ExternalLink = link.String
	d.LocalFile = file.String
	if parentID.Valid {
		d.ParentID = &parentID.Int64
	}
	d.CreatedAt = time.Unix(createdAt, 0)
	d.UpdatedAt = time.Unix(updatedAt, 0)
	return &d, nil
}

// ListDocuments returns a page of documents plus the unpaged total.
func (s *Store) ListDocuments(ctx context.Context, f DocumentFilter) ([]model.DocumentRecord, int, error) {
	var where []string
	var args []any

	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Direction != "" {
		where = append(where, "direction = ?")
		args = append(args, f.Direction)
	}
	if f.Search != "" {
		where = append(where, `(number LIKE ? OR title LIKE ? OR subject LIKE ?
			OR sender LIKE ? OR recipient LIKE ?)`)
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting documents: %w", err)
	}

	// NULLs last in both orderings; the "numero" default sorts newest
	// year and correlative first, matching the registry ledger.
	order := ` ORDER BY year IS NULL, year DESC, correlative IS NULL, correlative DESC, created_at DESC`
	if f.SortBy == "fecha" {
		order = ` ORDER BY date IS NULL, date DESC, created_at DESC`
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	query := "SELECT " + documentColumns + " FROM documents" + clause + order + " LIMIT ? OFFSET ?"
	args = append(args, size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []model.DocumentRecord
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, total, rows.Err()
}

// GetDocument fetches a document with its attachments. Returns nil when the
// id is unknown.
func (s *Store) GetDocument(ctx context.Context, id int64) (*model.DocumentRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	d, err := scanDocument(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching document: %w", err)
	}

	atts, err := s.listAttachments(ctx, "document_id", id)
	if err != nil {
		return nil, err
	}
	d.Attachments = atts
	return d, nil
}

// DocumentNumberExists reports whether any document already carries the exact
// number (case-insensitive). Used as the dedicated duplicate check before a
// create, instead of scanning search results client-side.
func (s *Store) DocumentNumberExists(ctx context.Context, number string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE number = ? COLLATE NOCASE", number).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking document number: %w", err)
	}
	return count > 0, nil
}

// CreateDocument inserts a document, extracting the ordering parts from its
// number, and fills in the generated id and timestamps.
func (s *Store) CreateDocument(ctx context.Context, d *model.DocumentRecord) error {
	now := time.Now()
	d.Year, d.Correlative = numberParts(d.Number)
	d.CreatedAt = now
	d.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (kind, direction, number, date, sender, recipient,
			title, subject, summary, year, correlative, external_link, local_file,
			parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.Kind, d.Direction, nullable(d.Number), dateToDB(d.Date),
		nullable(d.Sender), nullable(d.Recipient), nullable(d.Title),
		nullable(d.Subject), nullable(d.Summary),
		nullableInt(d.Year), nullableInt(d.Correlative),
		nullable(d.ExternalLink), nullable(d.LocalFile),
		d.ParentID, now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}

	d.ID, err = res.LastInsertId()
	return err
}

// UpdateDocument overwrites the mutable fields of an existing document.
func (s *Store) UpdateDocument(ctx context.Context, d *model.DocumentRecord) error {
	now := time.Now()
	d.Year, d.Correlative = numberParts(d.Number)
	d.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		UPDATE documents SET kind = ?, direction = ?, number = ?, date = ?,
			sender = ?, recipient = ?, title = ?, subject = ?, summary = ?,
			year = ?, correlative = ?, external_link = ?, local_file = ?,
			parent_id = ?, updated_at = ?
		WHERE id = ?`,
		d.Kind, d.Direction, nullable(d.Number), dateToDB(d.Date),
		nullable(d.Sender), nullable(d.Recipient), nullable(d.Title),
		nullable(d.Subject), nullable(d.Summary),
		nullableInt(d.Year), nullableInt(d.Correlative),
		nullable(d.ExternalLink), nullable(d.LocalFile),
		d.ParentID, now.Unix(), d.ID)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document; its attachments cascade.
func (s *Store) DeleteDocument(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListReplies returns the letters registered as replies to a document.
func (s *Store) ListReplies(ctx context.Context, parentID int64) ([]model.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE parent_id = ? ORDER BY created_at DESC", parentID)
	if err != nil {
		return nil, fmt.Errorf("listing replies: %w", err)
	}
	defer rows.Close()

	var docs []model.DocumentRecord
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reply: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// DocumentNumbers returns the id-to-number lookup map the reference filter
// resolves parents through.
func (s *Store) DocumentNumbers(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, number FROM documents WHERE number IS NOT NULL AND number != ''")
	if err != nil {
		return nil, fmt.Errorf("listing document numbers: %w", err)
	}
	defer rows.Close()

	numbers := make(map[int64]string)
	for rows.Next() {
		var id int64
		var number string
		if err := rows.Scan(&id, &number); err != nil {
			return nil, fmt.Errorf("scanning document number: %w", err)
		}
		numbers[id] = number
	}
	return numbers, rows.Err()
}

// ============================================
// Contracts
// ============================================

// ContractFilter narrows the contract listing server-side.
type ContractFilter struct {
	ContractType string
	Search       string
	Page         int
	PageSize     int
}

const contractColumns = `id, number, date, contract_type, contracting_party,
	counterparty_tax_id, counterparty_name, contracted_item, quantity,
	unit_price, term_days, extra_days, summary, external_link, local_file,
	created_at, updated_at`

func scanContract(row interface{ Scan(...any) error }) (*model.ContractRecord, error) {
	var c model.ContractRecord
	var number, date, party, taxID, name, item, summary, link, file sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(&c.ID, &number, &date, &c.ContractType, &party, &taxID,
		&name, &item, &c.Quantity, &c.UnitPrice, &c.TermDays, &c.ExtraDays,
		&summary, &link, &file, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Number = number.String
	c.Date = dateFromDB(date)
	c.ContractingParty = party.String
	c.CounterpartyTaxID = taxID.String
	c.CounterpartyName = name.String
	c.ContractedItem = item.String
	c.Summary = summary.String
	c.ExternalLink = link.String
	c.LocalFile = file.String
	c.CreatedAt = time.Unix(createdAt, 0)
	c.UpdatedAt = time.Unix(updatedAt, 0)
	return &c, nil
}

// ListContracts returns a page of contracts, sites included, plus the unpaged
// total. Sites are needed by the browse engine for amount filtering.
func (s *Store) ListContracts(ctx context.Context, f ContractFilter) ([]model.ContractRecord, int, error) {
	var where []string
	var args []any

	if f.ContractType != "" {
		where = append(where, "contract_type = ?")
		args = append(args, f.ContractType)
	}
	if f.Search != "" {
		where = append(where, `(number LIKE ? OR counterparty_name LIKE ?
			OR contracted_item LIKE ? OR summary LIKE ?)`)
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contracts"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting contracts: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	query := "SELECT " + contractColumns + " FROM contracts" + clause +
		" ORDER BY date IS NULL, date DESC, created_at DESC LIMIT ? OFFSET ?"
	args = append(args, size, (page-1)*size)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing contracts: %w", err)
	}
	defer rows.Close()

	var contracts []model.ContractRecord
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning contract: %w", err)
		}
		contracts = append(contracts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range contracts {
		sites, err := s.listSites(ctx, contracts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		contracts[i].Sites = sites
	}
	return contracts, total, nil
}

// GetContract fetches a contract with sites and attachments. Returns nil when
// the id is unknown.
func (s *Store) GetContract(ctx context.Context, id int64) (*model.ContractRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE id = ?", id)
	c, err := scanContract(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching contract: %w", err)
	}

	if c.Sites, err = s.listSites(ctx, id); err != nil {
		return nil, err
	}
	if c.Attachments, err = s.listAttachments(ctx, "contract_id", id); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) listSites(ctx context.Context, contractID int64) ([]model.ContractSite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, site_name, amount FROM contract_sites WHERE contract_id = ? ORDER BY position", contractID)
	if err != nil {
		return nil, fmt.Errorf("listing contract sites: %w", err)
	}
	defer rows.Close()

	var sites []model.ContractSite
	for rows.Next() {
		var site model.ContractSite
		if err := rows.Scan(&site.ID, &site.SiteName, &site.Amount); err != nil {
			return nil, fmt.Errorf("scanning contract site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// CreateContract inserts a contract and its site lines in one transaction.
func (s *Store) CreateContract(ctx context.Context, c *model.ContractRecord) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO contracts (number, date, contract_type, contracting_party,
			counterparty_tax_id, counterparty_name, contracted_item, quantity,
			unit_price, term_days, extra_days, summary, external_link,
			local_file, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullable(c.Number), dateToDB(c.Date), c.ContractType,
		nullable(c.ContractingParty), nullable(c.CounterpartyTaxID),
		nullable(c.CounterpartyName), nullable(c.ContractedItem),
		c.Quantity, c.UnitPrice, c.TermDays, c.ExtraDays,
		nullable(c.Summary), nullable(c.ExternalLink), nullable(c.LocalFile),
		now.Unix(), now.Unix())
	if err != nil {
		return fmt.Errorf("inserting contract: %w", err)
	}

	if c.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	if err := insertSites(ctx, tx, c.ID, c.Sites); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateContract overwrites a contract and replaces its site lines.
func (s *Store) UpdateContract(ctx context.Context, c *model.ContractRecord) error {
	now := time.Now()
	c.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE contracts SET number = ?, date = ?, contract_type = ?,
			contracting_party = ?, counterparty_tax_id = ?, counterparty_name = ?,
			contracted_item = ?, quantity = ?, unit_price = ?, term_days = ?,
			extra_days = ?, summary = ?, external_link = ?, local_file = ?,
			updated_at = ?
		WHERE id = ?`,
		nullable(c.Number), dateToDB(c.Date), c.ContractType,
		nullable(c.ContractingParty), nullable(c.CounterpartyTaxID),
		nullable(c.CounterpartyName), nullable(c.ContractedItem),
		c.Quantity, c.UnitPrice, c.TermDays, c.ExtraDays,
		nullable(c.Summary), nullable(c.ExternalLink), nullable(c.LocalFile),
		now.Unix(), c.ID)
	if err != nil {
		return fmt.Errorf("updating contract: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM contract_sites WHERE contract_id = ?", c.ID); err != nil {
		return fmt.Errorf("clearing contract sites: %w", err)
	}
	if err := insertSites(ctx, tx, c.ID, c.Sites); err != nil {
		return err
	}
	return tx.Commit()
}

func insertSites(ctx context.Context, tx *sql.Tx, contractID int64, sites []model.ContractSite) error {
	for i := range sites {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO contract_sites (contract_id, site_name, amount, position)
			VALUES (?, ?, ?, ?)`,
			contractID, sites[i].SiteName, sites[i].Amount, i)
		if err != nil {
			return fmt.Errorf("inserting contract site: %w", err)
		}
		sites[i].ID, _ = res.LastInsertId()
	}
	return nil
}

// DeleteContract removes a contract; its sites and attachments cascade.
func (s *Store) DeleteContract(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting contract: %w", err)
	}
	return nil
}

// ============================================
// Attachments
// ============================================

func (s *Store) listAttachments(ctx context.Context, ownerColumn string, ownerID int64) ([]model.Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, local_file, external_link, created_at FROM attachments WHERE "+
			ownerColumn+" = ? ORDER BY created_at, id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing attachments: %w", err)
	}
	defer rows.Close()

	var atts []model.Attachment
	for rows.Next() {
		var a model.Attachment
		var file, link sql.NullString
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Name, &file, &link, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		a.LocalFile = file.String
		a.ExternalLink = link.String
		a.CreatedAt = time.Unix(createdAt, 0)
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

// AddDocumentAttachment stores an attachment under a document. The
// exactly-one-of invariant must hold before calling.
func (s *Store) AddDocumentAttachment(ctx context.Context, documentID int64, a *model.Attachment) error {
	return s.addAttachment(ctx, "document_id", documentID, a)
}

// AddContractAttachment stores an attachment under a contract.
func (s *Store) AddContractAttachment(ctx context.Context, contractID int64, a *model.Attachment) error {
	return s.addAttachment(ctx, "contract_id", contractID, a)
}

func (s *Store) addAttachment(ctx context.Context, ownerColumn string, ownerID int64, a *model.Attachment) error {
	now := time.Now()
	a.CreatedAt = now

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO attachments ("+ownerColumn+", name, local_file, external_link, created_at) VALUES (?, ?, ?, ?, ?)",
		ownerID, a.Name, nullable(a.LocalFile), nullable(a.ExternalLink), now.Unix())
	if err != nil {
		return fmt.Errorf("inserting attachment: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// GetAttachment fetches an attachment by id. Returns nil when unknown.
func (s *Store) GetAttachment(ctx context.Context, id int64) (*model.Attachment, error) {
	var a model.Attachment
	var file, link sql.NullString
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, local_file, external_link, created_at FROM attachments WHERE id = ?", id).
		Scan(&a.ID, &a.Name, &file, &link, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching attachment: %w", err)
	}
	a.LocalFile = file.String
	a.ExternalLink = link.String
	a.CreatedAt = time.Unix(createdAt, 0)
	return &a, nil
}

// DeleteAttachment removes an attachment row.
func (s *Store) DeleteAttachment(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM attachments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting attachment: %w", err)
	}
	return nil
}

// ============================================
// Users
// ============================================

// GetUserByUsername fetches an active user account. Returns nil when unknown
// or deactivated.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	var admin, active int
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, name, admin, active, created_at FROM users WHERE username = ?",
		username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &admin, &active, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	u.Admin = admin == 1
	u.Active = active == 1
	u.CreatedAt = time.Unix(createdAt, 0)
	if !u.Active {
		return nil, nil
	}
	return &u, nil
}

// SeedUsers creates the configured staff accounts that do not exist yet,
// hashing their passwords with bcrypt.
func (s *Store) SeedUsers(ctx context.Context, users []config.SeedUser) error {
	for _, u := range users {
		var count int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE username = ?", u.Username).Scan(&count); err != nil {
			return fmt.Errorf("checking user %s: %w", u.Username, err)
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password for %s: %w", u.Username, err)
		}

		admin := 0
		if u.Admin {
			admin = 1
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO users (username, password_hash, name, admin, active, created_at)
			VALUES (?, ?, ?, ?, 1, ?)`,
			u.Username, string(hash), u.Name, admin, time.Now().Unix())
		if err != nil {
			return fmt.Errorf("seeding user %s: %w", u.Username, err)
		}
		slog.Info("seeded user account", "username", u.Username, "admin", u.Admin)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
