package relationaldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ApplicationStatus is the listing state of a company application.
type ApplicationStatus string

const (
	StatusPending ApplicationStatus = "pending"
	StatusActive  ApplicationStatus = "active"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	return s == StatusPending || s == StatusActive
}

// Application is a company's request to be listed. It lives off ledger
// until the platform admin activates the company on chain.
type Application struct {
	ID            int64
	Wallet        string // address of the company admin
	Name          string
	Description   string
	Sector        string
	OfferingURL   string
	LogoURL       string
	InitialShares uint64
	PricePerShare uint64
	Status        ApplicationStatus

	// Set on approval
	LegalAgreementURL string
	CompanyID         uint64

	CreatedAt time.Time
}

// Validate checks the fields an applicant must supply.
func (a *Application) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"wallet", a.Wallet},
		{"name", a.Name},
		{"description", a.Description},
		{"sector", a.Sector},
		{"offering_url", a.OfferingURL},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

func applicationSchema(idColumn string) []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS company_applications (
			` + idColumn + `,
			wallet              TEXT NOT NULL,
			name                TEXT NOT NULL,
			description         TEXT NOT NULL,
			sector              TEXT NOT NULL,
			offering_url        TEXT NOT NULL,
			logo_url            TEXT NOT NULL,
			initial_shares      BIGINT NOT NULL,
			price_per_share     BIGINT NOT NULL,
			status              TEXT NOT NULL,
			legal_agreement_url TEXT NOT NULL,
			company_id          BIGINT,
			created_at          BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS company_applications_wallet_idx ON company_applications (wallet, id)`,
		`CREATE INDEX IF NOT EXISTS company_applications_status_idx ON company_applications (status, id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS company_applications_company_idx ON company_applications (company_id)`,
	}
}

// CreateApplication stores a pending application and fills in its ID,
// status and creation time.
func (j *Journal) CreateApplication(ctx context.Context, a *Application) error {
	if err := a.Validate(); err != nil {
		return NewDataError("create_application", "invalid application", err)
	}
	db, err := j.handle()
	if err != nil {
		return err
	}
	a.Status = StatusPending
	a.LegalAgreementURL = ""
	a.CompanyID = 0
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	query := j.rebind(`INSERT INTO company_applications
		(wallet, name, description, sector, offering_url, logo_url, initial_shares,
		 price_per_share, status, legal_agreement_url, company_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', NULL, ?) RETURNING id`)
	err = db.QueryRowContext(ctx, query,
		a.Wallet, a.Name, a.Description, a.Sector, a.OfferingURL, a.LogoURL,
		int64(a.InitialShares), int64(a.PricePerShare), string(a.Status), a.CreatedAt.UnixNano(),
	).Scan(&a.ID)
	if err != nil {
		return NewQueryError("create_application", "failed to insert application", err)
	}
	return nil
}

const applicationColumns = `SELECT id, wallet, name, description, sector, offering_url, logo_url,
	initial_shares, price_per_share, status, legal_agreement_url, company_id, created_at
	FROM company_applications`

// ListApplications returns applications in submission order. An empty
// status lists all of them.
func (j *Journal) ListApplications(ctx context.Context, status ApplicationStatus) ([]*Application, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	db, err := j.handle()
	if err != nil {
		return nil, err
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	var rows *sql.Rows
	if status == "" {
		rows, err = db.QueryContext(ctx, applicationColumns+` ORDER BY id`)
	} else {
		rows, err = db.QueryContext(ctx, j.rebind(applicationColumns+` WHERE status = ? ORDER BY id`), string(status))
	}
	if err != nil {
		return nil, NewQueryError("list_applications", "failed to query applications", err)
	}
	defer rows.Close()

	var list []*Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, NewDataError("list_applications", "failed to scan application", err)
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, NewQueryError("list_applications", "failed to iterate applications", err)
	}
	return list, nil
}

// Application returns the application with the given ID.
func (j *Journal) Application(ctx context.Context, id int64) (*Application, error) {
	return j.getApplication(ctx, "get_application", applicationColumns+` WHERE id = ?`, id)
}

// ApplicationByWallet returns the first application filed by wallet.
func (j *Journal) ApplicationByWallet(ctx context.Context, wallet string) (*Application, error) {
	return j.getApplication(ctx, "get_application_by_wallet",
		applicationColumns+` WHERE wallet = ? ORDER BY id LIMIT 1`, wallet)
}

func (j *Journal) getApplication(ctx context.Context, op, query string, arg interface{}) (*Application, error) {
	db, err := j.handle()
	if err != nil {
		return nil, err
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	a, err := scanApplication(db.QueryRowContext(ctx, j.rebind(query), arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, NewQueryError(op, "failed to query application", err)
	}
	return a, nil
}

// ActivateApplication marks a pending application active once its company
// exists on chain, recording the legal agreement and the company ID.
func (j *Journal) ActivateApplication(ctx context.Context, id int64, legalAgreementURL string, companyID uint64) (*Application, error) {
	if legalAgreementURL == "" {
		return nil, NewDataError("activate_application", "invalid approval", fmt.Errorf("%w: legal_agreement_url", ErrMissingField))
	}
	db, err := j.handle()
	if err != nil {
		return nil, err
	}
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	res, err := db.ExecContext(ctx, j.rebind(`UPDATE company_applications
		SET status = ?, legal_agreement_url = ?, company_id = ?
		WHERE id = ? AND status = ?`),
		string(StatusActive), legalAgreementURL, int64(companyID), id, string(StatusPending))
	if err != nil {
		return nil, NewQueryError("activate_application", "failed to update application", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, NewQueryError("activate_application", "failed to read affected rows", err)
	}

	a, err := j.Application(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return a, ErrApplicationActive
	}
	return a, nil
}

func scanApplication(s scanner) (*Application, error) {
	var (
		a             Application
		shares, price int64
		status        string
		companyID     sql.NullInt64
		created       int64
	)
	err := s.Scan(&a.ID, &a.Wallet, &a.Name, &a.Description, &a.Sector, &a.OfferingURL, &a.LogoURL,
		&shares, &price, &status, &a.LegalAgreementURL, &companyID, &created)
	if err != nil {
		return nil, err
	}
	a.InitialShares = uint64(shares)
	a.PricePerShare = uint64(price)
	a.Status = ApplicationStatus(status)
	if companyID.Valid {
		a.CompanyID = uint64(companyID.Int64)
	}
	a.CreatedAt = time.Unix(0, created).UTC()
	return &a, nil
}
