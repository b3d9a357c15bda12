package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"env-access-broker/internal/domain/envrequests"
)

type EnvRequestsRepo struct {
	db *sql.DB
}

func NewEnvRequestsRepo(db *sql.DB) *EnvRequestsRepo {
	return &EnvRequestsRepo{db: db}
}

const envRequestColumns = `
	id,
	env_name, env_purpose, use_case, data_domain,
	instance_type, ide_option, framework_option,
	requested_by, status, created_at`

func (r *EnvRequestsRepo) Create(ctx context.Context, req envrequests.EnvRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO env_requests (`+envRequestColumns+`
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		req.ID,
		req.EnvName,
		req.EnvPurpose,
		req.UseCase,
		req.DataDomain,
		req.InstanceType,
		req.IDEOption,
		req.FrameworkOption,
		req.RequestedBy,
		string(req.Status),
		req.CreatedAt,
	)
	return err
}

func (r *EnvRequestsRepo) GetByID(ctx context.Context, id string) (envrequests.EnvRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return envrequests.EnvRequest{}, envrequests.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT`+envRequestColumns+`
		FROM env_requests
		WHERE id = $1
	`, id)

	req, err := scanEnvRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return envrequests.EnvRequest{}, envrequests.ErrNotFound
		}
		return envrequests.EnvRequest{}, err
	}
	return req, nil
}

func (r *EnvRequestsRepo) List(ctx context.Context) ([]envrequests.EnvRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT`+envRequestColumns+`
		FROM env_requests
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]envrequests.EnvRequest, 0)
	for rows.Next() {
		req, err := scanEnvRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEnvRequest(s scanner) (envrequests.EnvRequest, error) {
	var req envrequests.EnvRequest
	var status string
	err := s.Scan(
		&req.ID,
		&req.EnvName,
		&req.EnvPurpose,
		&req.UseCase,
		&req.DataDomain,
		&req.InstanceType,
		&req.IDEOption,
		&req.FrameworkOption,
		&req.RequestedBy,
		&status,
		&req.CreatedAt,
	)
	req.Status = envrequests.Status(status)
	return req, err
}
