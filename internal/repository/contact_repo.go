package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

func (r *ContactRepo) Create(ctx context.Context, msg *models.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	msg.ID = uuid.New()
	msg.Status = "new"

	return r.pool.QueryRow(ctx, query,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Status,
	).Scan(&msg.CreatedAt)
}
