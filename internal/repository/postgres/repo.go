package postgres

import (
	"context"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/relayteam/roomsync/internal/config"
	"github.com/relayteam/roomsync/internal/model"
)

type Repository struct {
	connection *sqlx.DB
}

func New(cfg *config.Config) *Repository {
	conStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable",
		cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.Host, cfg.Postgres.Port)

	conn, err := sqlx.Connect("postgres", conStr)
	if err != nil {
		log.Fatal("error connect: ", err)
	}

	return &Repository{
		connection: conn,
	}
}

func (r *Repository) Close() {
	_ = r.connection.Close()
}

// Write persists one message and returns the durable echo: the
// store-assigned id carrying the correlation key it was given. On conflict
// by correlation key the original row wins, keeping redelivered writes
// idempotent.
func (r *Repository) Write(ctx context.Context, msg model.Message) (model.Message, error) {
	query, args, err := sq.Insert("messages").
		Columns("id", "correlation_key", "room_id", "author_kind", "user_author_id", "agent_author_id", "kind", "body", "created_at").
		Values(uuid.NewString(), msg.CorrelationKey, msg.RoomID, msg.AuthorKind, msg.UserAuthorID, msg.AgentAuthorID, msg.Kind, msg.Body, msg.CreatedAt).
		Suffix("ON CONFLICT (correlation_key) DO UPDATE SET correlation_key = EXCLUDED.correlation_key RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to build sql query: %v", err)
	}

	var storedID string
	err = r.connection.GetContext(ctx, &storedID, query, args...)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to save message: %w", err)
	}

	echo := msg
	echo.ID = storedID
	echo.Pending = false
	return echo, nil
}

// RecentMessages backfills a room transcript before live events flow.
func (r *Repository) RecentMessages(ctx context.Context, roomID string, limit int32) (model.MessageList, error) {
	queryBuilder := sq.Select(
		"id",
		"correlation_key",
		"room_id",
		"author_kind",
		"user_author_id",
		"agent_author_id",
		"kind",
		"body",
		"created_at",
	).
		From("messages").
		Where(sq.Eq{"room_id": roomID}).
		OrderBy("created_at DESC")

	if limit > 0 {
		queryBuilder = queryBuilder.Limit(uint64(limit))
	} else {
		queryBuilder = queryBuilder.Limit(50)
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.connection.SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, err
	}

	return messages, nil
}
