package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RichardoC/parentpal/internal/models"
	"github.com/google/uuid"
)

// SaveChat stores a chat and appends the messages that are not stored yet.
// chat.Messages must start with the stored messages, otherwise ErrDiverged is
// returned and nothing is written. Stored messages are never rewritten.
func (db *Database) SaveChat(ctx context.Context, chat *models.Chat) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM chats WHERE id = ?`, chat.ID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if chat.Title == "" {
			chat.Title = models.DeriveTitle(chat.Messages)
		}
		if chat.CreatedAt.IsZero() {
			chat.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO chats (id, user_id, title, created_at)
			VALUES (?, ?, ?, ?)`,
			chat.ID, chat.UserID, chat.Title, chat.CreatedAt); err != nil {
			return fmt.Errorf("insert chat: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lookup chat: %w", err)
	case owner != chat.UserID:
		return ErrForbidden
	}

	history, err := storedHistory(ctx, tx, chat.ID)
	if err != nil {
		return err
	}
	if !models.Extends(chat.Messages, history) {
		return ErrDiverged
	}

	for i := len(history); i < len(chat.Messages); i++ {
		msg := &chat.Messages[i]
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		tools, err := marshalNullable(msg.ToolInvocations)
		if err != nil {
			return fmt.Errorf("encode tool invocations: %w", err)
		}
		attachments, err := marshalNullable(msg.Attachments)
		if err != nil {
			return fmt.Errorf("encode attachments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (chat_id, position, id, role, content, tool_invocations, attachments, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			chat.ID, i, msg.ID, string(msg.Role), msg.Content, tools, attachments, msg.CreatedAt); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// storedHistory loads role and content of a chat's messages in order.
func storedHistory(ctx context.Context, tx *sql.Tx, chatID string) ([]models.Message, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT role, content FROM messages
		WHERE chat_id = ?
		ORDER BY position ASC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("load stored messages: %w", err)
	}
	defer rows.Close()

	var history []models.Message
	for rows.Next() {
		var (
			msg  models.Message
			role string
		)
		if err := rows.Scan(&role, &msg.Content); err != nil {
			return nil, fmt.Errorf("scan stored message: %w", err)
		}
		msg.Role = models.Role(role)
		history = append(history, msg)
	}
	return history, rows.Err()
}

func (db *Database) GetChatByID(ctx context.Context, id string) (*models.Chat, error) {
	chat := &models.Chat{ID: id}
	err := db.db.QueryRowContext(ctx, `
		SELECT user_id, title, created_at FROM chats WHERE id = ?`, id).
		Scan(&chat.UserID, &chat.Title, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}

	rows, err := db.db.QueryContext(ctx, `
		SELECT id, role, content, tool_invocations, attachments, created_at
		FROM messages
		WHERE chat_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	chat.Messages = make([]models.Message, 0)
	for rows.Next() {
		var (
			msg         models.Message
			role        string
			tools       sql.NullString
			attachments sql.NullString
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &tools, &attachments, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = models.Role(role)
		if tools.Valid {
			if err := json.Unmarshal([]byte(tools.String), &msg.ToolInvocations); err != nil {
				return nil, fmt.Errorf("decode tool invocations: %w", err)
			}
		}
		if attachments.Valid {
			if err := json.Unmarshal([]byte(attachments.String), &msg.Attachments); err != nil {
				return nil, fmt.Errorf("decode attachments: %w", err)
			}
		}
		chat.Messages = append(chat.Messages, msg)
	}
	return chat, rows.Err()
}

func (db *Database) GetChatsByUserID(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	rows, err := db.db.QueryContext(ctx, `
		SELECT id, title, created_at
		FROM chats
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]models.ChatSummary, 0)
	for rows.Next() {
		var c models.ChatSummary
		if err := rows.Scan(&c.ID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

func (db *Database) DeleteChatByID(ctx context.Context, id string) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE chat_id = ?", id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM chats WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func marshalNullable[T any](items []T) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
