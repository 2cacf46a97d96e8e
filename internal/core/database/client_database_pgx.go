package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/davemk99/studyrag/internal/config"
	"github.com/davemk99/studyrag/internal/core"
	"github.com/davemk99/studyrag/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.FirstName, user.Email, user.PasswordHash)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Documents

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, user_id, title, file_name, storage_url, content_type, page_count, status, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.UserID, doc.Title, doc.FileName, doc.StorageURL, doc.ContentType, doc.PageCount, doc.Status)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, user_id, title, file_name, storage_url, content_type, page_count, status, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.UserID, &d.Title, &d.FileName, &d.StorageURL, &d.ContentType, &d.PageCount, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListDocumentsByUser(ctx context.Context, userID string) ([]models.Document, error) {
	const q = `
		SELECT id, user_id, title, file_name, storage_url, content_type, page_count, status, created_at, updated_at
		FROM documents
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Title, &d.FileName, &d.StorageURL, &d.ContentType, &d.PageCount, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	const q = `
		UPDATE documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) SetDocumentPageCount(ctx context.Context, id string, pages int) error {
	const q = `
		UPDATE documents
		SET page_count = $2, updated_at = now()
		WHERE id = $1
	`
	_, err := c.db.ExecContext(ctx, q, id, pages)
	return err
}

// DeleteDocument removes the row; chunks go with it via ON DELETE CASCADE.
func (c *DatabaseClient) DeleteDocument(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// Chunks

// InsertDocumentChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO document_chunks
			(id, document_id, user_id, chunk_index, page_number, chunk_text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)

		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.UserID, ch.ChunkIndex, ch.PageNumber, ch.Text, vec,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// DeleteChunksByDocument clears any rows from a prior ingestion attempt so
// re-running ingestion stays idempotent.
func (c *DatabaseClient) DeleteChunksByDocument(ctx context.Context, documentID string) error {
	const q = `DELETE FROM document_chunks WHERE document_id = $1`
	_, err := c.db.ExecContext(ctx, q, documentID)
	return err
}

// SearchChunks finds the top-k chunks for a query embedding, scoped to the
// requesting user and optionally one document. Cosine similarity is
// 1 - (embedding <=> query); anything under threshold is excluded even when
// within the top k.
func (c *DatabaseClient) SearchChunks(ctx context.Context, userID string, queryVec []float32, documentID *string, k int, threshold float64) ([]models.ScoredChunk, error) {
	const q = `
		SELECT id, document_id, user_id, chunk_index, page_number, chunk_text,
		       1 - (embedding <=> $2) AS similarity
		FROM document_chunks
		WHERE user_id = $1
		  AND ($3::uuid IS NULL OR document_id = $3)
		  AND 1 - (embedding <=> $2) >= $4
		ORDER BY embedding <=> $2
		LIMIT $5
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, userID, vec, documentID, threshold, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ScoredChunk
	for rows.Next() {
		var ch models.ScoredChunk
		if err := rows.Scan(
			&ch.ID, &ch.DocumentID, &ch.UserID, &ch.ChunkIndex, &ch.PageNumber, &ch.Text, &ch.Similarity,
		); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// Chat

func (c *DatabaseClient) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil {
		return errors.New("nil message")
	}
	const q = `
		INSERT INTO chat_messages (id, user_id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err := c.db.ExecContext(ctx, q, msg.ID, msg.UserID, msg.ConversationID, msg.Role, msg.Content)
	return err
}

// GetRecentMessages returns the last limit turns oldest-first. The inner
// query grabs the newest rows, the outer one restores chronological order.
func (c *DatabaseClient) GetRecentMessages(ctx context.Context, userID, conversationID string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, user_id, conversation_id, role, content, created_at
		FROM (
			SELECT id, user_id, conversation_id, role, content, created_at
			FROM chat_messages
			WHERE user_id = $1 AND conversation_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, userID, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Quizzes

// CreateQuizAttempt writes the attempt and its answer rows atomically.
func (c *DatabaseClient) CreateQuizAttempt(ctx context.Context, attempt *models.QuizAttempt, answers []models.QuizAnswer) error {
	if attempt == nil {
		return errors.New("nil attempt")
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const qa = `
		INSERT INTO quiz_attempts (id, user_id, document_id, quiz_type, total_questions, correct_count, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`
	if _, err := tx.ExecContext(ctx, qa,
		attempt.ID, attempt.UserID, attempt.DocumentID, attempt.QuizType,
		attempt.TotalQuestions, attempt.CorrectCount, attempt.Score,
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	const qn = `
		INSERT INTO quiz_answers (id, attempt_id, question_id, question_type, question_text, topic, user_answer, correct_answer, is_correct, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	`
	for i := range answers {
		a := &answers[i]
		if _, err := tx.ExecContext(ctx, qn,
			a.ID, attempt.ID, a.QuestionID, a.QuestionType, a.QuestionText, a.Topic,
			a.UserAnswer, a.CorrectAnswer, a.IsCorrect,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) ListQuizAttemptsByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	const q = `
		SELECT id, user_id, document_id, quiz_type, total_questions, correct_count, score, created_at
		FROM quiz_attempts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.QuizAttempt
	for rows.Next() {
		var a models.QuizAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.DocumentID, &a.QuizType, &a.TotalQuestions, &a.CorrectCount, &a.Score, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
