// Package store persists quizzes in Postgres. Questions are stored as one
// JSONB payload per row so the polymorphic record survives round-trips
// without a column per question type.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/balalek/Masters-Thesis-sub000/internal"
)

type Store struct {
	pool *pgxpool.Pool
}

// New connects, verifies the connection, and applies the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{createQuizzesTable, createQuestionsTable, createQuestionIndex}
	for i, migration := range migrations {
		if _, err := s.pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	log.Printf("[store.migrate] schema ready")
	return nil
}

const createQuizzesTable = `
CREATE TABLE IF NOT EXISTS quizzes (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const createQuestionsTable = `
CREATE TABLE IF NOT EXISTS questions (
    id BIGSERIAL PRIMARY KEY,
    quiz_id BIGINT REFERENCES quizzes(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    payload JSONB NOT NULL,
    times_played INTEGER NOT NULL DEFAULT 0
);
`

const createQuestionIndex = `
CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id, position);
`

// SaveQuiz inserts a quiz with its questions and returns the new id.
func (s *Store) SaveQuiz(ctx context.Context, quiz *internal.Quiz) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var quizID int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO quizzes (name) VALUES ($1) RETURNING id`, quiz.Name,
	).Scan(&quizID); err != nil {
		return 0, fmt.Errorf("insert quiz: %w", err)
	}

	for i := range quiz.Questions {
		payload, err := json.Marshal(&quiz.Questions[i])
		if err != nil {
			return 0, fmt.Errorf("marshal question %d: %w", i, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO questions (quiz_id, position, payload) VALUES ($1, $2, $3)`,
			quizID, i, payload,
		); err != nil {
			return 0, fmt.Errorf("insert question %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return quizID, nil
}

// GetQuiz loads a quiz with its questions in stored order.
func (s *Store) GetQuiz(ctx context.Context, id int64) (*internal.Quiz, error) {
	quiz := &internal.Quiz{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT name FROM quizzes WHERE id = $1`, id,
	).Scan(&quiz.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select quiz %d: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, payload FROM questions WHERE quiz_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			questionID int64
			payload    []byte
		)
		if err := rows.Scan(&questionID, &payload); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q internal.Question
		if err := json.Unmarshal(payload, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question %d: %w", questionID, err)
		}
		q.ID = questionID
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return quiz, nil
}

// ListQuizzes returns quiz ids and names, newest first, without questions.
func (s *Store) ListQuizzes(ctx context.Context) ([]internal.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM quizzes ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []internal.Quiz
	for rows.Next() {
		var q internal.Quiz
		if err := rows.Scan(&q.ID, &q.Name); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// BumpUsage increments the play counter of the given questions. Called once
// when a game starts.
func (s *Store) BumpUsage(ctx context.Context, questionIDs []int64) error {
	if len(questionIDs) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE questions SET times_played = times_played + 1 WHERE id = ANY($1)`,
		questionIDs,
	)
	if err != nil {
		return fmt.Errorf("bump usage: %w", err)
	}
	return nil
}
