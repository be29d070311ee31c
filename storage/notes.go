package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoteNotFound is returned when a note id does not exist.
var ErrNoteNotFound = errors.New("note not found")

// Note is a persistent user note.
type Note struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddNote saves content as a new note and returns its id. Blank content is
// rejected.
func (db *DB) AddNote(content string) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("refusing to save empty note")
	}

	result, err := db.conn.Exec(
		`INSERT INTO notes (content) VALUES (?)`, content,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return id, nil
}

// Notes returns all notes, most recently updated first.
func (db *DB) Notes() ([]Note, error) {
	rows, err := db.conn.Query(`
		SELECT id, content, created_at, updated_at
		FROM notes
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

// Note returns a single note by id.
func (db *DB) Note(id int64) (Note, error) {
	var n Note
	err := db.conn.QueryRow(`
		SELECT id, content, created_at, updated_at
		FROM notes WHERE id = ?
	`, id).Scan(&n.ID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNoteNotFound
	}
	if err != nil {
		return Note{}, fmt.Errorf("failed to query note: %w", err)
	}
	return n, nil
}

// UpdateNote replaces the content of an existing note and bumps its
// updated_at timestamp.
func (db *DB) UpdateNote(id int64, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("refusing to save empty note")
	}

	result, err := db.conn.Exec(`
		UPDATE notes SET content = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, content, id)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// DeleteNote removes a note by id.
func (db *DB) DeleteNote(id int64) error {
	result, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// NoteCount returns the total number of notes.
func (db *DB) NoteCount() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count)
	return count, err
}
