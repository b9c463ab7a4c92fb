package operator

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/plinko/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid operator credentials")

// GetAccount retrieves an operator account by username
func GetAccount(db *sqlx.DB, username string) (*models.OperatorAccount, error) {
	var acc models.OperatorAccount
	err := db.Get(&acc, `SELECT username, display_name, password_hash, roles, created_at, updated_at FROM operator_accounts WHERE username=$1`, username)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func VerifyPassword(hashed, plain string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

// HashPassword hashes a plain password for storage
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateAccount creates or updates an operator account (used for seeding)
func CreateAccount(db *sqlx.DB, username, displayName, plainPassword string, roles []string) error {
	hashed, err := HashPassword(plainPassword)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		INSERT INTO operator_accounts (username, display_name, password_hash, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (username) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			password_hash = EXCLUDED.password_hash,
			roles = EXCLUDED.roles,
			updated_at = NOW()
	`, username, displayName, hashed, pq.Array(roles))

	return err
}

// ValidateCredentials validates username + password
func ValidateCredentials(db *sqlx.DB, username, password string) (*models.OperatorAccount, error) {
	acc, err := GetAccount(db, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[AUTH] No operator account found for: %s", username)
			return nil, ErrInvalidCredentials
		}
		log.Printf("[AUTH] Database error: %v", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyPassword(acc.PasswordHash, password) {
		log.Printf("[AUTH] Password verification failed for: %s", username)
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

// LogAction records an operator action in the audit log
func LogAction(db *sqlx.DB, username, ip, route, action string, details map[string]interface{}, success bool) error {
	if db == nil {
		log.Printf("[AUTH] audit (no db) user=%s action=%s success=%v details=%v", username, action, success, details)
		return nil
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("[AUTH] Failed to marshal audit details: %v", err)
		detailsJSON = []byte("{}")
	}

	_, err = db.Exec(`
		INSERT INTO operator_audit (username, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, username, ip, route, action, detailsJSON, success)

	if err != nil {
		log.Printf("[AUTH] Failed to log operator action: %v", err)
	}

	return err
}

// GetAuditLogs retrieves recent operator audit logs with pagination
func GetAuditLogs(db *sqlx.DB, limit, offset int) ([]models.OperatorAudit, error) {
	var logs []models.OperatorAudit
	err := db.Select(&logs, `
		SELECT id, username, ip, route, action, details, success, created_at
		FROM operator_audit
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return logs, err
}
