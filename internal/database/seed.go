package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-api/internal/model"
	"github.com/iliyamo/event-reservation-api/internal/utils"
)

// seedPassword is the password of both seeded accounts.
const seedPassword = "password123"

type seedUser struct {
	name, email, phone, role string
}

var seedUsers = []seedUser{
	{name: "Administrateur", email: "admin@gmail.com", phone: "+2250102030405", role: model.RoleAdmin},
	{name: "Utilisateur Test", email: "user@foca.com", phone: "+2250506070809", role: model.RoleUser},
}

// SeedUsers inserts the default admin and demo accounts unless a user
// with the same email already exists.
func SeedUsers(ctx context.Context, db *sql.DB, bcryptCost int, log *zap.Logger) error {
	for _, su := range seedUsers {
		var id string
		err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = ? LIMIT 1", su.email).Scan(&id)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		hash, err := utils.HashPassword(seedPassword, bcryptCost)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO users (id, name, email, phone, password_hash, role) VALUES (?,?,?,?,?,?)",
			uuid.NewString(), su.name, su.email, su.phone, hash, su.role); err != nil {
			return err
		}
		log.Info("seeded user", zap.String("email", su.email), zap.String("role", su.role))
	}
	return nil
}
