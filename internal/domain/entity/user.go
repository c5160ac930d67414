package entity

import "time"

// Roles de usuarios administrativos.
const (
	RoleAdmin    = "admin"
	RoleOperador = "operador"
	RoleCajero   = "cajero"
)

// User usuario administrativo de la plataforma (no confundir con Customer).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
