package entity

import "time"

// Customer abonado del proveedor. El email se guarda en minúsculas y es único.
type Customer struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	DataUsageMB  float64 // consumo acumulado, refrescado desde el accounting del router
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
