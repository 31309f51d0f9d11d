package domain

import "time"

type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           string
	Name         string
	Email        string
	Squad        string
	Batch        Batch
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}
