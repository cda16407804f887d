package domain

import "time"

// TokenValidity is the fixed lifetime of an issued session token.
const TokenValidity = 24 * time.Hour

// Token is the metadata of a signed session token handed to a client.
type Token struct {
	ID        string
	Subject   string
	Signed    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
