package domain

// CredentialRecord is one row of the credential store.
type CredentialRecord struct {
	ID       int64
	Username string
	Secret   string
}
