package domain

// User is a registered customer, keyed by email. The senhan field held a
// plaintext password in documents written by the legacy storefront; this
// service only ever writes bcrypt hashes into it.
type User struct {
	Email        string `json:"email"`
	Name         string `json:"nome"`
	CPF          string `json:"cpf"`
	BirthDate    string `json:"nasc"`
	AreaCode     string `json:"ddd"`
	Phone        string `json:"tel"`
	PasswordHash string `json:"senhan"`
}
