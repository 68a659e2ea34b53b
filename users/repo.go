package users

// Repo stores accounts. Only the fake API server keeps accounts; the client
// works with the profile returned by the remote API.
type Repo interface {
	Upsert(user *User) error
	Delete(id string) error
	GetByEmail(email string) (*User, error)
	GetByID(id string) (*User, error)
}
