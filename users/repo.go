package users

// Repo stores the dev server's accounts
type Repo interface {
	Create(account *Account) error
	Update(account *Account) error
	Delete(email string) error
	GetByEmail(email string) (*Account, error)
	GetByID(id int64) (*Account, error)
	GetBySocial(provider, subject string) (*Account, error)
}
