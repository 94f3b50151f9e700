package fakeuserrepo

import (
	"sync"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	accounts  map[int64]*users.Account
	emailIDs  map[string]int64 // email to account id
	socialIDs map[string]int64 // provider/subject to account id
	nextID    int64
	lock      sync.RWMutex
}

func NewFakeUserRepo() users.Repo {
	return &FakeUserRepo{
		accounts:  make(map[int64]*users.Account),
		emailIDs:  make(map[string]int64),
		socialIDs: make(map[string]int64),
	}
}

func socialKey(provider, subject string) string {
	return provider + "/" + subject
}

func (ur *FakeUserRepo) Create(account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email := users.NormalizeEmail(account.Email)
	if _, ok := ur.emailIDs[email]; ok {
		return clienterrors.ErrUserExists
	}

	ur.nextID++
	account.ID = ur.nextID
	account.Email = email
	stored := *account
	ur.accounts[stored.ID] = &stored
	ur.emailIDs[email] = stored.ID
	if stored.SocialProvider != "" {
		ur.socialIDs[socialKey(stored.SocialProvider, stored.SocialSubject)] = stored.ID
	}
	return nil
}

func (ur *FakeUserRepo) Update(account *users.Account) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.accounts[account.ID]; !ok {
		return clienterrors.ErrUserNotFound
	}
	stored := *account
	ur.accounts[stored.ID] = &stored
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	email = users.NormalizeEmail(email)
	id, ok := ur.emailIDs[email]
	if !ok {
		return clienterrors.ErrUserNotFound
	}
	delete(ur.emailIDs, email)

	account, ok := ur.accounts[id]
	if !ok {
		return nil
	}
	if account.SocialProvider != "" {
		delete(ur.socialIDs, socialKey(account.SocialProvider, account.SocialSubject))
	}
	delete(ur.accounts, id)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIDs[users.NormalizeEmail(email)]
	if !ok {
		return nil, clienterrors.ErrUserNotFound
	}
	return ur.copyOf(id)
}

func (ur *FakeUserRepo) GetByID(id int64) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	return ur.copyOf(id)
}

func (ur *FakeUserRepo) GetBySocial(provider, subject string) (*users.Account, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.socialIDs[socialKey(provider, subject)]
	if !ok {
		return nil, clienterrors.ErrUserNotFound
	}
	return ur.copyOf(id)
}

// copyOf must be called with the lock held
func (ur *FakeUserRepo) copyOf(id int64) (*users.Account, error) {
	account, ok := ur.accounts[id]
	if !ok {
		return nil, clienterrors.ErrUserNotFound
	}
	c := *account
	return &c, nil
}
