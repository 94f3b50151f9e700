package refreshrepofake

import (
	"sync"

	"github.com/jrsteele09/go-session-client/devserver/rotation"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

var _ rotation.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens  map[string]*rotation.StoredRefreshToken
	userIDs map[int64]string // user ID to token
	lock    sync.RWMutex
}

func NewFakeRefreshTokenRepo() rotation.Repo {
	return &FakeRefreshTokenRepo{
		tokens:  make(map[string]*rotation.StoredRefreshToken),
		userIDs: make(map[int64]string),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(refreshToken *rotation.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt := *refreshToken
	tr.tokens[rt.Token] = &rt
	tr.userIDs[rt.UserID] = rt.Token
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return clienterrors.ErrNotFound
	}
	if tr.userIDs[rt.UserID] == token {
		delete(tr.userIDs, rt.UserID)
	}
	delete(tr.tokens, token)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(token string) (*rotation.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	rt, ok := tr.tokens[token]
	if !ok {
		return nil, clienterrors.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (tr *FakeRefreshTokenRepo) GetByUserID(userID int64) (*rotation.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	token, ok := tr.userIDs[userID]
	if !ok {
		return nil, clienterrors.ErrNotFound
	}
	cp := *tr.tokens[token]
	return &cp, nil
}

func (tr *FakeRefreshTokenRepo) DeleteByUserID(userID int64) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	token, ok := tr.userIDs[userID]
	if !ok {
		return clienterrors.ErrNotFound
	}
	delete(tr.userIDs, userID)
	delete(tr.tokens, token)
	return nil
}
