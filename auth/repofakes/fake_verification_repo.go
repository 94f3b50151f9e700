package repofakes

import (
	"sync"

	"github.com/jrsteele09/go-session-client/auth"
	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
)

type FakeVerificationRepo struct {
	lock          sync.RWMutex
	verifications map[string]auth.Verification
}

func NewFakeVerificationRepo() auth.VerificationRepo {
	return &FakeVerificationRepo{
		verifications: make(map[string]auth.Verification),
	}
}

func (vr *FakeVerificationRepo) Upsert(v *auth.Verification) error {
	vr.lock.Lock()
	defer vr.lock.Unlock()
	vr.verifications[v.Email] = *v
	return nil
}

func (vr *FakeVerificationRepo) Get(email string) (*auth.Verification, error) {
	vr.lock.RLock()
	defer vr.lock.RUnlock()

	v, ok := vr.verifications[email]
	if !ok {
		return nil, clienterrors.ErrNotFound
	}
	return &v, nil
}

func (vr *FakeVerificationRepo) Delete(email string) error {
	vr.lock.Lock()
	defer vr.lock.Unlock()
	delete(vr.verifications, email)
	return nil
}
