package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gamelog/apiserver/internal/mq"
	"github.com/gamelog/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a failed login. An unknown email
// and a wrong password produce the same error so that account existence is
// never revealed.
var ErrInvalidCredentials = errors.New("invalid credentials")

const roleChangedChannel = "account.role_changed"

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (types.Account, error)
	GetByEmail(ctx context.Context, email string) (types.Account, error)
	List(ctx context.Context, offset, limit int) ([]types.Account, int, error)
	Create(ctx context.Context, account types.Account) (types.Account, error)
	Update(ctx context.Context, account types.Account) (types.Account, error)
	Delete(ctx context.Context, id string) error
}

// AccountService encapsulates account use-cases.
type AccountService struct {
	repo   AccountRepository
	events *mq.MQ
}

func NewAccountService(repo AccountRepository, events *mq.MQ) *AccountService {
	return &AccountService{repo: repo, events: events}
}

func (s *AccountService) GetByID(ctx context.Context, id string) (types.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *AccountService) List(ctx context.Context, offset, limit int) ([]types.Account, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *AccountService) Create(ctx context.Context, account types.Account) (types.Account, error) {
	if !account.Role.Valid() {
		account.Role = types.RoleStandard
	}
	return s.repo.Create(ctx, account)
}

func (s *AccountService) Update(ctx context.Context, account types.Account) (types.Account, error) {
	return s.repo.Update(ctx, account)
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// VerifyCredentials looks up an account by email and checks the supplied
// password against its stored hash. Both lookup failure and hash mismatch
// return ErrInvalidCredentials. No side effects on failure.
func (s *AccountService) VerifyCredentials(ctx context.Context, email, password string) (types.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return types.Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return types.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// SetRole overwrites an account's role. Tokens issued before the change
// keep their old role claim until they expire; there is no revocation.
func (s *AccountService) SetRole(ctx context.Context, id string, role types.Role) (types.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Account{}, err
	}

	account.Role = role
	updated, err := s.repo.Update(ctx, account)
	if err != nil {
		return types.Account{}, err
	}

	if s.events != nil {
		payload, _ := json.Marshal(map[string]string{
			"account_id": updated.ID,
			"role":       string(updated.Role),
		})
		// Best effort: event delivery never fails the role change.
		_, _ = s.events.Publish(ctx, roleChangedChannel, payload, nil)
	}

	return updated, nil
}
