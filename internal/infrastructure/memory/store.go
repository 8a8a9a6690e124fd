// Package memory is a process-local implementation of the repositories and
// the posting unit of work. Writes made inside a unit of work are staged and
// published in one step on commit, so readers never see half a posting.
package memory

import (
	"sync"
	"time"

	"flowfunds/internal/domain/account"
	"flowfunds/internal/domain/notification"
	"flowfunds/internal/domain/transaction"
	"flowfunds/internal/domain/user"
)

type accountRow struct {
	acc account.Account
	seq int64
}

type transactionRow struct {
	t   transaction.Transaction
	seq int64
}

// Store holds every table. The zero value is not usable; call New.
type Store struct {
	mu            sync.RWMutex
	seq           int64
	nextUserID    int64
	users         map[int64]*user.User
	phones        map[string]int64
	accounts      map[string]*accountRow
	savingsByUser map[int64]string
	transactions  []transactionRow
	devices       map[string]*notification.DeviceToken

	// Row locks. Held for the life of a unit of work, never while mu is held.
	locksMu      sync.Mutex
	accountLocks map[string]*sync.Mutex
	savingsLocks map[int64]*sync.Mutex

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:         make(map[int64]*user.User),
		phones:        make(map[string]int64),
		accounts:      make(map[string]*accountRow),
		savingsByUser: make(map[int64]string),
		devices:       make(map[string]*notification.DeviceToken),
		accountLocks:  make(map[string]*sync.Mutex),
		savingsLocks:  make(map[int64]*sync.Mutex),
		now:           time.Now,
	}
}

func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }

func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{s: s} }

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) Devices() *NotificationRepository { return &NotificationRepository{s: s} }

func (s *Store) accountLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.accountLocks[id]
	if !ok {
		m = &sync.Mutex{}
		s.accountLocks[id] = m
	}
	return m
}

func (s *Store) savingsLock(userID int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.savingsLocks[userID]
	if !ok {
		m = &sync.Mutex{}
		s.savingsLocks[userID] = m
	}
	return m
}

// nextSeq must be called with mu held for writing.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}
