package memengine

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

const (
	logMsgTransactionCommitted  = "memengine: transaction committed"
	logMsgTransactionRolledBack = "memengine: transaction rolled back"
	logAttrError                = "error"
)

var _ circulation.Store = (*Store)(nil)

// Store is the in-memory implementation of circulation.Store.
//
// Reads see the last committed state. Every write, whether made directly on the Store or inside
// WithinTransaction, is a unit of work: units of work run one at a time, so there are no
// concurrency conflicts to report, but version mismatches from stale callers still are.
type Store struct {
	txMu    sync.Mutex   // serializes units of work
	mu      sync.RWMutex // guards current
	current *state
	logger  circulation.Logger
}

// Option defines a functional option for configuring the Store.
type Option func(*Store)

// WithLogger sets a logger that receives commit and rollback messages at debug level.
func WithLogger(logger circulation.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an empty Store.
func NewStore(options ...Option) *Store {
	s := &Store{current: newState()}

	for _, option := range options {
		option(s)
	}

	return s
}

// WithinTransaction runs fn against a private copy of the data and publishes the copy if fn returns nil.
func (s *Store) WithinTransaction(ctx context.Context, fn circulation.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	staged := s.current.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &repository{st: staged}); err != nil {
		s.debug(logMsgTransactionRolledBack, logAttrError, err.Error())
		return err
	}

	if err := ctx.Err(); err != nil {
		s.debug(logMsgTransactionRolledBack, logAttrError, err.Error())
		return err
	}

	s.mu.Lock()
	s.current = staged
	s.mu.Unlock()

	s.debug(logMsgTransactionCommitted)

	return nil
}

// read runs fn against the committed state under the read lock.
func (s *Store) read(fn func(repo *repository) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&repository{st: s.current})
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
