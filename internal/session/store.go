package session

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/quailyquaily/text2cw/internal/cwerr"
	"github.com/quailyquaily/text2cw/internal/kv"
	"github.com/vmihailenco/msgpack/v5"
)

const keyPrefix = "session"

// Store persists sessions in a kv.Store, one msgpack record per user.
type Store struct {
	kv kv.Store
	// ValidState is consulted on load; unknown states fall back to StateMain.
	ValidState func(State) bool
}

func NewStore(store kv.Store) *Store {
	return &Store{kv: store}
}

func sessionKey(userID string) kv.Key {
	return kv.Key{keyPrefix, userID}
}

// Get returns the stored session or a fresh non-existing one.
func (s *Store) Get(ctx context.Context, userID string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("session: empty user id")
	}
	data, err := s.kv.Get(ctx, sessionKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return New(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get %s: %w", userID, err)
	}
	sess, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("session decode %s: %w", userID, err)
	}
	sess.UserID = userID
	return sess, nil
}

// Lookup returns the stored session of a joined user, or an error wrapping
// cwerr.ErrSessionNotFound.
func (s *Store) Lookup(ctx context.Context, userID string) (*Session, error) {
	sess, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sess.Exists {
		return nil, fmt.Errorf("%w: %s", cwerr.ErrSessionNotFound, userID)
	}
	return sess, nil
}

func (s *Store) Put(ctx context.Context, sess *Session) error {
	if sess == nil || strings.TrimSpace(sess.UserID) == "" {
		return errors.New("session: put without user id")
	}
	data, err := msgpack.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode %s: %w", sess.UserID, err)
	}
	if err := s.kv.Set(ctx, sessionKey(sess.UserID), data); err != nil {
		return fmt.Errorf("session put %s: %w", sess.UserID, err)
	}
	return nil
}

// All yields every stored session in user id order.
func (s *Store) All(ctx context.Context) iter.Seq2[*Session, error] {
	return func(yield func(*Session, error) bool) {
		for e, err := range s.kv.List(ctx, kv.Key{keyPrefix}) {
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			sess, err := s.decode(e.Value)
			if err != nil {
				err = fmt.Errorf("session decode %s: %w", e.Key, err)
			} else if len(e.Key) > 1 {
				sess.UserID = e.Key[len(e.Key)-1]
			}
			if !yield(sess, err) {
				return
			}
		}
	}
}

func (s *Store) decode(data []byte) (*Session, error) {
	var sess Session
	if err := msgpack.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	if sess.Settings == nil {
		sess.Settings = map[string]string{}
	}
	if sess.State == "" || (s.ValidState != nil && !s.ValidState(sess.State)) {
		sess.State = StateMain
	}
	return &sess, nil
}
