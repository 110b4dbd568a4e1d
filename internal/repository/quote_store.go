package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// ErrQuoteExpired is returned when a quote token no longer resolves:
// either it never existed or its TTL has elapsed. Callers must re-quote;
// expired quotes are never silently re-priced.
var ErrQuoteExpired = errors.New("quote expired")

// QuoteStore keeps quotes in Redis under opaque random tokens with the
// fixed model.QuoteTTL lifetime. Quotes hold no inventory, so losing one
// (Redis restart, eviction) only forces the caller to re-quote. When the
// Redis client is nil the store is disabled and Save reports ErrDisabled.
type QuoteStore struct {
	rdb *redis.Client
}

// ErrDisabled is returned by Save when no Redis connection is available.
var ErrDisabled = errors.New("quote store disabled")

// NewQuoteStore returns a QuoteStore over the given client, which may be
// nil.
func NewQuoteStore(rdb *redis.Client) *QuoteStore { return &QuoteStore{rdb: rdb} }

// Enabled reports whether the store has a live Redis connection.
func (s *QuoteStore) Enabled() bool { return s.rdb != nil }

func quoteKey(token string) string { return "quote:" + token }

// randomToken generates a random hexadecimal string of n bytes (2n hex
// characters) using crypto/rand.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Save stores the quote under a fresh token and returns the token. The
// entry expires after model.QuoteTTL.
func (s *QuoteStore) Save(ctx context.Context, q *model.Quote) (string, error) {
	if s.rdb == nil {
		return "", ErrDisabled
	}
	token, err := randomToken(16)
	if err != nil {
		return "", err
	}
	q.Token = token
	body, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, quoteKey(token), body, model.QuoteTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token back into a quote, or ErrQuoteExpired when the
// token is unknown or past its TTL.
func (s *QuoteStore) Get(ctx context.Context, token string) (*model.Quote, error) {
	if s.rdb == nil {
		return nil, ErrQuoteExpired
	}
	body, err := s.rdb.Get(ctx, quoteKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrQuoteExpired
	}
	if err != nil {
		return nil, err
	}
	var q model.Quote
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
