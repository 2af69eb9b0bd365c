package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"calendar-service/internal/models"
)

// TTL bounds the life of both memoized slot sets and reservation tokens.
const TTL = time.Hour

// SlotCache is the reservation cache: TTL'd entries for per-(owner,date) slot
// memoization and single-use reservation tokens, with a per-owner key index
// for bulk invalidation. Entries expire unconditionally after TTL; a miss is
// never an error.
type SlotCache struct {
	client *redis.Client
}

func New(redisAddr string) (*SlotCache, error) {
	const op = "cache.New"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SlotCache{client: client}, nil
}

func (c *SlotCache) Close() error {
	return c.client.Close()
}

func SlotsKey(ownerID, date string) string {
	return fmt.Sprintf("timeslots:%s:%s", ownerID, date)
}

func TokenKey(token string) string {
	return fmt.Sprintf("token:%s", token)
}

func ownerIndexKey(ownerID string) string {
	return fmt.Sprintf("ownerkeys:%s", ownerID)
}

// NewToken derives an opaque reservation token from the owner, date and a
// random UUID, so tokens are unpredictable and never collide across requests.
func NewToken(ownerID, date string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s_%s_%s", ownerID, date, uuid.NewString())))
	return hex.EncodeToString(sum[:])
}

func (c *SlotCache) GetSlots(ctx context.Context, ownerID, date string) (*models.SlotOffer, bool, error) {
	return c.getOffer(ctx, SlotsKey(ownerID, date))
}

func (c *SlotCache) SetSlots(ctx context.Context, offer *models.SlotOffer) error {
	const op = "cache.SlotCache.SetSlots"

	if err := c.setOffer(ctx, SlotsKey(offer.OwnerID, offer.Date), offer); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IssueToken stores the offer under a fresh token key and registers the key in
// the owner's index. The token is the caller's only handle on the entry.
func (c *SlotCache) IssueToken(ctx context.Context, offer *models.SlotOffer) (string, error) {
	const op = "cache.SlotCache.IssueToken"

	token := NewToken(offer.OwnerID, offer.Date)

	if err := c.setOffer(ctx, TokenKey(token), offer); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (c *SlotCache) GetToken(ctx context.Context, token string) (*models.SlotOffer, bool, error) {
	return c.getOffer(ctx, TokenKey(token))
}

// InvalidateOwner deletes every cached entry registered for the owner (slot
// memoizations and issued tokens) and clears the index itself.
func (c *SlotCache) InvalidateOwner(ctx context.Context, ownerID string) error {
	const op = "cache.SlotCache.InvalidateOwner"

	indexKey := ownerIndexKey(ownerID)

	keys, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := c.client.Del(ctx, indexKey).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *SlotCache) InvalidateDate(ctx context.Context, ownerID, date string) error {
	const op = "cache.SlotCache.InvalidateDate"

	if err := c.deleteKey(ctx, ownerID, SlotsKey(ownerID, date)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// InvalidateToken consumes a token; once removed it cannot validate another
// booking.
func (c *SlotCache) InvalidateToken(ctx context.Context, ownerID, token string) error {
	const op = "cache.SlotCache.InvalidateToken"

	if err := c.deleteKey(ctx, ownerID, TokenKey(token)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *SlotCache) getOffer(ctx context.Context, key string) (*models.SlotOffer, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var offer models.SlotOffer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, false, err
	}

	return &offer, true, nil
}

func (c *SlotCache) setOffer(ctx context.Context, key string, offer *models.SlotOffer) error {
	data, err := json.Marshal(offer)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, data, TTL).Err(); err != nil {
		return err
	}

	// Register the key so InvalidateOwner can find it later. The index has no
	// TTL; stale members left behind by expired entries make the bulk delete a
	// no-op for those keys.
	return c.client.SAdd(ctx, ownerIndexKey(offer.OwnerID), key).Err()
}

func (c *SlotCache) deleteKey(ctx context.Context, ownerID, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return err
	}

	return c.client.SRem(ctx, ownerIndexKey(ownerID), key).Err()
}
