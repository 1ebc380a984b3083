package bus

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis bus: nil client")

// Redis publishes invalidations over Redis pub/sub, one channel per
// category: "<prefix>:<category>", message = subKey. Subscribers (other
// replicas, edge caches) decide what to do with them.
type Redis struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ Bus = (*Redis)(nil)

type RedisConfig struct {
	Client goredis.UniversalClient

	// Prefix namespaces the pub/sub channels; "" => "inval".
	Prefix string

	// CloseClient releases the client on Close. Set true only if this bus
	// exclusively owns the client.
	CloseClient bool
}

func NewRedis(cfg RedisConfig) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "inval"
	}
	return &Redis{rdb: cfg.Client, prefix: prefix, closeClient: cfg.CloseClient}, nil
}

func (b *Redis) NotifyInvalidate(ctx context.Context, category, subKey string) error {
	return b.rdb.Publish(ctx, b.prefix+":"+category, subKey).Err()
}

// Close releases the underlying redis client only when this bus owns it.
func (b *Redis) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
