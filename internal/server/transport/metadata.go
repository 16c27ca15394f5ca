package transport

import (
	"context"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// MaxAgeSuffix is appended to the credential key for the header that tells
// gRPC clients how long to keep the credential, in seconds.
const MaxAgeSuffix = "-max-age"

// MetadataCredentials reads the credential from incoming gRPC metadata and
// returns updates as response headers. Headers accumulate within a call, so
// clients must honour the last value sent under the key.
type MetadataCredentials struct {
	ctx context.Context
	key string
	p   pending
	err error
}

func NewMetadataCredentials(ctx context.Context, key string) *MetadataCredentials {
	return &MetadataCredentials{ctx: ctx, key: strings.ToLower(key)}
}

func (c *MetadataCredentials) Get() (string, bool) {
	return c.p.get(func() (string, bool) {
		md, ok := metadata.FromIncomingContext(c.ctx)
		if !ok {
			return "", false
		}
		values := md.Get(c.key)
		if len(values) == 0 {
			return "", false
		}
		value := strings.TrimSpace(values[0])
		return value, value != ""
	})
}

func (c *MetadataCredentials) Set(value string, ttl time.Duration) {
	c.p = pending{written: true, value: value}
	c.setHeader(value, strconv.Itoa(int(ttl.Seconds())))
}

// Delete sends an empty credential with a zero max-age.
func (c *MetadataCredentials) Delete() {
	c.p = pending{written: true}
	c.setHeader("", "0")
}

// Err reports the last failure to attach a response header.
func (c *MetadataCredentials) Err() error {
	return c.err
}

func (c *MetadataCredentials) setHeader(value, maxAge string) {
	if err := grpc.SetHeader(c.ctx, metadata.Pairs(c.key, value, c.key+MaxAgeSuffix, maxAge)); err != nil {
		c.err = err
	}
}
