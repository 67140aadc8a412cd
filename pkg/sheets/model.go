package sheets

import (
	"context"
	"time"
)

// ValueReader returns the cells of a sheet range, header row first.
type ValueReader interface {
	GetRows(ctx context.Context) ([][]interface{}, error)
	Source() string
}

// RetryPolicy bounds the backoff used when the API rate limits us.
type RetryPolicy struct {
	MaxRetries int
	MaxBackoff time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 15,
	MaxBackoff: 60 * time.Second,
}
