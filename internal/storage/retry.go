// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/aws/smithy-go"
)

// retry runs op up to b.maxRetries times with exponential backoff starting
// at b.retryDelay. Only transient failures are retried.
func (b *BlobStore) retry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= b.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				b.logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !isTransient(lastErr) || attempt == b.maxRetries {
			break
		}

		b.logger.Debug("operation failed, will retry", "attempt", attempt, "max_attempts", b.maxRetries, "error", lastErr)

		delay := b.retryDelay << (attempt - 1)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

// isTransient reports whether err is worth retrying: server-side faults and
// network errors. Client faults such as a missing key are returned as-is.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorFault() == smithy.FaultServer
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
