package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"crosspay_back/pkg/apperr"
)

const (
	retryAttempts = 3
	retryBaseWait = 50 * time.Millisecond
)

// withRetry ретраит только StorageConflict: экспоненциальная пауза с джиттером,
// остальные ошибки уходят вызывающему без повторов
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	wait := retryBaseWait
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn()
		if err == nil || !apperr.Retryable(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		// ±50% джиттер, чтобы конкуренты не бились в одну и ту же миллисекунду
		jitter := time.Duration(rand.Int63n(int64(wait)))
		logrus.Infof("Конфликт записи в %s, попытка %d", op, attempt)
		select {
		case <-time.After(wait/2 + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
	}
	return err
}
