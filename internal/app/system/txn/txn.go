// Package txn runs multi-step Mongo writes in a transaction when the server
// supports it and falls back to running them directly when it does not
// (standalone servers, some managed offerings).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes returned when transactions or sessions are unavailable.
const (
	codeIllegalOperation      = 20
	codeNoReplicationEnabled  = 51
	codeOperationNotSupported = 263
)

// IsNotSupported reports whether err means the server cannot run
// transactions, as opposed to the transaction itself failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNoReplicationEnabled, codeOperationNotSupported:
			return true
		}
	}

	// Drivers and proxies do not always surface a code, so fall back to the
	// message. Two keywords are required to avoid matching ordinary failures.
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}

// Run executes fn inside a transaction on client. When the deployment cannot
// run transactions, fn is executed once more without one.
func Run(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		return fallback(ctx, err, logger, fn)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return fallback(ctx, err, logger, fn)
}

// fallback runs fn without a transaction when err says the deployment has
// none, and otherwise returns err unchanged.
func fallback(ctx context.Context, err error, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if err == nil || !IsNotSupported(err) {
		return err
	}
	if logger != nil {
		logger.Debug("transactions unavailable, writing without one", zap.Error(err))
	}
	return fn(ctx)
}
