// Package txn runs a group of writes in a MongoDB transaction when the
// deployment supports one, and plainly otherwise.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes meaning "transactions are unavailable here".
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (standalone server)
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run
// transactions, as opposed to the transaction body failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return notSupportedCodes[ce.Code]
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("session") && has("not supported"):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}

// Runner executes fn atomically where it can.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger
}

// New returns a Runner. A nil client always runs fn directly.
func New(client *mongo.Client, logger *zap.Logger) *Runner {
	return &Runner{client: client, log: logger}
}

// Run executes fn inside a transaction. When the server cannot run
// transactions, fn is run once more without one and the caller is
// responsible for undoing partial writes.
func (tr *Runner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if tr == nil || tr.client == nil {
		return fn(ctx)
	}

	sess, err := tr.client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		tr.log.Debug("transactions unavailable; running without one", zap.Error(err))
		return fn(ctx)
	}
	return err
}
