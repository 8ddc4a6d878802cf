package mongo

import (
	"alcyxob/gymtracker/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs functions inside multi-document transactions.
// Transactions need a replica set or sharded cluster.
type Transactor struct {
	client *mongo.Client
}

// NewTransactor returns a repository.Transactor backed by client sessions.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &Transactor{client: client}
}

// WithTransaction runs fn with a session context. The driver retries fn on
// TransientTransactionError and retries the commit on UnknownTransactionCommitResult.
func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
