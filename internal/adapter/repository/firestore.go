package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"servibid/pkg/errors"
)

const (
	customersCollection      = "customers"
	customerEmailsCollection = "customer_emails"
	providersCollection      = "providers"
	providerEmailsCollection = "provider_emails"
	requestsCollection       = "requests"
	bidsCollection           = "bids"
	reviewsCollection        = "reviews"
	chatsCollection          = "chats"
	chatPairsCollection      = "chat_pairs"
	messagesCollection       = "messages"
	notificationsCollection  = "notifications"
	transactionsCollection   = "transactions"
	servicesCollection       = "services"
)

// Firestore caps "in" filters at 30 values.
const maxInValues = 30

// firestoreBase carries the client and the per-call deadline shared by every repository.
type firestoreBase struct {
	client  *firestore.Client
	timeout time.Duration
}

func newBase(client *firestore.Client, timeout time.Duration) firestoreBase {
	return firestoreBase{client: client, timeout: timeout}
}

func (b firestoreBase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

func (b firestoreBase) count(ctx context.Context, query firestore.Query) (int64, error) {
	results, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}
	value, ok := results["all"]
	if !ok {
		return 0, fmt.Errorf("count aggregation returned no result")
	}
	countValue, ok := value.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation type %T", value)
	}
	return countValue.GetIntegerValue(), nil
}

func (b firestoreBase) bulkUpdate(ctx context.Context, refs []*firestore.DocumentRef, updates []firestore.Update) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	writer := b.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := writer.Update(ref, updates)
		if err != nil {
			writer.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	writer.End()

	updated := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (b firestoreBase) bulkDelete(ctx context.Context, refs []*firestore.DocumentRef) (int, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	writer := b.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := writer.Delete(ref)
		if err != nil {
			writer.End()
			return 0, err
		}
		jobs = append(jobs, job)
	}
	writer.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func collectRefs(iter *firestore.DocumentIterator) ([]*firestore.DocumentRef, error) {
	defer iter.Stop()

	var refs []*firestore.DocumentRef
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		refs = append(refs, doc.Ref)
	}
	return refs, nil
}

func collect[T any](iter *firestore.DocumentIterator) ([]*T, error) {
	defer iter.Stop()

	items := make([]*T, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var item T
		if err := doc.DataTo(&item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

func chunk(values []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func isAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// storageError converts a Firestore failure into the application taxonomy.
// AppErrors raised inside transactions pass through untouched.
func storageError(message string, err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.DeadlineExceeded {
		return errors.UpstreamTimeout(message, err)
	}
	return errors.FromUpstream(message, err)
}
