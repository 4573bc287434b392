package vector

import "fmt"

// StorageError reports an upsert failure. The failing batch aborts any
// remaining batches; retry is the caller's responsibility.
type StorageError struct {
	Namespace string
	Batch     int
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vector storage failed in namespace %q (batch %d): %v", e.Namespace, e.Batch, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RetrievalError reports a similarity-query failure.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("vector retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ConnectionError reports a provider-boundary failure during client or schema
// initialization. Fatal to service startup.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("vector store connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
