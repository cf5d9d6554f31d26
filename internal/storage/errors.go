package storage

// StoreError classifies a persistence failure so the ingestion pipeline can
// tell store faults apart from validation faults when accounting batch
// outcomes.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
