package main

import (
	"context"
	"errors"
	"testing"

	"github.com/robertarktes/movie-ticket-booking/internal/domain"
	"github.com/robertarktes/movie-ticket-booking/internal/observability"
	"github.com/stretchr/testify/assert"
)

type flakyAuditor struct {
	failures int
	calls    int
}

func (f *flakyAuditor) LogBooking(context.Context, string, domain.Record) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("mongo unavailable")
	}
	return nil
}

func TestAuditWorker_RetriesTransientFailures(t *testing.T) {
	a := &flakyAuditor{failures: 2}
	w := NewAuditWorker(a, observability.NewNopLogger())

	err := w.Handle(context.Background(), "msg-1", domain.Record{ID: "BK1"})
	assert.NoError(t, err)
	assert.Equal(t, 3, a.calls)
}

func TestAuditWorker_GivesUp(t *testing.T) {
	a := &flakyAuditor{failures: 10}
	w := NewAuditWorker(a, observability.NewNopLogger())

	err := w.Handle(context.Background(), "msg-1", domain.Record{ID: "BK1"})
	assert.Error(t, err)
	assert.Equal(t, 3, a.calls)
}
