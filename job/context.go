package job

import "context"

type occurrenceKey struct{}

// WithOccurrence returns a context carrying occ.
func WithOccurrence(ctx context.Context, occ *Occurrence) context.Context {
	return context.WithValue(ctx, occurrenceKey{}, occ)
}

// OccurrenceFrom returns the occurrence a WorkFunc is running for.
func OccurrenceFrom(ctx context.Context) (*Occurrence, bool) {
	occ, ok := ctx.Value(occurrenceKey{}).(*Occurrence)
	return occ, ok
}
