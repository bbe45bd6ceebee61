package logs

import (
	"context"
	"errors"
	"fmt"
)

// SpanError records the span an error was reported in.
type SpanError struct {
	Span Span
}

func (s SpanError) Error() string {
	return fmt.Sprintf("span: %s", s.Span)
}

// WrapSpan joins err with the span of ctx, if any.
func WrapSpan(ctx context.Context, err error) error {
	v := ctx.Value(SpanKey)
	if v == nil || err == nil {
		return err
	}
	return errors.Join(err, SpanError{
		Span: v.(Span),
	})
}

// ErrorSpan returns the span joined into err by WrapSpan.
func ErrorSpan(err error) (Span, bool) {
	var spanErr SpanError
	if errors.As(err, &spanErr) {
		return spanErr.Span, true
	}
	return "", false
}
