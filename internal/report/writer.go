package report

import (
	"context"
	"fmt"
	"io"
)

// WriterSender writes the subject and rendered HTML to w instead of mailing
// it. Used for dry runs.
type WriterSender struct {
	w io.Writer
}

// NewWriterSender creates a sender that writes to w.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{w: w}
}

// Send writes the report.
func (s *WriterSender) Send(ctx context.Context, summary Summary) error {
	body, err := Render(summary)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "Subject: %s\n\n%s", summary.Subject(), body); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
