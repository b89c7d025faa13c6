// internal/reporting/reporter.go
package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Reporter writes a finished run somewhere.
type Reporter interface {
	Report(report RunReport) error
	// Close releases the underlying output, if any.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// closeWriter closes w when it owns a resource.
func closeWriter(w io.Writer) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// New creates a reporter for format ("text" or "json") writing to
// outputPath. An empty path or "stdout" writes to standard output.
func New(format, outputPath string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	switch format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if isStdOut {
		writer = nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	if format == "json" {
		return NewJSONReporter(writer), nil
	}
	return NewConsoleReporter(writer), nil
}

// Multi fans a report out to every reporter and joins their errors.
type Multi []Reporter

func (m Multi) Report(report RunReport) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
