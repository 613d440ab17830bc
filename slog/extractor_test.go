package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/seoentity/seoentity/mock"
	seoslog "github.com/seoentity/seoentity/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs sizes at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Extractor{
			ExtractFn: func(html string) string { return "Café" },
			NameFn:    func() string { return "visible" },
		}

		text := seoslog.NewLoggingExtractor(inner, logger).Extract("<p>Café</p>")

		assert.Equal(t, "Café", text)
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "extractor=visible")
		assert.Contains(t, output, "bytes=12")
		assert.Contains(t, output, "chars=4")
	})

	t.Run("stays quiet at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{ExtractFn: func(string) string { return "x" }}

		seoslog.NewLoggingExtractor(inner, logger).Extract("<p>x</p>")

		assert.Empty(t, buf.String())
	})

	t.Run("delegates name", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Extractor{NameFn: func() string { return "trafilatura" }}

		assert.Equal(t, "trafilatura", seoslog.NewLoggingExtractor(inner, slog.Default()).Name())
	})
}
