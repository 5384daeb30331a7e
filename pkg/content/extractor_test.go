package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExtractor_Extract(t *testing.T) {
	htmlContent := `<!DOCTYPE html>
		<html>
		<head>
			<title>Test Article</title>
			<meta name="author" content="Mario Rossi">
		</head>
		<body>
			<article>
				<h1>Test Article Title</h1>
				<p>This is the main content of the article. It talks about something interesting
				at reasonable length so the extractor keeps it.</p>
				<p>It has multiple paragraphs with enough words to pass extraction heuristics
				and be considered real article text.</p>
			</article>
		</body>
		</html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(htmlContent))
	}))
	defer server.Close()

	extractor := NewHTTPExtractor(5*time.Second, "Mozilla/5.0 (test)")
	article, err := extractor.Extract(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL, article.URL)
	assert.Contains(t, article.Text, "main content of the article")
	assert.NotContains(t, article.Text, "<p>")
}

func TestHTTPExtractor_Extract_Errors(t *testing.T) {
	extractor := NewHTTPExtractor(5*time.Second, "Mozilla/5.0 (test)")

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := extractor.Extract(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code 500")
	})

	t.Run("empty page", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html><body></body></html>"))
		}))
		defer server.Close()

		_, err := extractor.Extract(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := extractor.Extract(context.Background(), "not-a-url")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid URL")
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := extractor.Extract(context.Background(), "http://127.0.0.1:1/article")
		require.Error(t, err)
	})
}

func TestHTTPExtractor_Extract_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte("<html><body><p>late</p></body></html>"))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	extractor := NewHTTPExtractor(5*time.Second, "Mozilla/5.0 (test)")
	_, err := extractor.Extract(ctx, server.URL)
	require.Error(t, err)
}
