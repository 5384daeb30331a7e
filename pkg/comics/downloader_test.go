package comics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

type recordingValidator struct {
	result domain.ValidationResult
	paths  []string
}

func (v *recordingValidator) ValidateComicImage(_ context.Context, path string, _ bool) domain.ValidationResult {
	v.paths = append(v.paths, path)
	return v.result
}

func comicFeed(entries ...domain.Entry) *domain.ClassifiedFeed {
	return &domain.ClassifiedFeed{
		Name:    "Test Comic",
		Type:    domain.FeedTypeComic,
		Entries: entries,
	}
}

func TestDownloader_Download(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/comics/1024.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("fake png bytes"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	outDir := t.TempDir()
	d := NewDownloader(DownloaderParams{Fetcher: testFetcher(), Retries: 2, RetryDelay: 10 * time.Millisecond})

	feed := comicFeed(domain.Entry{
		Title:   "Page 1024",
		Link:    ts.URL + "/page1024",
		Content: `<img src="` + ts.URL + `/comics/1024.png">`,
	})

	result, err := d.Download(context.Background(), feed, outDir)
	require.NoError(t, err)

	assert.Equal(t, "Test Comic", result.FeedName)
	assert.Equal(t, "Page 1024", result.Title)
	require.Equal(t, []string{"Test_Comic.png"}, result.Images)

	data, err := os.ReadFile(filepath.Join(outDir, "Test_Comic.png")) //nolint:gosec // temp dir path
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))
}

func TestDownloader_Download_MultiPanelNames(t *testing.T) {
	mux := http.NewServeMux()
	for _, p := range []string{"/p1.jpg", "/p2.jpg"} {
		mux.HandleFunc(p, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("panel"))
		})
	}
	// comic page served for the penny arcade extractor
	ts := httptest.NewServer(mux)
	defer ts.Close()

	assert.Equal(t, "Test_Comic-p1.jpg", imageFileName("Test Comic", ts.URL+"/p1.jpg", 0, 2))
	assert.Equal(t, "Test_Comic-p2.jpg", imageFileName("Test Comic", ts.URL+"/p2.jpg", 1, 2))
	assert.Equal(t, "Test_Comic.jpg", imageFileName("Test Comic", "https://example.com/noext", 0, 1))
}

func TestDownloader_Download_Validation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("image"))
	}))
	defer ts.Close()

	validator := &recordingValidator{result: domain.ValidationResult{Valid: true, Format: "PNG"}}
	d := NewDownloader(DownloaderParams{
		Fetcher:   testFetcher(),
		Validator: validator,
		Retries:   1, RetryDelay: 10 * time.Millisecond,
	})

	feed := comicFeed(domain.Entry{Title: "P", Content: `<img src="` + ts.URL + `/strip.png">`})
	result, err := d.Download(context.Background(), feed, t.TempDir())
	require.NoError(t, err)

	require.Len(t, result.Validations, 1)
	assert.True(t, result.Validations[0].Valid)
	require.Len(t, validator.paths, 1)
}

func TestDownloader_Download_Errors(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		d := NewDownloader(DownloaderParams{Fetcher: testFetcher()})
		_, err := d.Download(context.Background(), comicFeed(), t.TempDir())
		assert.Error(t, err)
	})

	t.Run("extraction failure", func(t *testing.T) {
		d := NewDownloader(DownloaderParams{Fetcher: testFetcher()})
		feed := comicFeed(domain.Entry{Title: "No image", Content: "<p>nothing</p>"})
		_, err := d.Download(context.Background(), feed, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extract images")
	})

	t.Run("all downloads fail", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		d := NewDownloader(DownloaderParams{Fetcher: testFetcher(), Retries: 2, RetryDelay: 10 * time.Millisecond})
		feed := comicFeed(domain.Entry{Title: "Gone", Content: `<img src="` + ts.URL + `/gone.png">`})
		_, err := d.Download(context.Background(), feed, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "all downloads failed")
	})
}

func TestDownloader_Download_NonComicEntrySkipped(t *testing.T) {
	// penny arcade news posts produce no images and no error
	d := NewDownloader(DownloaderParams{Fetcher: testFetcher()})
	feed := comicFeed(domain.Entry{Title: "News post", Link: "https://www.penny-arcade.com/news/post/x"})
	feed.SpecialHandler = "penny_arcade"

	result, err := d.Download(context.Background(), feed, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Images)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Questionable_Content", sanitizeName("Questionable Content"))
	assert.Equal(t, "xkcdcom", sanitizeName("xkcd.com"))
	assert.Equal(t, "comic", sanitizeName("???"))
}
