package comics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

func testFetcher() *Fetcher {
	return NewFetcher(5*time.Second, "Mozilla/5.0 (test)")
}

func pageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestDefaultExtractor(t *testing.T) {
	ext := ForHandler("", nil, nil)

	t.Run("img from content", func(t *testing.T) {
		entry := domain.Entry{
			Title:   "Page 1024",
			Content: `<p><a href="x"><img src="https://example.com/comics/1024.png" alt=""></a></p>`,
		}
		urls, err := ext.ImageURLs(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/comics/1024.png"}, urls)
	})

	t.Run("description fallback", func(t *testing.T) {
		entry := domain.Entry{Description: `<img src="https://example.com/strip.jpg">`}
		urls, err := ext.ImageURLs(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/strip.jpg"}, urls)
	})

	t.Run("wordpress thumbnail stripped", func(t *testing.T) {
		entry := domain.Entry{Content: `<img src="https://example.com/uploads/strip-300x200.png">`}
		urls, err := ext.ImageURLs(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://example.com/uploads/strip.png"}, urls)
	})

	t.Run("no content", func(t *testing.T) {
		_, err := ext.ImageURLs(context.Background(), domain.Entry{Title: "Empty"})
		assert.Error(t, err)
	})

	t.Run("no image", func(t *testing.T) {
		_, err := ext.ImageURLs(context.Background(), domain.Entry{Content: "<p>text only</p>"})
		assert.Error(t, err)
	})
}

func TestPennyArcadeExtractor(t *testing.T) {
	t.Run("skips news entries", func(t *testing.T) {
		ext := ForHandler("penny_arcade", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: "https://www.penny-arcade.com/news/post/123"})
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("new single-image format", func(t *testing.T) {
		ts := pageServer(t, `<img src="https://assets.penny-arcade.com/comics/20240115-abc123XY.jpg">`)
		ext := ForHandler("penny_arcade", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/comic/2024/01/15"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://assets.penny-arcade.com/comics/20240115-abc123XY.jpg"}, urls)
	})

	t.Run("old three-panel format", func(t *testing.T) {
		ts := pageServer(t, `<img src="https://assets.penny-arcade.com/comics/strip-p1.jpg">`)
		ext := ForHandler("penny_arcade", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/comic/strip"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://assets.penny-arcade.com/comics/strip-p1.jpg",
			"https://assets.penny-arcade.com/comics/strip-p2.jpg",
			"https://assets.penny-arcade.com/comics/strip-p3.jpg",
		}, urls)
	})
}

type fixedPageCounter int

func (f fixedPageCounter) DetectOglafPages(context.Context, string) int { return int(f) }

func TestOglafExtractor(t *testing.T) {
	t.Run("filters title cards and duplicates", func(t *testing.T) {
		ts := pageServer(t, `
			<img src="https://media.oglaf.com/comic/ttstory.jpg">
			<img src="https://media.oglaf.com/comic/story.jpg">
			<img src="https://media.oglaf.com/comic/story.jpg">`)
		ext := ForHandler("oglaf", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/story/"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://media.oglaf.com/comic/story.jpg"}, urls)
	})

	t.Run("multi-page via page counter", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/story/", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/story/":
				_, _ = w.Write([]byte(`<img src="https://media.oglaf.com/comic/story.jpg">`))
			case "/story/2/":
				_, _ = w.Write([]byte(`<img src="https://media.oglaf.com/comic/story2.jpg">`))
			default:
				http.NotFound(w, r)
			}
		})
		ts := httptest.NewServer(mux)
		defer ts.Close()

		ext := ForHandler("oglaf", testFetcher(), fixedPageCounter(2))
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/story/"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"https://media.oglaf.com/comic/story.jpg",
			"https://media.oglaf.com/comic/story2.jpg",
		}, urls)
	})

	t.Run("no images", func(t *testing.T) {
		ts := pageServer(t, `<p>age check</p>`)
		ext := ForHandler("oglaf", testFetcher(), nil)
		_, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/story/"})
		assert.Error(t, err)
	})
}

func TestWiddershinsExtractor(t *testing.T) {
	ts := pageServer(t, `<img src="https://widdershinscomic.com/comics/1700000000-123.png">`)

	t.Run("page link from description", func(t *testing.T) {
		ext := ForHandler("widdershins", testFetcher(), nil)
		entry := domain.Entry{Description: `<a href="` + ts.URL + `/comic/latest">New page!</a>`}
		urls, err := ext.ImageURLs(context.Background(), entry)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://widdershinscomic.com/comics/1700000000-123.png"}, urls)
	})

	t.Run("entry link fallback", func(t *testing.T) {
		ext := ForHandler("widdershins", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/comic/latest"})
		require.NoError(t, err)
		assert.Len(t, urls, 1)
	})
}

func TestGunnerkriggExtractor(t *testing.T) {
	t.Run("relative src resolved", func(t *testing.T) {
		ts := pageServer(t, `<img class="comic_image" src="/comics/00002900.jpg">`)
		ext := ForHandler("gunnerkrigg", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/?p=2900"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.gunnerkrigg.com/comics/00002900.jpg"}, urls)
	})

	t.Run("absolute src kept", func(t *testing.T) {
		ts := pageServer(t, `<img class="comic_image" src="https://cdn.gunnerkrigg.com/comics/00002900.jpg">`)
		ext := ForHandler("gunnerkrigg", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://cdn.gunnerkrigg.com/comics/00002900.jpg"}, urls)
	})
}

func TestSavestateExtractor(t *testing.T) {
	ext := ForHandler("savestate", nil, nil)
	entry := domain.Entry{
		Content: `<p><a href="x"><img src="https://savestatecomic.com/wp-content/uploads/2024/01/strip-300x200.png"></a></p>`,
	}
	urls, err := ext.ImageURLs(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://savestatecomic.com/wp-content/uploads/2024/01/strip.png"}, urls)
}

func TestWondermarkExtractor(t *testing.T) {
	ts := pageServer(t, `<img src="https://wondermark.com/wp-content/uploads/2024/01/2024-01-15-1500title.png">`)
	ext := ForHandler("wondermark", testFetcher(), nil)
	urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/c1500/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://wondermark.com/wp-content/uploads/2024/01/2024-01-15-1500title.png"}, urls)
}

func TestEvilIncExtractor(t *testing.T) {
	t.Run("composite image", func(t *testing.T) {
		ts := pageServer(t, `
			<img src="https://www.evil-inc.com/wp-content/uploads/2024/01/20240115_evil01.png">
			<img src="https://www.evil-inc.com/wp-content/uploads/2024/01/20240115_evil.jpg">`)
		ext := ForHandler("evil_inc", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/comic/latest"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.evil-inc.com/wp-content/uploads/2024/01/20240115_evil.jpg"}, urls)
	})

	t.Run("relative fallback", func(t *testing.T) {
		ts := pageServer(t, `<img src="/wp-content/uploads/2024/01/20240115_evil.jpg">`)
		ext := ForHandler("evil_inc", testFetcher(), nil)
		urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/comic/latest"})
		require.NoError(t, err)
		assert.Equal(t, []string{"https://www.evil-inc.com/wp-content/uploads/2024/01/20240115_evil.jpg"}, urls)
	})
}

func TestIncaseExtractor(t *testing.T) {
	ts := pageServer(t, `<img src="https://incase.buttsmithy.com/wp-content/uploads/2024/01/OG-10.jpg">`)
	ext := ForHandler("incase", testFetcher(), nil)
	urls, err := ext.ImageURLs(context.Background(), domain.Entry{Link: ts.URL + "/comic/og-10"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://incase.buttsmithy.com/wp-content/uploads/2024/01/OG-10.jpg"}, urls)
}

func TestForHandler_UnknownTagGetsDefault(t *testing.T) {
	ext := ForHandler("mystery", nil, nil)
	assert.IsType(t, &defaultExtractor{}, ext)
}
