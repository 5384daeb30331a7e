package feed

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
)

const testUserAgent = "Mozilla/5.0 (test)"

func TestParser_Parse(t *testing.T) {
	rssContent := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
	<title>Test Comic</title>
	<link>http://example.com</link>
	<description>Test Description</description>
	<item>
		<title>Page 1024</title>
		<link>http://example.com/page1024</link>
		<description>New page up</description>
		<content:encoded><![CDATA[<p><img src="http://example.com/comics/1024.png"></p>]]></content:encoded>
		<pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
		<author>test@example.com (Test Author)</author>
	</item>
	<item>
		<title>Page 1025</title>
		<link>http://example.com/page1025</link>
		<description>Another page</description>
		<pubDate>Tue, 03 Jan 2006 15:04:05 -0700</pubDate>
	</item>
</channel>
</rss>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssContent))
	}))
	defer server.Close()

	parser := NewParser(5*time.Second, testUserAgent)
	feed, err := parser.Parse(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL, feed.URL)
	assert.Equal(t, "Test Comic", feed.Title)
	assert.Equal(t, "http://example.com", feed.Link)

	require.Len(t, feed.Entries, 2)

	entry1 := feed.Entries[0]
	assert.Equal(t, "Page 1024", entry1.Title)
	assert.Equal(t, "http://example.com/page1024", entry1.Link)
	assert.Equal(t, "New page up", entry1.Description)
	assert.Contains(t, entry1.Content, "1024.png")
	assert.Equal(t, "Test Author", entry1.Author)
	assert.False(t, entry1.Published.IsZero())

	entry2 := feed.Entries[1]
	assert.Equal(t, "Page 1025", entry2.Title)
	assert.Empty(t, entry2.Author)
}

func TestParser_Parse_AtomFeed(t *testing.T) {
	atomContent := `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<title>Test Atom Feed</title>
	<link href="http://example.com"/>
	<entry>
		<title>Atom Entry 1</title>
		<link href="http://example.com/entry1"/>
		<id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
		<updated>2006-01-02T15:04:05Z</updated>
		<summary>Entry 1 summary</summary>
		<author>
			<name>John Doe</name>
		</author>
	</entry>
</feed>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomContent))
	}))
	defer server.Close()

	parser := NewParser(5*time.Second, testUserAgent)
	feed, err := parser.Parse(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Test Atom Feed", feed.Title)

	require.Len(t, feed.Entries, 1)
	entry := feed.Entries[0]
	assert.Equal(t, "Atom Entry 1", entry.Title)
	assert.Equal(t, "http://example.com/entry1", entry.Link)
	assert.Equal(t, "John Doe", entry.Author)
	// updated time used when published is absent
	assert.False(t, entry.Published.IsZero())
}

func TestParser_Parse_Errors(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		parser := NewParser(5*time.Second, testUserAgent)
		_, err := parser.Parse(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status code: 500")
	})

	t.Run("invalid xml", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not xml"))
		}))
		defer server.Close()

		parser := NewParser(5*time.Second, testUserAgent)
		_, err := parser.Parse(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse feed")
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("too late"))
		}))
		defer server.Close()

		parser := NewParser(100*time.Millisecond, testUserAgent)
		_, err := parser.Parse(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("invalid url", func(t *testing.T) {
		parser := NewParser(5*time.Second, testUserAgent)
		_, err := parser.Parse(context.Background(), "not-a-url")
		require.Error(t, err)
	})
}

func TestLoadList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rss.txt")
	require.NoError(t, os.WriteFile(path, []byte(`# comics
https://www.questionablecontent.net/QCRSS.xml
https://xkcd.com/rss.xml

# news
https://www.macitynet.it/feed/
https://xkcd.com/rss.xml
not a url
`), 0o600))

	urls, err := LoadList(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.questionablecontent.net/QCRSS.xml",
		"https://xkcd.com/rss.xml",
		"https://www.macitynet.it/feed/",
	}, urls, "comments, duplicates and junk lines dropped")
}

func TestLoadList_MissingFile(t *testing.T) {
	_, err := LoadList(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
