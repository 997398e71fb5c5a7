package readability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwire/newscore/internal/logger"
)

var articleHTML = `<!DOCTYPE html>
<html>
<head><title>Trial Results Announced</title></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Trial Results Announced</h1>
<p>` + longParagraph + `</p>
<p>` + longParagraph + `</p>
</article>
<footer>Copyright</footer>
</body>
</html>`

var longParagraph = strings.Repeat("The phase 3 study met its primary endpoint with a statistically significant improvement in overall survival. ", 5)

func TestFetchArticleExtractsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	ex := New(srv.Client(), logger.NewNop())
	article, err := ex.FetchArticle(context.Background(), srv.URL+"/story")
	require.NoError(t, err)

	assert.True(t, article.FullContentAvailable)
	assert.Contains(t, article.TextContent, "primary endpoint")
	assert.NotContains(t, article.TextContent, "Copyright")
}

func TestFetchArticleShortContentFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>Subscribe to continue.</p></body></html>`))
	}))
	defer srv.Close()

	ex := New(srv.Client(), logger.NewNop())
	article, err := ex.FetchArticle(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.False(t, article.FullContentAvailable)
}

func TestFetchArticleRejectsBadURL(t *testing.T) {
	ex := New(nil, logger.NewNop())

	_, err := ex.FetchArticle(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrExtraction)

	_, err = ex.FetchArticle(context.Background(), "/relative/only")
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestFetchArticleUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	ex := New(srv.Client(), logger.NewNop())
	_, err := ex.FetchArticle(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}
