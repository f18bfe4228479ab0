package pmanager

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tmscout-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/pmanager")
	t.Cleanup(cleanup)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(context.Background(), ClientOptions{
		BaseUrl: server.URL,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}

const loginFormPage = `
<html><body>
<form>
	<input id="utilizador" name="utilizador" type="text">
	<input id="password" name="password" type="password">
	<button class="btn-login">Login</button>
</form>
</body></html>`

const loggedInPage = `<html><body><a href="/info.asp">My Club</a></body></html>`

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/default.asp" {
			http.NotFound(w, r)
			return
		}
		if r.Method == http.MethodPost {
			r.ParseForm()
			if r.PostForm.Get("utilizador") == "manager" && r.PostForm.Get("password") == "secret" {
				fmt.Fprint(w, loggedInPage)
			} else {
				fmt.Fprint(w, loginFormPage)
			}
			return
		}
		fmt.Fprint(w, loginFormPage)
	}))

	ctx := context.Background()

	err := client.Login(ctx, "manager", "wrong")
	require.ErrorIs(t, err, ErrLoginFailed)

	err = client.Login(ctx, "manager", "secret")
	require.NoError(t, err)
}

func listingPage(ids []string, nextPage int) string {
	body := ""
	for _, id := range ids {
		body += fmt.Sprintf(`<a href="comprar_jog_lista.asp?jg_id=%s">Player %s</a>`, id, id)
	}
	if nextPage > 0 {
		body += fmt.Sprintf(`<a href="/procurar.asp?action=proc_jog&pid=%d">%d</a>`, nextPage, nextPage)
	}
	return "<html><body>" + body + "</body></html>"
}

func TestCrawlDedupAndPagination(t *testing.T) {
	var fetched int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched++
		switch r.URL.Query().Get("pid") {
		case "", "1":
			// 101 appears twice on the same page on purpose
			fmt.Fprint(w, listingPage([]string{"101", "102", "101"}, 2))
		case "2":
			// 102 recurs across pages because the site re-ranked
			fmt.Fprint(w, listingPage([]string{"102", "103"}, 0))
		default:
			http.NotFound(w, r)
		}
	}))

	ids, err := client.Crawl(context.Background(), SearchFilter{Name: "test"}, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"101", "102", "103"}, ids)
	require.Equal(t, 2, fetched)
}

func TestCrawlPageCap(t *testing.T) {
	var fetched int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched++
		page := r.URL.Query().Get("pid")
		if page == "" {
			page = "1"
		}
		// every page links to another one, the cap has to stop us
		fmt.Fprint(w, listingPage([]string{"id" + page}, fetched+1))
	}))

	_, err := client.Crawl(context.Background(), SearchFilter{}, 2)
	require.NoError(t, err)
	require.Equal(t, 2, fetched)
}

func TestCrawlRejectsBadPageCount(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())
	_, err := client.Crawl(context.Background(), SearchFilter{}, 0)
	require.Error(t, err)
}

func TestSearchFilterQuery(t *testing.T) {
	q := SearchFilter{
		AgeBelow:     31,
		QualityAbove: 7,
	}.query()
	require.Equal(t, "31", q.Get("idd"))
	require.Equal(t, "<", q.Get("idd_op"))
	require.Equal(t, "7", q.Get("qual"))
	require.Equal(t, "Any", q.Get("pre"))
	require.Equal(t, "Any", q.Get("prog"))

	q = SearchFilter{}.query()
	require.Equal(t, "Any", q.Get("idd"))
	require.Equal(t, "Any", q.Get("qual"))
}
