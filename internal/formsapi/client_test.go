package formsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
	"github.com/felixgeelhaar/formrunner/internal/form"
)

const formJSON = `{
  "id": 2,
  "name": "Form name",
  "form_slug": "form-name",
  "submission_email": "submission@email.com",
  "start_page": "1",
  "live_at": "2022-08-18T09:16:50+01:00",
  "privacy_policy_url": "http://www.example.gov.uk/privacy_policy",
  "what_happens_next_text": "Good things come to those that wait",
  "declaration_text": "agree to the declaration",
  "support_email": "help@example.gov.uk",
  "support_phone": "Call 01610123456",
  "support_url": "https://example.gov.uk/contact",
  "support_url_text": "Contact us",
  "pages": [
    {"id": 1, "question_text": "Question one", "answer_type": "date", "next_page": 2, "is_optional": null},
    {"id": 2, "question_text": "Question two", "answer_type": "date", "is_optional": true}
  ]
}`

func newTestClient(url string) *Client {
	return NewClient(Options{
		BaseURL:      url + "/",
		Token:        "secret-token",
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
}

func TestClientGet(t *testing.T) {
	var gotPath, gotToken, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-API-Token")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(formJSON))
	}))
	defer srv.Close()

	f, err := newTestClient(srv.URL).Get(context.Background(), 2, form.ModeForm)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/forms/2/live", gotPath)
	assert.Equal(t, "secret-token", gotToken)
	assert.Equal(t, "application/json", gotAccept)

	assert.Equal(t, int64(2), f.ID)
	assert.Equal(t, "form-name", f.Slug)
	assert.Equal(t, "1", f.StartPageSlug())
	assert.Equal(t, "help@example.gov.uk", f.SupportDetails.Email)
	require.Len(t, f.Pages, 2)
	assert.Equal(t, "2", f.Pages[0].NextPage.Slug())
	assert.False(t, f.Pages[0].IsOptional)
	assert.True(t, f.Pages[1].IsOptional)
	assert.Same(t, f, f.Pages[0].Form(), "pages are linked to their form")
	assert.True(t, f.IsLive(time.Date(2022, 12, 14, 10, 0, 0, 0, time.UTC)))
}

func TestClientURL(t *testing.T) {
	c := newTestClient("http://forms.example")

	tests := []struct {
		mode form.Mode
		want string
	}{
		{mode: form.ModeForm, want: "http://forms.example/api/v1/forms/9/live"},
		{mode: form.ModePreviewLive, want: "http://forms.example/api/v1/forms/9/live"},
		{mode: form.ModePreviewDraft, want: "http://forms.example/api/v1/forms/9/draft"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.want, c.URL(9, tt.mode))
		})
	}
}

func TestClientNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Get(context.Background(), 9999, form.ModeForm)
	require.Error(t, err)
	assert.True(t, errors.Is(err, form.ErrFormNotFound))
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(formJSON))
	}))
	defer srv.Close()

	f, err := newTestClient(srv.URL).Get(context.Background(), 2, form.ModePreviewDraft)
	require.NoError(t, err)
	assert.Equal(t, "Form name", f.Name)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Get(context.Background(), 2, form.ModeForm)
	require.Error(t, err)
	assert.False(t, errors.Is(err, form.ErrFormNotFound))
	assert.Equal(t, apperrors.ErrCodeFormAPI, apperrors.CodeOf(err))
}

func TestClientBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "two"`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Get(context.Background(), 2, form.ModeForm)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFormAPI, apperrors.CodeOf(err))
}

func TestClientPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	c := newTestClient(srv.URL)
	assert.NoError(t, c.Ping(context.Background()))

	srv.Close()
	assert.Error(t, c.Ping(context.Background()))
}

type countingRepo struct {
	calls int
	err   error
}

func (r *countingRepo) Get(_ context.Context, id int64, mode form.Mode) (*form.Form, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return (&form.Form{ID: id, Name: string(mode)}).Link(), nil
}

func TestCachingRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("caches by id and version", func(t *testing.T) {
		next := &countingRepo{}
		repo := NewCachingRepository(next, 10, time.Minute)

		a, err := repo.Get(ctx, 1, form.ModeForm)
		require.NoError(t, err)
		b, err := repo.Get(ctx, 1, form.ModePreviewLive)
		require.NoError(t, err)
		assert.Same(t, a, b, "live and preview-live share the live version")
		assert.Equal(t, 1, next.calls)

		_, err = repo.Get(ctx, 1, form.ModePreviewDraft)
		require.NoError(t, err)
		_, err = repo.Get(ctx, 2, form.ModeForm)
		require.NoError(t, err)
		assert.Equal(t, 3, next.calls)
		assert.Equal(t, 3, repo.Len())

		repo.Purge()
		_, _ = repo.Get(ctx, 1, form.ModeForm)
		assert.Equal(t, 4, next.calls)
	})

	t.Run("expires entries", func(t *testing.T) {
		next := &countingRepo{}
		repo := NewCachingRepository(next, 10, 20*time.Millisecond)

		_, _ = repo.Get(ctx, 1, form.ModeForm)
		time.Sleep(60 * time.Millisecond)
		_, _ = repo.Get(ctx, 1, form.ModeForm)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("reports lookups", func(t *testing.T) {
		var hits, misses int
		repo := NewCachingRepository(&countingRepo{}, 10, time.Minute)
		repo.OnLookup(func(hit bool) {
			if hit {
				hits++
			} else {
				misses++
			}
		})

		for i := 0; i < 3; i++ {
			_, err := repo.Get(ctx, 1, form.ModeForm)
			require.NoError(t, err)
		}
		assert.Equal(t, 2, hits)
		assert.Equal(t, 1, misses)
	})

	t.Run("does not cache errors", func(t *testing.T) {
		next := &countingRepo{err: form.ErrFormNotFound}
		repo := NewCachingRepository(next, 10, time.Minute)

		_, err := repo.Get(ctx, 1, form.ModeForm)
		assert.ErrorIs(t, err, form.ErrFormNotFound)
		_, err = repo.Get(ctx, 1, form.ModeForm)
		assert.ErrorIs(t, err, form.ErrFormNotFound)
		assert.Equal(t, 2, next.calls)
		assert.Zero(t, repo.Len())
	})
}
