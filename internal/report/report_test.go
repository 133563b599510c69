package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/metalagman/taskcanvas/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodRange(t *testing.T) {
	t.Parallel()

	// 2026-03-12 is a Thursday.
	anchor := time.Date(2026, 3, 12, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		period   Period
		from, to time.Time
	}{
		{Day, date(2026, 3, 12), date(2026, 3, 13)},
		{Week, date(2026, 3, 9), date(2026, 3, 16)},
		{Month, date(2026, 3, 1), date(2026, 4, 1)},
	}
	for _, tc := range cases {
		from, to := tc.period.Range(anchor)
		assert.Equal(t, tc.from, from, tc.period)
		assert.Equal(t, tc.to, to, tc.period)
	}

	from, _ := Week.Range(date(2026, 3, 15))
	assert.Equal(t, date(2026, 3, 9), from, "sunday belongs to the week started on monday")
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	p, err := ParsePeriod(" Week ")
	require.NoError(t, err)
	assert.Equal(t, Week, p)
	_, err = ParsePeriod("year")
	assert.Error(t, err)
}

func TestBuildGroupsByResolvedProject(t *testing.T) {
	t.Parallel()

	doneAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	oldDone := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	in := Input{
		Projects: []model.Project{{ID: "p", Title: "Launch"}, {ID: "q", Title: "Admin"}},
		Tasks: []model.Task{
			{ID: "a", Title: "Design", ProjectID: "p", Completed: true, CompletedAt: &doneAt},
			{ID: "b", Title: "Build", ParentTaskID: "a", StartDate: "2026-03-11", EndDate: "2026-03-20", Content: "api\nand ui"},
			{ID: "c", Title: "Taxes", ProjectID: "q", EndDate: "2026-03-13"},
			{ID: "d", Title: "Old", ProjectID: "q", Completed: true, CompletedAt: &oldDone},
			{ID: "e", Title: "Groceries", StartDate: "2026-03-14"},
			{ID: "f", Title: "Later", ProjectID: "p", StartDate: "2026-04-02"},
		},
		Period: Week,
		Anchor: date(2026, 3, 12),
	}

	p := Build(in)
	assert.Contains(t, p.Instructions, "weekly")
	assert.Contains(t, p.Instructions, "English")

	want := strings.Join([]string{
		"Period: 2026-03-09 to 2026-03-15",
		"",
		"## Admin",
		"Planned:",
		"- Taxes (due 2026-03-13)",
		"",
		"## Launch",
		"Completed:",
		"- Design (done 2026-03-10)",
		"Planned:",
		"- Build (2026-03-11 to 2026-03-20): api and ui",
		"",
		"## Unassigned",
		"Planned:",
		"- Groceries (from 2026-03-14)",
		"",
	}, "\n")
	assert.Equal(t, want, p.Input)
}

func TestBuildEmptyPeriod(t *testing.T) {
	t.Parallel()

	p := Build(Input{Period: Day, Anchor: date(2026, 1, 1), Language: "German"})
	assert.Contains(t, p.Input, "No tasks were completed or scheduled")
	assert.Contains(t, p.Instructions, "German")
}

func TestOpenAIGenerate(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"error": {"code": "", "message": ""},
			"output": [
				{"type": "message", "role": "assistant",
				 "content": [{"type": "output_text", "text": "All good.", "annotations": []}]}
			]
		}`))
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAI("gpt-test", "key", srv.URL, time.Minute, srv.Client())
	out, err := gen.Generate(context.Background(), Prompt{Instructions: "be brief", Input: "tasks"})
	require.NoError(t, err)
	assert.Equal(t, "All good.", out)
	assert.Equal(t, "/responses", gotPath)
	assert.Equal(t, "gpt-test", gotBody["model"])
	assert.Equal(t, "be brief", gotBody["instructions"])
	assert.Equal(t, "tasks", gotBody["input"])
}

func TestOpenAIGenerateWithoutOutput(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": {"code": "", "message": ""}, "output": []}`))
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAI("gpt-test", "key", srv.URL, time.Minute, srv.Client())
	_, err := gen.Generate(context.Background(), Prompt{Input: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output text")
}

func TestGeminiGenerate(t *testing.T) {
	t.Parallel()

	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"role": "model", "parts": [{"text": "Weekly summary"}]}}]}`))
	}))
	t.Cleanup(srv.Close)

	gen, err := NewGemini(context.Background(), "gemini-test", "gkey", srv.URL, time.Minute, srv.Client())
	require.NoError(t, err)
	out, err := gen.Generate(context.Background(), Prompt{Instructions: "summarise", Input: "tasks"})
	require.NoError(t, err)
	assert.Equal(t, "Weekly summary", out)
	assert.Contains(t, gotPath, "gemini-test:generateContent")
	assert.Equal(t, "gkey", gotKey)
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	t.Setenv("TASKCANVAS_TEST_REPORT_KEY", "k")
	ctx := context.Background()

	gen, err := NewGenerator(ctx, config.ReportConfig{Provider: "openai", Model: "m", APIKeyEnv: "TASKCANVAS_TEST_REPORT_KEY"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, gen)

	gen, err = NewGenerator(ctx, config.ReportConfig{Provider: "gemini", Model: "m", APIKeyEnv: "TASKCANVAS_TEST_REPORT_KEY"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, gen)

	_, err = NewGenerator(ctx, config.ReportConfig{Provider: "other", Model: "m", APIKeyEnv: "TASKCANVAS_TEST_REPORT_KEY"}, nil)
	assert.Error(t, err)

	_, err = NewGenerator(ctx, config.ReportConfig{Provider: "openai", Model: "m", APIKeyEnv: "TASKCANVAS_TEST_MISSING_KEY"}, nil)
	assert.ErrorContains(t, err, "TASKCANVAS_TEST_MISSING_KEY")
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	out, err := Render("## Launch\n\n- shipped the beta\n- wrote docs", "ascii", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "shipped the beta")

	out, err = Render("   ", "", 60)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = Render("text", "no-such-style", 60)
	require.Error(t, err)
}
