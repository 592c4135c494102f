package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/f3rmion/objectify/internal/api"
	"github.com/f3rmion/objectify/internal/bias"
	"github.com/f3rmion/objectify/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadPrompts(t *testing.T) {
	prompts, err := readPrompts(strings.NewReader("first prompt\r\n\n   \nsecond prompt\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first prompt", "second prompt"}, prompts)

	_, err = readPrompts(strings.NewReader("\n\n"))
	assert.ErrorIs(t, err, api.ErrEmptyPrompt)
}

func TestCollectPrompts(t *testing.T) {
	prompts, err := collectPrompts([]string{"is", "this", "biased"}, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"is this biased"}, prompts)

	prompts, err = collectPrompts(nil, "", strings.NewReader("from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"from stdin"}, prompts)

	_, err = collectPrompts([]string{"-"}, "", strings.NewReader("  \n"))
	assert.ErrorIs(t, err, api.ErrEmptyPrompt)

	path := filepath.Join(t.TempDir(), "prompts.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))
	prompts, err = collectPrompts([]string{"ignored"}, path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, prompts)

	_, err = collectPrompts(nil, filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.Error(t, err)
}

func TestResolveAxis(t *testing.T) {
	tests := []struct {
		name       string
		domain     string
		mode       string
		wantAxis   string
		wantSel    string
		wantErrStr string
	}{
		{name: "config default", wantAxis: "general", wantSel: "domain"},
		{name: "domain flag", domain: "medical", wantAxis: "medical", wantSel: "domain"},
		{name: "mode flag switches shape", mode: "ai", wantAxis: "ai", wantSel: "mode"},
		{name: "bad domain", domain: "sports", wantErrStr: "invalid analysis axis"},
		{name: "both", domain: "general", mode: "nlp", wantErrStr: "cannot be combined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			axis, err := resolveAxis(cfg, tt.domain, tt.mode)
			if tt.wantErrStr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAxis, axis)
			assert.Equal(t, tt.wantSel, cfg.Selector)
		})
	}
}

func TestRunAll_KeepsInputOrder(t *testing.T) {
	prompts := []string{"p0", "p1", "p2", "p3", "p4", "p5"}
	var inFlight, peak int32

	call := func(_ context.Context, p string) outcome {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		// Earlier prompts finish later.
		time.Sleep(time.Duration(len(prompts)-int(p[1]-'0')) * 2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return outcome{prompt: p, detection: &bias.Detection{Prompt: p}}
	}

	outs, err := runAll(context.Background(), prompts, 2, zap.NewNop(), call)
	require.NoError(t, err)
	require.Len(t, outs, len(prompts))
	for i, o := range outs {
		assert.Equal(t, prompts[i], o.prompt)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRunAll_RecordsFailures(t *testing.T) {
	call := func(_ context.Context, p string) outcome {
		if p == "bad" {
			return outcome{prompt: p, err: &api.ServiceError{Op: "analyze", StatusCode: 500, Message: "boom"}}
		}
		return outcome{prompt: p, result: &bias.Result{OriginalPrompt: p}}
	}

	outs, err := runAll(context.Background(), []string{"good", "bad"}, 4, zap.NewNop(), call)
	require.NoError(t, err)
	assert.NoError(t, outs[0].err)
	assert.Error(t, outs[1].err)
}

func TestRunAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	call := func(ctx context.Context, p string) outcome {
		return outcome{prompt: p, err: ctx.Err()}
	}
	_, err := runAll(ctx, []string{"a", "b"}, 1, zap.NewNop(), call)
	assert.ErrorIs(t, err, context.Canceled)
}

func sampleOutcome() outcome {
	return outcome{
		prompt: "Obviously this fails",
		result: &bias.Result{
			OriginalPrompt: "Obviously this fails",
			BiasScore:      12,
			BiasesByCategory: bias.Categories{
				{Name: "subjective_language", Occurrences: []bias.Occurrence{{Term: "obviously", Position: 0, Length: 9}}},
			},
			Domain:          bias.DomainGeneral,
			RewrittenPrompt: "Does this fail?",
		},
	}
}

func TestWriteOutcomes_Plain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutcomes(&buf, []outcome{sampleOutcome()}, formatPlain, 80, api.FallbackAnalyze))

	out := buf.String()
	assert.Contains(t, out, "[Obviously]{subjective language} this fails")
	assert.Contains(t, out, "Does this fail?")
	assert.NotContains(t, out, "\x1b[")
}

func TestWriteOutcomes_SingleFailure(t *testing.T) {
	var buf bytes.Buffer
	err := writeOutcomes(&buf, []outcome{{prompt: "x", err: &api.NetworkError{Op: "analyze", Err: errors.New("refused")}}},
		formatPlain, 80, api.FallbackAnalyze)

	require.Error(t, err)
	assert.Equal(t, api.FallbackAnalyze, err.Error())
	assert.Empty(t, buf.String())
}

func TestWriteOutcomes_BatchJSON(t *testing.T) {
	outs := []outcome{
		sampleOutcome(),
		{prompt: "broken", err: &api.ServiceError{Op: "analyze", StatusCode: 400, Message: "Prompt is required"}},
	}

	var buf bytes.Buffer
	err := writeOutcomes(&buf, outs, formatJSON, 80, api.FallbackAnalyze)
	require.Error(t, err)
	assert.Equal(t, "1 of 2 prompts failed", err.Error())

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Low Bias", decoded[0]["level"])
	assert.Equal(t, "Prompt is required", decoded[1]["error"])
}

func TestWriteOutcomes_BatchText(t *testing.T) {
	outs := []outcome{sampleOutcome(), sampleOutcome()}

	var buf bytes.Buffer
	require.NoError(t, writeOutcomes(&buf, outs, formatPlain, 80, api.FallbackAnalyze))
	assert.Contains(t, buf.String(), "[1] Obviously this fails")
	assert.Contains(t, buf.String(), "[2] Obviously this fails")
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("yaml"))
}

func TestAnalyzeCommand(t *testing.T) {
	var gotDomain string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotDomain = req["domain"]
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"original_prompt": "Obviously this fails",
			"bias_score": 12.4,
			"biases_detected": {"subjective_language": [{"term": "obviously", "position": 0, "length": 9}]},
			"domain": "science",
			"rewritten_prompt": "Does this fail?",
			"changes_made": [],
			"alternative_suggestions": ["Under what conditions does this fail?"]
		}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"analyze",
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--api-url", srv.URL,
		"--domain", "science",
		"--format", "plain",
		"Obviously this fails",
	})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "science", gotDomain)
	assert.Contains(t, out.String(), "12  Low Bias")
	assert.Contains(t, out.String(), "1. Under what conditions does this fail?")
}

func TestInputError(t *testing.T) {
	_, err := collectPrompts(nil, "", strings.NewReader("\n"))
	err = inputError(err)
	require.Error(t, err)
	assert.Equal(t, "Please enter a prompt.", err.Error())

	_, err = collectPrompts(nil, filepath.Join(t.TempDir(), "missing.txt"), nil)
	err = inputError(err)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "opening prompt file")
	assert.NotEqual(t, api.FallbackAnalyze, err.Error())
}

func TestAnalyzeCommand_MissingFile(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	missing := filepath.Join(t.TempDir(), "missing.txt")
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{
		"analyze",
		"--config", filepath.Join(t.TempDir(), "config.yaml"),
		"--api-url", srv.URL,
		"--file", missing,
	})
	t.Cleanup(func() {
		analyzeFile = ""
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), missing)
	assert.NotContains(t, err.Error(), api.FallbackAnalyze)
	assert.Zero(t, requests.Load())
}
