package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

type mockIngestService struct {
	err      error
	failFor  string
	uploaded []string
	ingested []string
	urls     []string
}

func (m *mockIngestService) result(path string) (*domain.UploadResult, error) {
	if m.err != nil || (m.failFor != "" && strings.Contains(path, m.failFor)) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, domain.ErrEmptyContent
	}
	name := filepath.Base(path)
	return &domain.UploadResult{
		FileID:   domain.FileIDFromPath(name),
		Filename: name,
		FileType: strings.ToLower(filepath.Ext(name)),
		Icon:     "📄",
		Chunks:   3,
	}, nil
}

func (m *mockIngestService) Upload(_ context.Context, path string) (*domain.UploadResult, error) {
	m.uploaded = append(m.uploaded, path)
	return m.result(path)
}

func (m *mockIngestService) Ingest(_ context.Context, path string) (*domain.UploadResult, error) {
	m.ingested = append(m.ingested, path)
	return m.result(path)
}

func (m *mockIngestService) IngestURL(_ context.Context, url string) (*domain.UploadResult, error) {
	m.urls = append(m.urls, url)
	return m.result(url)
}

type mockQueryService struct {
	err       error
	resp      *domain.QueryResponse
	sessionID string
	req       domain.QueryRequest
}

func (m *mockQueryService) Retrieve(context.Context, domain.QueryRequest) (*domain.RetrievalResult, error) {
	return nil, m.err
}

func (m *mockQueryService) Ask(
	_ context.Context, session *domain.QuerySession, req domain.QueryRequest,
) (*domain.QuerySession, *domain.QueryResponse, error) {
	m.req = req
	return session, m.resp, m.err
}

func (m *mockQueryService) AskInSession(
	_ context.Context, sessionID string, req domain.QueryRequest,
) (*domain.QueryResponse, error) {
	m.sessionID = sessionID
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type mockIndexService struct {
	infos   []driving.IndexInfo
	index   *domain.DocumentIndex
	err     error
	deleted []string
}

func (m *mockIndexService) List(context.Context) ([]driving.IndexInfo, error) {
	return m.infos, m.err
}

func (m *mockIndexService) Get(_ context.Context, fileID string) (*domain.DocumentIndex, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.index == nil || m.index.FileID != fileID {
		return nil, domain.ErrIndexNotFound
	}
	return m.index, nil
}

func (m *mockIndexService) Delete(_ context.Context, fileID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, fileID)
	return nil
}

type mockSettingsService struct {
	settings    domain.Settings
	validateErr error
	embedErr    error
	llmErr      error
	set         map[string]domain.ProviderSettings
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{
		settings: domain.DefaultSettings("/data/docqa"),
		set:      make(map[string]domain.ProviderSettings),
	}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.Settings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) record(role string, p domain.AIProvider, model, apiKey string) {
	m.set[role] = domain.ProviderSettings{Provider: p, Model: model, APIKey: apiKey}
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.record("embedding", p, model, apiKey)
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.record("llm", p, model, apiKey)
	return nil
}

func (m *mockSettingsService) SetOCRProvider(p domain.AIProvider, model, apiKey string) error {
	m.record("ocr", p, model, apiKey)
	return nil
}

func (m *mockSettingsService) Validate() error                { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.Settings    { return domain.DefaultSettings("") }
func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.embedErr }
func (m *mockSettingsService) ValidateLLMConfig() error       { return m.llmErr }

var (
	_ driving.IngestService   = (*mockIngestService)(nil)
	_ driving.QueryService    = (*mockQueryService)(nil)
	_ driving.IndexService    = (*mockIndexService)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)

// setupTestServices wires s for the duration of the test.
func setupTestServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	SetBootstrap(nil)
	t.Cleanup(func() { SetServices(Services{}) })
}

// runCLI executes the root command with args and returns stdout and stderr.
// Package flag variables are restored afterwards.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := executeWithContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// executeWithContext runs the root command under ctx. Cobra only hands the
// root context to a subcommand that has none yet, so every command in the
// tree is reset first.
func executeWithContext(ctx context.Context) error {
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		cmd.SetContext(ctx)
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
	return rootCmd.ExecuteContext(ctx)
}

// resetFlags restores every flag to its default. Cobra keeps flag values
// and their Changed marks between executions of the same command tree.
func resetFlags() {
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		reset := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		cmd.Flags().VisitAll(reset)
		cmd.PersistentFlags().VisitAll(reset)
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
