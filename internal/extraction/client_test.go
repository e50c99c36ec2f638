package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/domain/entity"
)

type mockProvider struct {
	mock.Mock
	hasKey bool
}

func (m *mockProvider) Name() string        { return "mock" }
func (m *mockProvider) HasCredential() bool { return m.hasKey }

func (m *mockProvider) Generate(ctx context.Context, req port.InferenceRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

const policyResponse = `{
  "mrsl_class_code": "HM",
  "insured": "Acme Ltd",
  "form_received_date": "01/03/2026",
  "inception_date": "01/04/2026",
  "renewal_date": "01/04/2027",
  "total_due": "USD 10000.00",
  "policy_fee": "0.00"
}`

func newTestClient(t *testing.T, p *mockProvider, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(p, opts...)
	require.NoError(t, err)
	return c
}

func TestExtract_ValidResponse(t *testing.T) {
	p := &mockProvider{hasKey: true}
	p.On("Generate", mock.Anything, mock.Anything).Return(policyResponse, nil)

	record, err := newTestClient(t, p).Extract(context.Background(), port.ExtractRequest{
		Filename: "policy.pdf",
		Content:  []byte("%PDF-1.4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "HM", record.Value(entity.FieldClassCode))
	assert.Equal(t, "Acme Ltd", record.Value(entity.FieldInsured))
	assert.Equal(t, "USD 10000.00", record.Value(entity.FieldTotalDue))
	assert.Equal(t, "0.00", record.Value(entity.FieldPolicyFee))
	p.AssertExpectations(t)
}

func TestExtract_NullsArePreserved(t *testing.T) {
	p := &mockProvider{hasKey: true}
	p.On("Generate", mock.Anything, mock.Anything).Return(`{
		"mrsl_class_code": null, "insured": "Acme Ltd [verify]", "form_received_date": null,
		"inception_date": null, "renewal_date": null, "total_due": "  ", "policy_fee": "0.00"}`, nil)

	record, err := newTestClient(t, p).Extract(context.Background(), port.ExtractRequest{Content: []byte("x")})
	require.NoError(t, err)

	_, ok := record.Get(entity.FieldClassCode)
	assert.False(t, ok)
	_, ok = record.Get(entity.FieldTotalDue)
	assert.False(t, ok, "blank strings become null")
	assert.Equal(t, "Acme Ltd [verify]", record.Value(entity.FieldInsured))
}

func TestExtract_MissingCredentialFailsBeforeIO(t *testing.T) {
	p := &mockProvider{hasKey: false}

	_, err := newTestClient(t, p).Extract(context.Background(), port.ExtractRequest{Content: []byte("x")})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "mock", cfgErr.Provider)
	var extErr *ExtractionError
	assert.False(t, errors.As(err, &extErr))
	p.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		callErr   error
		wantStage Stage
	}{
		{"transport", "", errors.New("connection refused"), StageTransport},
		{"empty body", "   ", nil, StageEmpty},
		{"not json", "Sure! Here is the data: HM", nil, StageDecode},
		{"fenced json", "```json\n" + policyResponse + "\n```", nil, StageDecode},
		{"missing key", `{"mrsl_class_code":"HM","insured":null,"form_received_date":null,"inception_date":null,"renewal_date":null,"total_due":null}`, nil, StageSchema},
		{"extra key", `{"mrsl_class_code":"HM","insured":null,"form_received_date":null,"inception_date":null,"renewal_date":null,"total_due":null,"policy_fee":"0.00","broker":"X"}`, nil, StageSchema},
		{"number instead of string", `{"mrsl_class_code":"HM","insured":null,"form_received_date":null,"inception_date":null,"renewal_date":null,"total_due":10000,"policy_fee":"0.00"}`, nil, StageSchema},
		{"array", `[]`, nil, StageSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockProvider{hasKey: true}
			p.On("Generate", mock.Anything, mock.Anything).Return(tt.response, tt.callErr).Once()

			_, err := newTestClient(t, p).Extract(context.Background(), port.ExtractRequest{Content: []byte("x")})

			var extErr *ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, tt.wantStage, extErr.Stage)
			p.AssertNumberOfCalls(t, "Generate", 1)
		})
	}
}

func TestExtract_RequestContents(t *testing.T) {
	p := &mockProvider{hasKey: true}
	var captured port.InferenceRequest
	p.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(port.InferenceRequest) }).
		Return(policyResponse, nil)

	pinned := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	c := newTestClient(t, p, WithReferenceDate(pinned))

	_, err := c.Extract(context.Background(), port.ExtractRequest{Content: []byte("%PDF")})
	require.NoError(t, err)

	assert.Contains(t, captured.SystemInstruction, "current date (2026-02-20)")
	assert.Contains(t, captured.SystemInstruction, "HM: Hull & Machinery")
	assert.Equal(t, TaskPrompt, captured.TaskPrompt)
	assert.Equal(t, "application/pdf", captured.Document.MediaType)
	assert.Equal(t, []byte("%PDF"), captured.Document.Data)
	assert.Equal(t, SchemaName, captured.SchemaName)
	assert.Len(t, captured.Schema["required"], len(entity.Fields))
}

func TestResolveReferenceDate(t *testing.T) {
	clock := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	pinned := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	requested := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	c := newTestClient(t, &mockProvider{}, WithClock(func() time.Time { return clock }))
	assert.Equal(t, clock, c.resolveReferenceDate(time.Time{}))

	c = newTestClient(t, &mockProvider{}, WithClock(func() time.Time { return clock }), WithReferenceDate(pinned))
	assert.Equal(t, pinned, c.resolveReferenceDate(time.Time{}))
	assert.Equal(t, requested, c.resolveReferenceDate(requested))
}

func TestResponseSchema(t *testing.T) {
	schema := ResponseSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, false, schema["additionalProperties"])

	props := schema["properties"].(map[string]any)
	require.Len(t, props, 7)
	for _, f := range entity.Fields {
		assert.Contains(t, props, f.String())
		assert.Contains(t, schema["required"], f.String())
	}

	schema["type"] = "mutated"
	assert.Equal(t, "object", ResponseSchema()["type"])
}
