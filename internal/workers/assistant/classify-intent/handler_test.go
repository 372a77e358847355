// internal/workers/assistant/classify-intent/handler_test.go
package classifyintent

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"onboarding-workers/internal/common/config"
	"onboarding-workers/internal/common/errors"
	"onboarding-workers/internal/common/logger"
	"onboarding-workers/internal/common/observability"
	"onboarding-workers/internal/nlp"
)

// ==========================
// Test Helper Functions
// ==========================

type patternTagger struct{ err error }

func (p patternTagger) Tag(string) ([]nlp.TaggedToken, []nlp.NamedEntity, error) {
	return nil, nil, p.err
}

type countingClassifier struct {
	*nlp.Classifier
	calls int
}

func (c *countingClassifier) Classify(text string) *nlp.Result {
	c.calls++
	return c.Classifier.Classify(text)
}

func createTestConfig() *Config {
	return &Config{
		Timeout:  10 * time.Second,
		CacheTTL: time.Minute,
	}
}

func createClassifier(tagErr error) *countingClassifier {
	return &countingClassifier{Classifier: nlp.NewClassifier(nil, nlp.WithTagger(patternTagger{err: tagErr}))}
}

func createTestHandler(t *testing.T, classifier Classifier, redisClient redis.Cmdable, config *Config) *Handler {
	if config == nil {
		config = createTestConfig()
	}
	return NewHandler(config, classifier, redisClient, logger.NewTestLogger(t))
}

func hasEntity(entities []nlp.Entity, text string, label nlp.Label) bool {
	for _, e := range entities {
		if e.Text == text && e.Label == label {
			return true
		}
	}
	return false
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name: "allocate asset with employee id",
			text: "Allocate laptop to employee EMP001",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, nlp.IntentAllocateAsset, output.Intent)
				assert.Greater(t, output.Confidence, 0.0)
				assert.True(t, hasEntity(output.Entities, "EMP001", nlp.LabelEmployeeID))
			},
		},
		{
			name: "asset listing",
			text: "Show me all available assets",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, nlp.IntentGetAssets, output.Intent)
			},
		},
		{
			name: "unrecognised text",
			text: "zzz",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, nlp.IntentUnknown, output.Intent)
				assert.Zero(t, output.Confidence)
				assert.Empty(t, output.Entities)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := createClassifier(nil)
			handler := createTestHandler(t, classifier, nil, nil)

			output, err := handler.Execute(context.Background(), &Input{Text: tt.text})

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.False(t, output.Degraded)
			assert.False(t, output.Cached)
			assert.Equal(t, classifier.Explain(output.Intent), output.Explanation)
			require.NotNil(t, output.NLP)
			assert.Equal(t, tt.text, output.NLP.OriginalText)
			tt.validateOutput(t, output)
		})
	}
}

func TestHandler_Execute_EmptyText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		classifier := createClassifier(nil)
		handler := createTestHandler(t, classifier, nil, nil)

		output, err := handler.Execute(context.Background(), &Input{Text: text})

		assert.Nil(t, output)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrTextRequired))
		assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
		assert.Zero(t, classifier.calls)
	}
}

func TestHandler_Execute_DegradedIsReportedNotFailed(t *testing.T) {
	mr, client := newMiniredis(t)
	handler := createTestHandler(t, createClassifier(stderrors.New("model missing")), client, nil)

	output, err := handler.Execute(context.Background(), &Input{Text: "Create new employee John Smith"})

	require.NoError(t, err)
	assert.True(t, output.Degraded)
	assert.Equal(t, nlp.IntentUnknown, output.Intent)
	assert.Contains(t, output.NLP.Error, "model missing")
	assert.Empty(t, mr.Keys(), "degraded results must not be cached")
}

func TestHandler_Execute_FailOnDegraded(t *testing.T) {
	config := createTestConfig()
	config.FailOnDegraded = true
	handler := createTestHandler(t, createClassifier(stderrors.New("model missing")), nil, config)

	output, err := handler.Execute(context.Background(), &Input{Text: "Create new employee John Smith"})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrClassificationDegraded))
	assert.Equal(t, errors.ErrCodeClassificationDegraded, errors.CodeOf(err))
	assert.Equal(t, "CLASSIFICATION_DEGRADED", errors.ConvertToBPMNError(errors.Normalize(err)).Code)
}

func TestHandler_Execute_TracesClassification(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs := observability.New("worker-test", observability.WithRegisterer(prometheus.NewRegistry()), observability.WithSpanProcessor(recorder))
	defer obs.Shutdown()
	_, client := newMiniredis(t)
	handler := NewHandler(createTestConfig(), createClassifier(nil), client, logger.NewTestLogger(t), WithObservability(obs))

	_, err := handler.Execute(context.Background(), &Input{Text: "Show me all available assets"})
	require.NoError(t, err)
	_, err = handler.Execute(context.Background(), &Input{Text: "Show me all available assets"})
	require.NoError(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 1, "cache hits are not classified again")
	assert.Equal(t, "nlp.classify", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("nlp.source", "worker"))
}

// ==========================
// Cache Tests
// ==========================

func TestHandler_Execute_CachesResults(t *testing.T) {
	mr, client := newMiniredis(t)
	classifier := createClassifier(nil)
	handler := createTestHandler(t, classifier, client, nil)
	input := &Input{Text: "Check status of employee EMP002"}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	key := cachePrefix + cacheKey(input.Text)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Intent, second.Intent)
	assert.Equal(t, first.Entities, second.Entities)
	assert.Equal(t, 1, classifier.calls)
}

func TestHandler_Execute_CacheKeyIgnoresSurroundingSpace(t *testing.T) {
	_, client := newMiniredis(t)
	classifier := createClassifier(nil)
	handler := createTestHandler(t, classifier, client, nil)

	_, err := handler.Execute(context.Background(), &Input{Text: "list all employees"})
	require.NoError(t, err)
	output, err := handler.Execute(context.Background(), &Input{Text: "  list all employees \n"})
	require.NoError(t, err)

	assert.True(t, output.Cached)
	assert.Equal(t, 1, classifier.calls)
}

func TestHandler_Execute_CachedResultFromRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()
	classifier := createClassifier(nil)
	handler := createTestHandler(t, classifier, db, nil)

	text := "Send notification welcome to EMP002"
	stored := &nlp.Result{
		OriginalText: text,
		Intent:       nlp.IntentSendNotification,
		Confidence:   0.9,
		Entities:     []nlp.Entity{{Text: "EMP002", Label: nlp.LabelEmployeeID, Confidence: 0.9}},
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	mock.ExpectGet(cachePrefix + cacheKey(text)).SetVal(string(data))

	output, err := handler.Execute(context.Background(), &Input{Text: text})

	require.NoError(t, err)
	assert.True(t, output.Cached)
	assert.Equal(t, nlp.IntentSendNotification, output.Intent)
	assert.Equal(t, stored.Entities, output.Entities)
	assert.Zero(t, classifier.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheErrorFallsBackToClassifier(t *testing.T) {
	db, mock := redismock.NewClientMock()
	classifier := createClassifier(nil)
	handler := createTestHandler(t, classifier, db, nil)

	text := "Show me all available assets"
	mock.ExpectGet(cachePrefix + cacheKey(text)).SetErr(stderrors.New("connection refused"))

	output, err := handler.Execute(context.Background(), &Input{Text: text})

	require.NoError(t, err)
	assert.False(t, output.Cached)
	assert.Equal(t, nlp.IntentGetAssets, output.Intent)
	assert.Equal(t, 1, classifier.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKey(t *testing.T) {
	assert.Len(t, cacheKey("hello"), 64)
	assert.Equal(t, cacheKey("hello"), cacheKey("hello"))
	assert.NotEqual(t, cacheKey("hello"), cacheKey("Hello"))
}

func TestNewConfig(t *testing.T) {
	defaults := NewConfig(config.WorkerConfig{}, config.NLPConfig{})
	assert.Equal(t, 30*time.Second, defaults.Timeout)
	assert.Equal(t, 10*time.Minute, defaults.CacheTTL)

	custom := NewConfig(config.WorkerConfig{Timeout: 5000}, config.NLPConfig{CacheTTL: 60000})
	assert.Equal(t, 5*time.Second, custom.Timeout)
	assert.Equal(t, time.Minute, custom.CacheTTL)
	assert.False(t, custom.FailOnDegraded)

	strict := NewConfig(config.WorkerConfig{}, config.NLPConfig{FailOnDegraded: true})
	assert.True(t, strict.FailOnDegraded)
}
