// Package conformance is the provider conformance suite: every test builds
// a structured query, asserts the exact MQL the provider emits against a
// baseline literal, and, when a store is attached, executes the command and
// asserts the result set against the seeded dataset.
package conformance

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mqlconform/mqlconform/baseline"
	"github.com/mqlconform/mqlconform/fixture"
	"github.com/mqlconform/mqlconform/logger"
	"github.com/mqlconform/mqlconform/providers"
	"github.com/mqlconform/mqlconform/query"
	"github.com/mqlconform/mqlconform/schema"
	"github.com/mqlconform/mqlconform/teststore"
)

// Characteristics defines provider-specific behaviors
type Characteristics struct {
	// SupportsVectorSearch indicates whether the target server can run
	// $vectorSearch stages; translation is always asserted regardless
	SupportsVectorSearch bool
}

// Suite runs the query conformance tests against one provider
type Suite struct {
	ProviderName string
	NewProvider  func(registry *schema.Registry, db *mongo.Database, log logger.Logger) (providers.Provider, error)

	// Store is the MongoDB instance execution assertions run against.
	// With a nil store only MQL translation is asserted.
	Store *teststore.Store

	// SkipTests maps subtest paths (e.g. "Filters/Equals") to the
	// documented limitation message used as the skip reason
	SkipTests map[string]string

	Characteristics Characteristics

	// Fixture defaults to the canonical dataset
	Fixture *fixture.Fixture

	provider providers.Provider
	capture  *logger.CaptureLogger

	initOnce sync.Once
	initErr  error
	seedOnce sync.Once
	seedErr  error
}

// RunAll runs every conformance test group
func (s *Suite) RunAll(t *testing.T) {
	s.mustInit(t)

	t.Run("Filters", func(t *testing.T) {
		t.Run("Equals", s.TestFilterEquals)
		t.Run("NotEquals", s.TestFilterNotEquals)
		t.Run("And", s.TestFilterAnd)
		t.Run("GreaterThan", s.TestFilterGreaterThan)
		t.Run("LessThanOrEqual", s.TestFilterLessThanOrEqual)
		t.Run("In", s.TestFilterIn)
		t.Run("NotIn", s.TestFilterNotIn)
		t.Run("StringStartsWith", s.TestFilterStringStartsWith)
		t.Run("StringEndsWith", s.TestFilterStringEndsWith)
		t.Run("StringContains", s.TestFilterStringContains)
		t.Run("StringContainsCaseInsensitive", s.TestFilterStringContainsCaseInsensitive)
		t.Run("Null", s.TestFilterNull)
		t.Run("NotNull", s.TestFilterNotNull)
		t.Run("Between", s.TestFilterBetween)
		t.Run("DateComparison", s.TestFilterDateComparison)
		t.Run("Or", s.TestFilterOr)
		t.Run("Not", s.TestFilterNot)
		t.Run("CaseInsensitiveEquality", s.TestFilterCaseInsensitiveEquality)
	})

	t.Run("Ordering", func(t *testing.T) {
		t.Run("OrderBy", s.TestOrderBy)
		t.Run("OrderByDescending", s.TestOrderByDescending)
		t.Run("OrderByMultiple", s.TestOrderByMultiple)
		t.Run("Skip", s.TestSkip)
		t.Run("Take", s.TestTake)
		t.Run("SkipTake", s.TestSkipTake)
	})

	t.Run("Projection", func(t *testing.T) {
		t.Run("Select", s.TestSelect)
		t.Run("SelectWithPrimaryKey", s.TestSelectWithPrimaryKey)
		t.Run("Distinct", s.TestDistinct)
		t.Run("DistinctMultipleFields", s.TestDistinctMultipleFields)
	})

	t.Run("Aggregates", func(t *testing.T) {
		t.Run("Count", s.TestCount)
		t.Run("CountFiltered", s.TestCountFiltered)
		t.Run("Sum", s.TestSum)
		t.Run("Average", s.TestAverage)
		t.Run("MinMax", s.TestMinMax)
		t.Run("GroupByWithCount", s.TestGroupByWithCount)
		t.Run("GroupByWithSum", s.TestGroupByWithSum)
		t.Run("Having", s.TestHaving)
		t.Run("OrderByAggregate", s.TestOrderByAggregate)
	})

	t.Run("Includes", func(t *testing.T) {
		t.Run("OneToMany", s.TestIncludeOneToMany)
		t.Run("ManyToOne", s.TestIncludeManyToOne)
		t.Run("Filtered", s.TestIncludeFiltered)
		t.Run("Paging", s.TestIncludePaging)
		t.Run("WithGrouping", s.TestIncludeWithGrouping)
	})

	t.Run("VectorSearch", func(t *testing.T) {
		t.Run("NearestNeighbors", s.TestVectorSearchNearestNeighbors)
		t.Run("Filtered", s.TestVectorSearchFiltered)
		t.Run("WithGrouping", s.TestVectorSearchWithGrouping)
	})
}

func (s *Suite) mustInit(t *testing.T) {
	t.Helper()

	s.initOnce.Do(func() {
		if s.Fixture == nil {
			s.Fixture = fixture.MustNew()
		}
		s.capture = logger.NewCaptureLogger(nil)

		var db *mongo.Database
		if s.Store != nil {
			db = s.Store.Database()
		}

		provider, err := s.NewProvider(s.Fixture.Registry(), db, s.capture)
		if err != nil {
			s.initErr = fmt.Errorf("failed to create provider: %w", err)
			return
		}
		if s.ProviderName != "" && provider.Name() != s.ProviderName {
			s.initErr = fmt.Errorf("provider reports name %q, suite expects %q", provider.Name(), s.ProviderName)
			return
		}
		s.provider = provider
	})
	if s.initErr != nil {
		t.Fatal(s.initErr)
	}
}

// skip honors SkipTests entries keyed by subtest path below the root test
func (s *Suite) skip(t *testing.T) {
	t.Helper()
	name := t.Name()
	if i := strings.Index(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if reason, ok := s.SkipTests[name]; ok {
		t.Skip(reason)
	}
}

// assertMQL asserts translation only; vector search tests use it when the
// target server cannot execute the command.
func (s *Suite) assertMQL(t *testing.T, q *query.Query, expectedMQL string) {
	t.Helper()
	s.mustInit(t)
	s.skip(t)

	cmd, err := s.provider.Translate(q)
	if err != nil {
		t.Errorf("translation failed: %v", err)
		return
	}
	rendered, err := cmd.Render()
	if err != nil {
		t.Errorf("failed to render MQL: %v", err)
		return
	}
	baseline.AssertMQLSkip(t, 2, rendered, expectedMQL)
}

// assertMQLQuery asserts the MQL baseline and, with a store attached,
// executes the command and compares the result documents in order.
// Helper names stay on the assertMQL stem so the baseline rewriter
// recognizes their call sites.
func (s *Suite) assertMQLQuery(t *testing.T, q *query.Query, expectedMQL string, want []map[string]any) {
	t.Helper()
	s.runQuery(t, q, expectedMQL, want, true)
}

// assertMQLQueryUnordered is assertMQLQuery for queries with no defined order
func (s *Suite) assertMQLQueryUnordered(t *testing.T, q *query.Query, expectedMQL string, want []map[string]any) {
	t.Helper()
	s.runQuery(t, q, expectedMQL, want, false)
}

func (s *Suite) runQuery(t *testing.T, q *query.Query, expectedMQL string, want []map[string]any, ordered bool) {
	t.Helper()
	s.mustInit(t)
	s.skip(t)

	cmd, err := s.provider.Translate(q)
	if err != nil {
		t.Errorf("translation failed: %v", err)
		return
	}
	rendered, err := cmd.Render()
	if err != nil {
		t.Errorf("failed to render MQL: %v", err)
		return
	}
	baseline.AssertMQLSkip(t, 3, rendered, expectedMQL)

	if s.Store == nil {
		return
	}
	s.ensureSeeded(t)

	s.capture.Clear()
	var raw []bson.M
	if err := s.provider.Execute(context.Background(), cmd, &raw); err != nil {
		t.Errorf("execution failed: %v", err)
		return
	}

	if got := s.capture.Last(); got != rendered {
		t.Errorf("capture logger recorded different MQL than the provider emitted:\n%s", baseline.Diff(rendered, got))
	}

	got := normalizeDocs(raw)
	if !ordered {
		sortDocs(got)
		want = append([]map[string]any(nil), want...)
		sortDocs(want)
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("result set mismatch (-want +got):\n%s\nresults:\n%s", diff, spew.Sdump(raw))
	}
}

// assertMQLScalar executes a single-document aggregate and compares the
// aliased value numerically. The baseline is the last string argument so
// the rewriter splices it rather than the alias.
func (s *Suite) assertMQLScalar(t *testing.T, q *query.Query, alias, expectedMQL string, want float64) {
	t.Helper()
	s.mustInit(t)
	s.skip(t)

	cmd, err := s.provider.Translate(q)
	if err != nil {
		t.Errorf("translation failed: %v", err)
		return
	}
	rendered, err := cmd.Render()
	if err != nil {
		t.Errorf("failed to render MQL: %v", err)
		return
	}
	baseline.AssertMQLSkip(t, 2, rendered, expectedMQL)

	if s.Store == nil {
		return
	}
	s.ensureSeeded(t)

	var raw []bson.M
	if err := s.provider.Execute(context.Background(), cmd, &raw); err != nil {
		t.Errorf("execution failed: %v", err)
		return
	}
	if len(raw) != 1 {
		t.Errorf("expected a single aggregate document, got %d:\n%s", len(raw), spew.Sdump(raw))
		return
	}
	got, ok := toFloat64(raw[0][alias])
	if !ok {
		t.Errorf("aggregate alias %s missing or non-numeric:\n%s", alias, spew.Sdump(raw[0]))
		return
	}
	if delta := got - want; delta > 1e-6 || delta < -1e-6 {
		t.Errorf("aggregate %s = %v, want %v", alias, got, want)
	}
}

// execute runs a query against the attached store and returns normalized
// result documents
func (s *Suite) execute(t *testing.T, q *query.Query) []map[string]any {
	t.Helper()
	s.mustInit(t)
	s.ensureSeeded(t)

	cmd, err := s.provider.Translate(q)
	if err != nil {
		t.Fatalf("translation failed: %v", err)
	}
	var raw []bson.M
	if err := s.provider.Execute(context.Background(), cmd, &raw); err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	return normalizeDocs(raw)
}

// assertUnsupported asserts the provider rejects the query with the
// documented limitation message.
func (s *Suite) assertUnsupported(t *testing.T, q *query.Query, message string) {
	t.Helper()
	s.mustInit(t)
	s.skip(t)

	_, err := s.provider.Translate(q)
	if err == nil {
		t.Errorf("expected translation to fail with %q, but it succeeded", message)
		return
	}
	if !providers.IsUnsupported(err) {
		t.Errorf("expected an unsupported-query error, got: %v", err)
		return
	}
	if !strings.Contains(err.Error(), message) {
		t.Errorf("limitation message mismatch:\nwant substring: %s\ngot: %v", message, err)
	}
}

func (s *Suite) ensureSeeded(t *testing.T) {
	t.Helper()
	s.seedOnce.Do(func() {
		s.seedErr = s.Fixture.Seed(context.Background(), s.Store.Database())
	})
	if s.seedErr != nil {
		t.Fatalf("failed to seed dataset: %v", s.seedErr)
	}
}

// doc renders the seed row with the given primary key as a normalized
// result document, the shape an unprojected query returns it in.
func (s *Suite) doc(t *testing.T, model string, id int64) map[string]any {
	t.Helper()
	s.mustInit(t)
	docs, err := s.Fixture.Documents(model)
	if err != nil {
		t.Fatalf("failed to render %s documents: %v", model, err)
	}
	for _, d := range docs {
		m := normalizeValue(d).(map[string]any)
		if m["_id"] == id {
			return m
		}
	}
	t.Fatalf("no %s seed row with id %d", model, id)
	return nil
}

// docs collects seed rows by primary key, in the given order
func (s *Suite) docs(t *testing.T, model string, ids ...int64) []map[string]any {
	t.Helper()
	out := make([]map[string]any, len(ids))
	for i, id := range ids {
		out[i] = s.doc(t, model, id)
	}
	return out
}

func normalizeDocs(raw []bson.M) []map[string]any {
	out := make([]map[string]any, len(raw))
	for i, doc := range raw {
		out[i] = normalizeValue(doc).(map[string]any)
	}
	return out
}

// normalizeValue converts driver decode types into plain comparable Go
// values: all integers widen to int64, dates become UTC time.Time.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.M:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalizeValue(item)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[k] = normalizeValue(item)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(val))
		for _, e := range val {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case primitive.A:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = normalizeValue(item)
		}
		return items
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = normalizeValue(item)
		}
		return items
	case []float64:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = item
		}
		return items
	case primitive.DateTime:
		return val.Time().UTC()
	case int:
		return int64(val)
	case int32:
		return int64(val)
	default:
		return v
	}
}

// sortDocs orders documents by their fmt-rendered form so unordered result
// sets compare deterministically.
func sortDocs(docs []map[string]any) {
	sort.Slice(docs, func(i, j int) bool {
		return fmt.Sprintf("%v", docs[i]) < fmt.Sprintf("%v", docs[j])
	})
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}
