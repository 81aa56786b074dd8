package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/scheme-navigator/internal/ai"
	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/dialog"
	"github.com/spigell/scheme-navigator/internal/metrics"
	"github.com/spigell/scheme-navigator/internal/profile"
	"github.com/spigell/scheme-navigator/internal/retrieval"
)

func intPtr(v int) *int { return &v }

func scholarship() *catalog.Entry {
	return &catalog.Entry{
		ID:               "mh-student-scholarship",
		Name:             "Student Scholarship",
		NameTranslations: map[string]string{"hi": "छात्र छात्रवृत्ति"},
		Description:      "Scholarship for students pursuing higher education",
		Benefits:         "Tuition fee support",
		Eligibility: catalog.Rules{
			MinAge:      intPtr(18),
			MaxAge:      intPtr(25),
			Regions:     []string{"Maharashtra"},
			Occupations: []profile.Occupation{profile.OccupationStudent},
		},
	}
}

func keralaPension() *catalog.Entry {
	return &catalog.Entry{
		ID:          "kl-old-age-pension",
		Name:        "Kerala Old Age Pension",
		Description: "Monthly pension for senior citizens",
		Benefits:    "Rs. 1600 per month",
		Eligibility: catalog.Rules{MinAge: intPtr(60), Regions: []string{"Kerala"}},
	}
}

func helpline() *catalog.Entry {
	return &catalog.Entry{
		ID:          "national-helpline",
		Name:        "National Helpline Support",
		Description: "Guidance services for all citizens",
		Benefits:    "Free counselling",
	}
}

type stubAssistant struct {
	extraction  *ai.Extraction
	extractErr  error
	explanation string
	explainErr  error
	explained   []string
}

func (s *stubAssistant) Extract(context.Context, string, string) (*ai.Extraction, error) {
	return s.extraction, s.extractErr
}

func (s *stubAssistant) Explain(_ context.Context, req ai.ExplainRequest) (string, error) {
	s.explained = append(s.explained, req.Entry.ID)
	return s.explanation, s.explainErr
}

type fixture struct {
	svc   *Service
	clock time.Time
}

func newService(t *testing.T, entries []*catalog.Entry, assistant ai.Assistant) *fixture {
	t.Helper()
	f := &fixture{clock: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	now := func() time.Time { return f.clock }
	f.svc = New(Params{
		Entries:   entries,
		Store:     dialog.NewStore(time.Minute, now, nil),
		Machine:   dialog.NewMachine(now),
		Assistant: assistant,
	})
	return f
}

func TestStartSession(t *testing.T) {
	f := newService(t, nil, nil)

	started := f.svc.StartSession("hi")
	assert.NotEmpty(t, started.SessionID)
	assert.Equal(t, "hi", started.Language)
	assert.Equal(t, dialog.Greeting("hi"), started.Greeting)

	snap, err := f.svc.GetSession(started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, dialog.StageGreeting, snap.Stage)
	assert.Equal(t, 1, snap.MessageCount)
	assert.False(t, snap.Complete)
}

func TestSendTurnCollectsThenRecommends(t *testing.T) {
	f := newService(t, []*catalog.Entry{scholarship(), keralaPension(), helpline()}, nil)
	id := f.svc.StartSession("en").SessionID
	ctx := context.Background()

	res, err := f.svc.SendTurn(ctx, id, "hello")
	require.NoError(t, err)
	assert.Equal(t, dialog.StageInfoCollection, res.Stage)
	assert.Equal(t, dialog.Question(profile.FieldAge, "en"), res.Response)
	assert.Equal(t, res.Response, res.NextPrompt)
	assert.Equal(t, MethodRules, res.ExtractionMethod)

	res, err = f.svc.SendTurn(ctx, id, "I am 21")
	require.NoError(t, err)
	assert.Equal(t, dialog.Question(profile.FieldRegion, "en"), res.NextPrompt)
	assert.False(t, res.Complete)

	res, err = f.svc.SendTurn(ctx, id, "Maharashtra, and I am a student")
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, dialog.StageGuidance, res.Stage)
	assert.Empty(t, res.NextPrompt)
	assert.Contains(t, res.Response, "Great! I found 2 scheme(s) you're eligible for:")
	assert.Contains(t, res.Response, "✅ Student Scholarship")

	require.Len(t, res.Matches, 2)
	assert.Equal(t, "mh-student-scholarship", res.Matches[0].ID)
	assert.Equal(t, "education", res.Matches[0].Category)
	assert.Equal(t, 1.0, res.Matches[0].Confidence)
	assert.Contains(t, res.Matches[0].Explanation, "You are eligible for Student Scholarship!")
	assert.Equal(t, "national-helpline", res.Matches[1].ID)

	res, err = f.svc.SendTurn(ctx, id, "thanks")
	require.NoError(t, err)
	assert.Equal(t, followUpText, res.Response)
	assert.Equal(t, dialog.StageGuidance, res.Stage)

	snap, err := f.svc.GetSession(id)
	require.NoError(t, err)
	assert.Equal(t, 9, snap.MessageCount)
	assert.Equal(t, []string{"age", "region"}, snap.Asked)
	assert.Equal(t, "Maharashtra", snap.Profile.Region)
}

func TestSendTurnRespectsMaxResults(t *testing.T) {
	f := newService(t, []*catalog.Entry{scholarship(), helpline()}, nil)
	f.svc.maxResults = 1
	id := f.svc.StartSession("en").SessionID

	res, err := f.svc.SendTurn(context.Background(), id, "I am 21 from Maharashtra and a student")
	require.NoError(t, err)
	assert.Contains(t, res.Response, "I found 2 scheme(s)")
	require.Len(t, res.Matches, 1)
}

func TestSendTurnUsesConfidentAIExtraction(t *testing.T) {
	assistant := &stubAssistant{
		extraction: &ai.Extraction{
			Updates:    []profile.Update{profile.AgeUpdate{Value: 65}, profile.RegionUpdate{Value: "Kerala"}},
			Confidence: 0.9,
		},
		explanation: "You qualify because you are a senior citizen in Kerala.",
	}
	f := newService(t, []*catalog.Entry{scholarship(), keralaPension(), helpline()}, assistant)
	id := f.svc.StartSession("en").SessionID

	res, err := f.svc.SendTurn(context.Background(), id, "sixty five, living in Kerala")
	require.NoError(t, err)
	assert.Equal(t, MethodAI, res.ExtractionMethod)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "kl-old-age-pension", res.Matches[0].ID)
	assert.Equal(t, assistant.explanation, res.Matches[0].Explanation)
	assert.Equal(t, []string{"kl-old-age-pension", "national-helpline"}, assistant.explained)
}

func TestSendTurnFallsBackToRules(t *testing.T) {
	assistant := &stubAssistant{
		extraction: &ai.Extraction{
			Updates:    []profile.Update{profile.AgeUpdate{Value: 65}},
			Confidence: 0.3,
		},
		explainErr: errors.New("deadline exceeded"),
	}
	f := newService(t, []*catalog.Entry{scholarship()}, assistant)
	id := f.svc.StartSession("en").SessionID

	extractBefore := testutil.ToFloat64(metrics.AIFallbacks.WithLabelValues("extract"))
	explainBefore := testutil.ToFloat64(metrics.AIFallbacks.WithLabelValues("explain"))

	res, err := f.svc.SendTurn(context.Background(), id, "I am 21 from Maharashtra, a student")
	require.NoError(t, err)
	assert.Equal(t, MethodRules, res.ExtractionMethod)
	require.Len(t, res.Matches, 1)
	assert.Contains(t, res.Matches[0].Explanation, "You are eligible for Student Scholarship!")

	snap, err := f.svc.GetSession(id)
	require.NoError(t, err)
	require.NotNil(t, snap.Profile.Age)
	assert.Equal(t, 21, *snap.Profile.Age)

	assert.Equal(t, extractBefore+1, testutil.ToFloat64(metrics.AIFallbacks.WithLabelValues("extract")))
	assert.Equal(t, explainBefore+1, testutil.ToFloat64(metrics.AIFallbacks.WithLabelValues("explain")))
}

func TestSendTurnExtractionErrorFallsBack(t *testing.T) {
	assistant := &stubAssistant{extractErr: errors.New("boom"), explainErr: ai.ErrDisabled}
	f := newService(t, []*catalog.Entry{helpline()}, assistant)
	id := f.svc.StartSession("en").SessionID

	res, err := f.svc.SendTurn(context.Background(), id, "I am 30 from Goa")
	require.NoError(t, err)
	assert.Equal(t, MethodRules, res.ExtractionMethod)
	assert.True(t, res.Complete)
}

func TestSendTurnWithoutMatchesKeepsCollecting(t *testing.T) {
	f := newService(t, []*catalog.Entry{scholarship(), keralaPension()}, nil)
	id := f.svc.StartSession("en").SessionID

	res, err := f.svc.SendTurn(context.Background(), id, "I am 40 from Goa")
	require.NoError(t, err)

	question := dialog.Question(profile.FieldEducation, "en")
	assert.Equal(t, dialog.StageInfoCollection, res.Stage)
	assert.Equal(t, noMatchesText+"\n\n"+question, res.Response)
	assert.Equal(t, question, res.NextPrompt)
	assert.Empty(t, res.Matches)
	assert.True(t, res.Complete)
}

func TestSendTurnErrors(t *testing.T) {
	f := newService(t, nil, nil)

	_, err := f.svc.SendTurn(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, dialog.ErrSessionNotFound)

	id := f.svc.StartSession("en").SessionID
	_, err = f.svc.SendTurn(context.Background(), id, "   ")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	f.clock = f.clock.Add(2 * time.Minute)
	_, err = f.svc.SendTurn(context.Background(), id, "hello")
	assert.ErrorIs(t, err, dialog.ErrSessionNotFound)
}

func TestEndSession(t *testing.T) {
	f := newService(t, nil, nil)
	id := f.svc.StartSession("en").SessionID

	require.NoError(t, f.svc.EndSession(id))
	_, err := f.svc.GetSession(id)
	assert.ErrorIs(t, err, dialog.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.EndSession(id), dialog.ErrSessionNotFound)
}

func TestCheckEligibility(t *testing.T) {
	f := newService(t, []*catalog.Entry{scholarship(), keralaPension(), helpline()}, nil)

	report, err := f.svc.CheckEligibility(profile.Profile{Age: intPtr(70), Region: "kerala"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalEligible)
	assert.Equal(t, "kl-old-age-pension", report.Results[0].Entry.ID)

	_, err = f.svc.CheckEligibility(profile.Profile{Age: intPtr(200)})
	assert.ErrorIs(t, err, profile.ErrInvalidValue)
}

func TestListAndLookup(t *testing.T) {
	f := newService(t, []*catalog.Entry{scholarship(), keralaPension(), helpline()}, nil)

	all, err := f.svc.List(ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	kerala, err := f.svc.List(ListRequest{Region: "Kerala"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kl-old-age-pension", "national-helpline"}, ids(kerala))

	pension, err := f.svc.List(ListRequest{Topic: "Pension"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kl-old-age-pension"}, ids(pension))

	limited, err := f.svc.List(ListRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = f.svc.List(ListRequest{Limit: 101})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	entry, err := f.svc.Entry("national-helpline")
	require.NoError(t, err)
	assert.Equal(t, "National Helpline Support", entry.Name)

	_, err = f.svc.Entry("nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	stats := f.svc.Stats()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Topics["pension"])
}

func TestSearchWithoutIndexFilters(t *testing.T) {
	f := newService(t, []*catalog.Entry{scholarship(), keralaPension(), helpline()}, nil)

	hits := f.svc.Search(context.Background(), SearchRequest{Query: "pension", Region: "Kerala"})
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, 1.0, h.Score)
	}

	hits = f.svc.Search(context.Background(), SearchRequest{MinAge: intPtr(20), MaxAge: intPtr(20)})
	assert.Equal(t, []string{"mh-student-scholarship", "national-helpline"}, hitIDs(hits))
}

func TestSearchWithIndex(t *testing.T) {
	entries := []*catalog.Entry{keralaPension(), helpline(), scholarship()}
	index := retrieval.New(retrieval.NewHashEmbedder(retrieval.DefaultDimensions), nil)
	require.NoError(t, index.Build(context.Background(), entries))

	svc := New(Params{Entries: entries, Index: index})

	hits := svc.Search(context.Background(), SearchRequest{Query: "scholarship for students", TopK: 2})
	require.NotEmpty(t, hits)
	assert.LessOrEqual(t, len(hits), 2)
	assert.Equal(t, "mh-student-scholarship", hits[0].Entry.ID)
	assert.Greater(t, hits[0].Score, 0.0)

	hits = svc.Search(context.Background(), SearchRequest{Query: "scholarship for students", Topic: "pension"})
	assert.Equal(t, []string{"kl-old-age-pension"}, hitIDs(hits))
}

func ids(entries []*catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func hitIDs(hits []retrieval.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Entry.ID
	}
	return out
}
