package app

import (
	"context"
	"testing"
	"time"

	"quizforge/domain/core"
	"quizforge/internal"
	"quizforge/models"
	"quizforge/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory fakes that enforce the same status guards as the SQL layer.

type fakeSessionRepo struct {
	sessions  map[uuid.UUID]*models.QuizSession
	questions map[uuid.UUID][]*models.QuizQuestion
	answers   map[uuid.UUID][]*models.UserAnswer
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:  make(map[uuid.UUID]*models.QuizSession),
		questions: make(map[uuid.UUID][]*models.QuizQuestion),
		answers:   make(map[uuid.UUID][]*models.UserAnswer),
	}
}

func (r *fakeSessionRepo) CreateSessionWithQuestions(ctx context.Context, session *models.QuizSession, questions []*models.QuizQuestion) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now().UTC()
	for _, q := range questions {
		q.ID = uuid.New()
		q.SessionID = session.ID
	}
	r.sessions[session.ID] = session
	r.questions[session.ID] = questions
	return nil
}

func (r *fakeSessionRepo) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSession, error) {
	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return nil, core.NewNotFoundError("quiz session")
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]*models.QuizQuestion, error) {
	return r.questions[sessionID], nil
}

func (r *fakeSessionRepo) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]*models.UserAnswer, error) {
	return r.answers[sessionID], nil
}

func (r *fakeSessionRepo) StartSession(ctx context.Context, userID, sessionID uuid.UUID, startedAt time.Time) error {
	s, ok := r.sessions[sessionID]
	if !ok || s.UserID != userID {
		return core.NewNotFoundError("quiz session")
	}
	if s.Status != models.StatusPending {
		return core.NewInvalidStateError(string(s.Status), "start")
	}
	s.Status = models.StatusInProgress
	s.StartedAt = &startedAt
	return nil
}

func (r *fakeSessionRepo) SubmitSession(ctx context.Context, session *models.QuizSession, answers []*models.UserAnswer) error {
	stored, ok := r.sessions[session.ID]
	if !ok {
		return core.NewNotFoundError("quiz session")
	}
	if stored.Status.Terminal() {
		return core.NewInvalidStateError(string(stored.Status), "submit")
	}
	*stored = *session
	r.answers[session.ID] = answers
	return nil
}

func (r *fakeSessionRepo) ListSessions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.QuizSession, error) {
	var out []*models.QuizSession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) CountSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, s := range r.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) FinishedPercentages(ctx context.Context, userID uuid.UUID) ([]float64, error) {
	var out []float64
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status.Terminal() && s.Percentage != nil {
			out = append(out, *s.Percentage)
		}
	}
	return out, nil
}

type fakeSourceRepo struct {
	sources map[uuid.UUID]*models.StudySource
}

func newFakeSourceRepo() *fakeSourceRepo {
	return &fakeSourceRepo{sources: make(map[uuid.UUID]*models.StudySource)}
}

func (r *fakeSourceRepo) CreateSource(ctx context.Context, source *models.StudySource) error {
	source.ID = uuid.New()
	source.CreatedAt = time.Now().UTC()
	r.sources[source.ID] = source
	return nil
}

func (r *fakeSourceRepo) GetSource(ctx context.Context, userID, sourceID uuid.UUID) (*models.StudySource, error) {
	s, ok := r.sources[sourceID]
	if !ok || s.UserID != userID {
		return nil, core.NewNotFoundError("study source")
	}
	return s, nil
}

func (r *fakeSourceRepo) ListSources(ctx context.Context, userID uuid.UUID) ([]*models.StudySource, error) {
	var out []*models.StudySource
	for _, s := range r.sources {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSourceRepo) DeleteSource(ctx context.Context, userID, sourceID uuid.UUID) error {
	s, ok := r.sources[sourceID]
	if !ok || s.UserID != userID {
		return core.NewNotFoundError("study source")
	}
	delete(r.sources, sourceID)
	return nil
}

type fakeGenerator struct {
	questions []ports.GeneratedQuestion
	err       error

	lastText  string
	lastTopic string
	lastCount int
}

func (g *fakeGenerator) FromText(ctx context.Context, text string, count int, difficulty models.Difficulty) ([]ports.GeneratedQuestion, error) {
	g.lastText = text
	g.lastCount = count
	return g.questions, g.err
}

func (g *fakeGenerator) FromTopic(ctx context.Context, topic string, count int, difficulty models.Difficulty) ([]ports.GeneratedQuestion, error) {
	g.lastTopic = topic
	g.lastCount = count
	return g.questions, g.err
}

func generated(n int) []ports.GeneratedQuestion {
	out := make([]ports.GeneratedQuestion, n)
	for i := range out {
		out[i] = ports.GeneratedQuestion{
			Question:      "What is photosynthesis?",
			OptionA:       "Energy capture",
			OptionB:       "Cell division",
			OptionC:       "Respiration",
			OptionD:       "Osmosis",
			CorrectOption: "A",
			Explanation:   "Plants convert light into chemical energy.",
		}
	}
	return out
}

func newQuizFixture() (*QuizService, *fakeSessionRepo, *fakeSourceRepo, *fakeGenerator) {
	sessions := newFakeSessionRepo()
	sources := newFakeSourceRepo()
	gen := &fakeGenerator{questions: generated(3)}
	svc := NewQuizService(sessions, sources, gen, internal.NewDefaultLogger())
	return svc, sessions, sources, gen
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Email: "student@example.com", Username: "student", IsActive: true}
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		Topic:            "Photosynthesis",
		NumQuestions:     3,
		TimeLimitSeconds: 300,
		Difficulty:       models.DifficultyMedium,
	}
}

func TestQuizService_Generate_FromTopic(t *testing.T) {
	svc, repo, _, gen := newQuizFixture()
	user := testUser()

	session, err := svc.Generate(context.Background(), user, validRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, session.Status)
	assert.Equal(t, 3, session.TotalQuestions)
	assert.Equal(t, "Photosynthesis — Medium Quiz", session.Title)
	assert.Nil(t, session.SourceID)
	assert.Equal(t, "Photosynthesis", gen.lastTopic)

	questions := repo.questions[session.ID]
	require.Len(t, questions, 3)
	for i, q := range questions {
		assert.Equal(t, i+1, q.OrderIndex)
		assert.Equal(t, session.ID, q.SessionID)
	}
}

func TestQuizService_Generate_Validation(t *testing.T) {
	svc, _, _, _ := newQuizFixture()
	user := testUser()
	sourceID := uuid.New()

	cases := []struct {
		name   string
		mutate func(*GenerateRequest)
	}{
		{"no source or topic", func(r *GenerateRequest) { r.Topic = "" }},
		{"both source and topic", func(r *GenerateRequest) { r.SourceID = &sourceID }},
		{"too few questions", func(r *GenerateRequest) { r.NumQuestions = 0 }},
		{"too many questions", func(r *GenerateRequest) { r.NumQuestions = 11 }},
		{"time limit too short", func(r *GenerateRequest) { r.TimeLimitSeconds = 29 }},
		{"time limit too long", func(r *GenerateRequest) { r.TimeLimitSeconds = 3601 }},
		{"unknown difficulty", func(r *GenerateRequest) { r.Difficulty = "extreme" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Generate(context.Background(), user, req)
			assert.True(t, core.IsInvalidRequest(err))
		})
	}
}

func TestQuizService_Generate_FromFileSource(t *testing.T) {
	svc, _, sources, gen := newQuizFixture()
	user := testUser()

	rawText := "Mitochondria are the powerhouse of the cell."
	fileName := "biology-notes.pdf"
	source := &models.StudySource{
		UserID:     user.ID,
		SourceType: models.SourcePDF,
		FileName:   &fileName,
		RawText:    &rawText,
	}
	require.NoError(t, sources.CreateSource(context.Background(), source))

	req := validRequest()
	req.Topic = ""
	req.SourceID = &source.ID

	session, err := svc.Generate(context.Background(), user, req)
	require.NoError(t, err)

	assert.Equal(t, rawText, gen.lastText)
	assert.Equal(t, "biology-notes.pdf — Medium Quiz", session.Title)
	require.NotNil(t, session.SourceID)
	assert.Equal(t, source.ID, *session.SourceID)
}

func TestQuizService_Generate_FromTopicSource(t *testing.T) {
	svc, _, sources, gen := newQuizFixture()
	user := testUser()

	topic := "The French Revolution"
	source := &models.StudySource{
		UserID:     user.ID,
		SourceType: models.SourceTopic,
		Topic:      &topic,
	}
	require.NoError(t, sources.CreateSource(context.Background(), source))

	req := validRequest()
	req.Topic = ""
	req.SourceID = &source.ID

	_, err := svc.Generate(context.Background(), user, req)
	require.NoError(t, err)
	assert.Equal(t, topic, gen.lastTopic)
	assert.Empty(t, gen.lastText)
}

func TestQuizService_Generate_SourceOwnership(t *testing.T) {
	svc, _, sources, _ := newQuizFixture()
	owner := testUser()
	other := testUser()

	topic := "Thermodynamics"
	source := &models.StudySource{UserID: owner.ID, SourceType: models.SourceTopic, Topic: &topic}
	require.NoError(t, sources.CreateSource(context.Background(), source))

	req := validRequest()
	req.Topic = ""
	req.SourceID = &source.ID

	_, err := svc.Generate(context.Background(), other, req)
	assert.True(t, core.IsNotFound(err))
}

func TestQuizService_Generate_NoValidQuestions(t *testing.T) {
	svc, _, _, gen := newQuizFixture()
	gen.questions = nil

	_, err := svc.Generate(context.Background(), testUser(), validRequest())
	assert.True(t, core.IsUpstreamFailure(err))
}

func TestQuizService_Generate_FewerQuestionsThanRequested(t *testing.T) {
	svc, _, _, gen := newQuizFixture()
	gen.questions = generated(2)

	req := validRequest()
	req.NumQuestions = 5

	session, err := svc.Generate(context.Background(), testUser(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, session.TotalQuestions)
	assert.Equal(t, 2, session.NumQuestions)
}

func TestQuizService_Start(t *testing.T) {
	svc, _, _, _ := newQuizFixture()
	user := testUser()

	session, err := svc.Generate(context.Background(), user, validRequest())
	require.NoError(t, err)

	started, err := svc.Start(context.Background(), user, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	_, err = svc.Start(context.Background(), user, session.ID)
	assert.True(t, core.IsInvalidState(err))
}

func TestQuizService_Start_NotOwned(t *testing.T) {
	svc, _, _, _ := newQuizFixture()
	owner := testUser()

	session, err := svc.Generate(context.Background(), owner, validRequest())
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), testUser(), session.ID)
	assert.True(t, core.IsNotFound(err))
}

// setupSubmittable creates an in_progress session with three questions whose
// correct options are A, C and D.
func setupSubmittable(t *testing.T, svc *QuizService, repo *fakeSessionRepo, user *models.User) (*models.QuizSession, []*models.QuizQuestion) {
	t.Helper()

	gen := generated(3)
	gen[1].CorrectOption = "C"
	gen[2].CorrectOption = "D"

	svc.generator.(*fakeGenerator).questions = gen

	session, err := svc.Generate(context.Background(), user, validRequest())
	require.NoError(t, err)
	_, err = svc.Start(context.Background(), user, session.ID)
	require.NoError(t, err)

	return session, repo.questions[session.ID]
}

func opt(s string) *string { return &s }

func TestQuizService_Submit_Scoring(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, questions := setupSubmittable(t, svc, repo, user)

	// Correct answers are A, C, D; the user picks A, B, D.
	req := SubmitRequest{
		TimeTakenSeconds: 120,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("A")},
			{QuestionID: questions[1].ID, SelectedOption: opt("B")},
			{QuestionID: questions[2].ID, SelectedOption: opt("D")},
		},
	}

	result, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	require.NotNil(t, result.Percentage)
	assert.Equal(t, 66.67, *result.Percentage)
	assert.Equal(t, models.StatusCompleted, result.Status)
	require.NotNil(t, result.TimeTakenSeconds)
	assert.Equal(t, 120, *result.TimeTakenSeconds)
	assert.NotNil(t, result.CompletedAt)

	answers := repo.answers[session.ID]
	require.Len(t, answers, 3)
	assert.True(t, answers[0].IsCorrect)
	assert.False(t, answers[1].IsCorrect)
	assert.True(t, answers[2].IsCorrect)
}

func TestQuizService_Submit_SkippedQuestions(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, questions := setupSubmittable(t, svc, repo, user)

	req := SubmitRequest{
		TimeTakenSeconds: 60,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("A")},
		},
	}

	result, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)

	answers := repo.answers[session.ID]
	require.Len(t, answers, 3)
	assert.Nil(t, answers[1].SelectedOption)
	assert.False(t, answers[1].IsCorrect)
	assert.Nil(t, answers[2].SelectedOption)
}

func TestQuizService_Submit_LowercaseAnswerNormalized(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, questions := setupSubmittable(t, svc, repo, user)

	req := SubmitRequest{
		TimeTakenSeconds: 60,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("a")},
		},
	}

	result, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)

	answers := repo.answers[session.ID]
	require.NotNil(t, answers[0].SelectedOption)
	assert.Equal(t, "A", *answers[0].SelectedOption)
}

func TestQuizService_Submit_UnknownQuestionIgnored(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, _ := setupSubmittable(t, svc, repo, user)

	req := SubmitRequest{
		TimeTakenSeconds: 60,
		Answers: []SubmittedAnswer{
			{QuestionID: uuid.New(), SelectedOption: opt("A")},
		},
	}

	result, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	assert.Len(t, repo.answers[session.ID], 3)
}

func TestQuizService_Submit_TimedOut(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, questions := setupSubmittable(t, svc, repo, user)

	req := SubmitRequest{
		TimeTakenSeconds: 300,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("A")},
		},
	}

	result, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusTimedOut, result.Status)
	assert.Equal(t, 1, result.Score)
}

func TestQuizService_Submit_AlreadyTerminal(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, questions := setupSubmittable(t, svc, repo, user)

	req := SubmitRequest{
		TimeTakenSeconds: 60,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("A")},
		},
	}
	_, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), user, session.ID, req)
	assert.True(t, core.IsInvalidState(err))
}

func TestQuizService_Submit_FromPending(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()

	session, err := svc.Generate(context.Background(), user, validRequest())
	require.NoError(t, err)
	questions := repo.questions[session.ID]

	req := SubmitRequest{
		TimeTakenSeconds: 60,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("A")},
		},
	}

	result, err := svc.Submit(context.Background(), user, session.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
}

func TestQuizService_Review(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()
	session, questions := setupSubmittable(t, svc, repo, user)

	_, _, err := svc.Review(context.Background(), user, session.ID)
	assert.True(t, core.IsInvalidState(err), "review before submission should be rejected")

	submitReq := SubmitRequest{
		TimeTakenSeconds: 90,
		Answers: []SubmittedAnswer{
			{QuestionID: questions[0].ID, SelectedOption: opt("B")},
			{QuestionID: questions[1].ID, SelectedOption: opt("C")},
		},
	}
	_, err = svc.Submit(context.Background(), user, session.ID, submitReq)
	require.NoError(t, err)

	reviewed, review, err := svc.Review(context.Background(), user, session.ID)
	require.NoError(t, err)
	assert.True(t, reviewed.Status.Terminal())
	require.Len(t, review, 3)

	assert.Equal(t, "B", *review[0].SelectedOption)
	assert.False(t, review[0].IsCorrect)
	assert.Equal(t, "A", review[0].CorrectOption)

	assert.Equal(t, "C", *review[1].SelectedOption)
	assert.True(t, review[1].IsCorrect)

	assert.Nil(t, review[2].SelectedOption)
	assert.False(t, review[2].IsCorrect)
	assert.NotEmpty(t, review[2].Explanation)
}

func TestQuizService_History(t *testing.T) {
	svc, repo, _, _ := newQuizFixture()
	user := testUser()

	for i := 0; i < 3; i++ {
		session, questions := setupSubmittable(t, svc, repo, user)
		req := SubmitRequest{TimeTakenSeconds: 60}
		if i > 0 {
			// One correct answer out of three gives 33.33 percent.
			req.Answers = []SubmittedAnswer{{QuestionID: questions[0].ID, SelectedOption: opt("A")}}
		}
		_, err := svc.Submit(context.Background(), user, session.ID, req)
		require.NoError(t, err)
	}

	// A pending session is listed but excluded from the summary.
	_, err := svc.Generate(context.Background(), user, validRequest())
	require.NoError(t, err)

	page, err := svc.History(context.Background(), user, 1)
	require.NoError(t, err)

	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Sessions, 4)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 3, page.Summary.FinishedSessions)
	assert.Equal(t, 22.22, page.Summary.AveragePercentage)
	assert.Equal(t, 33.33, page.Summary.MedianPercentage)
	assert.Equal(t, 33.33, page.Summary.BestPercentage)
}

func TestQuizService_History_Empty(t *testing.T) {
	svc, _, _, _ := newQuizFixture()

	page, err := svc.History(context.Background(), testUser(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Zero(t, page.Summary.FinishedSessions)
	assert.Zero(t, page.Summary.AveragePercentage)
}
