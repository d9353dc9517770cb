package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"quizforge/domain/core"
	"quizforge/internal"
	"quizforge/models"
	"quizforge/ports"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

const (
	minQuestions = 1
	maxQuestions = 10
	minTimeLimit = 30
	maxTimeLimit = 3600

	historyPerPage = 10
)

// QuizService owns the quiz-session lifecycle: creation from generated
// questions, start, answer submission with scoring, review assembly and
// history.
type QuizService struct {
	sessions  ports.SessionRepository
	sources   ports.SourceRepository
	generator ports.QuestionGenerator
	log       *internal.Logger
}

// NewQuizService creates a new quiz service
func NewQuizService(sessions ports.SessionRepository, sources ports.SourceRepository, generator ports.QuestionGenerator, log *internal.Logger) *QuizService {
	return &QuizService{
		sessions:  sessions,
		sources:   sources,
		generator: generator,
		log:       log,
	}
}

// GenerateRequest carries the parameters for a new quiz session. Exactly
// one of SourceID and Topic must be set.
type GenerateRequest struct {
	SourceID         *uuid.UUID        `json:"source_id,omitempty"`
	Topic            string            `json:"topic,omitempty"`
	NumQuestions     int               `json:"num_questions"`
	TimeLimitSeconds int               `json:"time_limit_seconds"`
	Difficulty       models.Difficulty `json:"difficulty"`
}

func (r GenerateRequest) validate() error {
	hasSource := r.SourceID != nil
	hasTopic := strings.TrimSpace(r.Topic) != ""
	if !hasSource && !hasTopic {
		return core.NewInvalidRequestError("provide either a source_id or a topic")
	}
	if hasSource && hasTopic {
		return core.NewInvalidRequestError("provide either a source_id or a topic, not both")
	}
	if r.NumQuestions < minQuestions || r.NumQuestions > maxQuestions {
		return core.NewInvalidRequestError(fmt.Sprintf("number of questions must be between %d and %d", minQuestions, maxQuestions))
	}
	if r.TimeLimitSeconds < minTimeLimit || r.TimeLimitSeconds > maxTimeLimit {
		return core.NewInvalidRequestError("time limit must be between 30 seconds and 1 hour")
	}
	if !r.Difficulty.Valid() {
		return core.NewInvalidRequestError("difficulty must be easy, medium, or hard")
	}
	return nil
}

// Generate invokes the question generator and atomically persists the new
// pending session with its ordered questions. TotalQuestions reflects the
// validated question count, which may be less than requested.
func (s *QuizService) Generate(ctx context.Context, user *models.User, req GenerateRequest) (*models.QuizSession, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var (
		source     *models.StudySource
		rawText    string
		topicLabel string
	)

	if req.SourceID != nil {
		var err error
		source, err = s.sources.GetSource(ctx, user.ID, *req.SourceID)
		if err != nil {
			return nil, err
		}
		if source.SourceType == models.SourceTopic {
			topicLabel = deref(source.Topic)
		} else {
			rawText = deref(source.RawText)
			topicLabel = deref(source.FileName)
		}
	} else {
		topicLabel = strings.TrimSpace(req.Topic)
	}

	var (
		questions []ports.GeneratedQuestion
		err       error
	)
	if rawText != "" {
		questions, err = s.generator.FromText(ctx, rawText, req.NumQuestions, req.Difficulty)
	} else {
		questions, err = s.generator.FromTopic(ctx, topicLabel, req.NumQuestions, req.Difficulty)
	}
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: model returned no valid questions", core.ErrUpstreamFailure)
	}

	session := &models.QuizSession{
		UserID:           user.ID,
		Title:            sessionTitle(topicLabel, req.Difficulty),
		NumQuestions:     len(questions),
		Difficulty:       req.Difficulty,
		TimeLimitSeconds: req.TimeLimitSeconds,
		TotalQuestions:   len(questions),
		Status:           models.StatusPending,
	}
	if source != nil {
		session.SourceID = &source.ID
	}

	rows := make([]*models.QuizQuestion, len(questions))
	for i, q := range questions {
		rows[i] = &models.QuizQuestion{
			QuestionText:  q.Question,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			OrderIndex:    i + 1,
		}
	}

	if err := s.sessions.CreateSessionWithQuestions(ctx, session, rows); err != nil {
		return nil, err
	}

	s.log.Info("created session %s with %d questions for user %s", session.ID, len(rows), user.ID)
	return session, nil
}

func sessionTitle(label string, difficulty models.Difficulty) string {
	title := fmt.Sprintf("%s — %s Quiz", label, capitalize(string(difficulty)))
	return truncateRunes(title, 255)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Start transitions a pending session to in_progress.
func (s *QuizService) Start(ctx context.Context, user *models.User, sessionID uuid.UUID) (*models.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanStart() {
		return nil, core.NewInvalidStateError(string(session.Status), "start")
	}

	now := time.Now().UTC()
	if err := s.sessions.StartSession(ctx, user.ID, sessionID, now); err != nil {
		return nil, err
	}

	session.Status = models.StatusInProgress
	session.StartedAt = &now
	return session, nil
}

// GetForAttempt returns the session and its questions as-is; the caller
// decides whether to redirect to review or start the attempt.
func (s *QuizService) GetForAttempt(ctx context.Context, user *models.User, sessionID uuid.UUID) (*models.QuizSession, []*models.QuizQuestion, error) {
	session, err := s.sessions.GetSession(ctx, user.ID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	questions, err := s.sessions.ListQuestions(ctx, session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, questions, nil
}

// SubmittedAnswer pairs a question with an optional selected option.
type SubmittedAnswer struct {
	QuestionID     uuid.UUID `json:"question_id"`
	SelectedOption *string   `json:"selected_option,omitempty"`
}

// SubmitRequest carries the answer set and the claimed elapsed time.
type SubmitRequest struct {
	Answers          []SubmittedAnswer `json:"answers"`
	TimeTakenSeconds int               `json:"time_taken_seconds"`
}

// Submit scores the session in a single pass. Every question belonging to
// the session receives exactly one answer row; unanswered questions get a
// null selection which is never correct. The terminal status depends only
// on the claimed elapsed time against the limit.
func (s *QuizService) Submit(ctx context.Context, user *models.User, sessionID uuid.UUID, req SubmitRequest) (*models.QuizSession, error) {
	session, err := s.sessions.GetSession(ctx, user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Status.CanSubmit() {
		return nil, core.NewInvalidStateError(string(session.Status), "submit")
	}

	questions, err := s.sessions.ListQuestions(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	selectedByQuestion := make(map[uuid.UUID]*string, len(req.Answers))
	for _, a := range req.Answers {
		selectedByQuestion[a.QuestionID] = a.SelectedOption
	}

	score := 0
	answers := make([]*models.UserAnswer, 0, len(questions))
	for _, q := range questions {
		var selected *string
		if raw, ok := selectedByQuestion[q.ID]; ok && raw != nil && strings.TrimSpace(*raw) != "" {
			v := strings.ToUpper(strings.TrimSpace(*raw))
			selected = &v
		}

		isCorrect := selected != nil && *selected == q.CorrectOption
		if isCorrect {
			score++
		}

		answers = append(answers, &models.UserAnswer{
			SessionID:      session.ID,
			QuestionID:     q.ID,
			UserID:         user.ID,
			SelectedOption: selected,
			IsCorrect:      isCorrect,
		})
	}

	percentage := 0.0
	if session.TotalQuestions > 0 {
		percentage = round2(float64(score) / float64(session.TotalQuestions) * 100)
	}

	status := models.StatusCompleted
	if req.TimeTakenSeconds >= session.TimeLimitSeconds {
		status = models.StatusTimedOut
	}

	now := time.Now().UTC()
	timeTaken := req.TimeTakenSeconds
	session.Score = score
	session.Percentage = &percentage
	session.TimeTakenSeconds = &timeTaken
	session.Status = status
	session.CompletedAt = &now

	if err := s.sessions.SubmitSession(ctx, session, answers); err != nil {
		return nil, err
	}

	s.log.Info("submitted session %s: %d/%d (%s)", session.ID, score, session.TotalQuestions, status)
	return session, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ReviewQuestion joins a question with the caller's recorded answer.
// SelectedOption is nil and IsCorrect false when the question was skipped.
type ReviewQuestion struct {
	ID             uuid.UUID `json:"id"`
	QuestionText   string    `json:"question_text"`
	OptionA        string    `json:"option_a"`
	OptionB        string    `json:"option_b"`
	OptionC        string    `json:"option_c"`
	OptionD        string    `json:"option_d"`
	CorrectOption  string    `json:"correct_option"`
	Explanation    string    `json:"explanation"`
	OrderIndex     int       `json:"order_index"`
	SelectedOption *string   `json:"selected_option,omitempty"`
	IsCorrect      bool      `json:"is_correct"`
}

// Review assembles the per-question review for a terminal session.
func (s *QuizService) Review(ctx context.Context, user *models.User, sessionID uuid.UUID) (*models.QuizSession, []ReviewQuestion, error) {
	session, err := s.sessions.GetSession(ctx, user.ID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if !session.Status.Terminal() {
		return nil, nil, core.NewInvalidStateError(string(session.Status), "review")
	}

	var (
		questions []*models.QuizQuestion
		answers   []*models.UserAnswer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.sessions.ListQuestions(gctx, session.ID)
		return err
	})
	g.Go(func() error {
		var err error
		answers, err = s.sessions.ListAnswers(gctx, session.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	answerByQuestion := make(map[uuid.UUID]*models.UserAnswer, len(answers))
	for _, a := range answers {
		answerByQuestion[a.QuestionID] = a
	}

	review := make([]ReviewQuestion, len(questions))
	for i, q := range questions {
		entry := ReviewQuestion{
			ID:            q.ID,
			QuestionText:  q.QuestionText,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			OrderIndex:    q.OrderIndex,
		}
		if a, ok := answerByQuestion[q.ID]; ok {
			entry.SelectedOption = a.SelectedOption
			entry.IsCorrect = a.IsCorrect
		}
		review[i] = entry
	}

	return session, review, nil
}

// HistorySummary aggregates a user's finished sessions.
type HistorySummary struct {
	FinishedSessions  int     `json:"finished_sessions"`
	AveragePercentage float64 `json:"average_percentage"`
	MedianPercentage  float64 `json:"median_percentage"`
	BestPercentage    float64 `json:"best_percentage"`
}

// HistoryPage is one page of a user's session history, newest first.
type HistoryPage struct {
	Sessions   []*models.QuizSession `json:"sessions"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
	Summary    HistorySummary        `json:"summary"`
}

// History returns a page of the user's sessions plus aggregate statistics
// over every finished session.
func (s *QuizService) History(ctx context.Context, user *models.User, page int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * historyPerPage

	total, err := s.sessions.CountSessions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListSessions(ctx, user.ID, historyPerPage, offset)
	if err != nil {
		return nil, err
	}

	summary, err := s.historySummary(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Sessions:   sessions,
		Total:      total,
		Page:       page,
		PerPage:    historyPerPage,
		TotalPages: (total + historyPerPage - 1) / historyPerPage,
		Summary:    summary,
	}, nil
}

// ListAllSessions returns every session owned by the user, newest first,
// for exports that span the whole history.
func (s *QuizService) ListAllSessions(ctx context.Context, user *models.User) ([]*models.QuizSession, error) {
	const batch = 200
	var out []*models.QuizSession
	for offset := 0; ; offset += batch {
		page, err := s.sessions.ListSessions(ctx, user.ID, batch, offset)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if len(page) < batch {
			return out, nil
		}
	}
}

func (s *QuizService) historySummary(ctx context.Context, userID uuid.UUID) (HistorySummary, error) {
	percentages, err := s.sessions.FinishedPercentages(ctx, userID)
	if err != nil {
		return HistorySummary{}, err
	}
	if len(percentages) == 0 {
		return HistorySummary{}, nil
	}

	mean, err := stats.Mean(percentages)
	if err != nil {
		return HistorySummary{}, err
	}
	median, err := stats.Median(percentages)
	if err != nil {
		return HistorySummary{}, err
	}
	best, err := stats.Max(percentages)
	if err != nil {
		return HistorySummary{}, err
	}

	return HistorySummary{
		FinishedSessions:  len(percentages),
		AveragePercentage: round2(mean),
		MedianPercentage:  round2(median),
		BestPercentage:    best,
	}, nil
}
