package ui

import (
	"net/http"
	"strconv"

	"quizforge/app"
	"quizforge/domain/core"
	"quizforge/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (a *App) handleQuizGenerate(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	session, err := a.quizzes.Generate(r.Context(), userFrom(r), req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// attemptQuestion is the question shape served during an attempt. Correct
// options and explanations stay server-side until review.
type attemptQuestion struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	OptionA      string    `json:"option_a"`
	OptionB      string    `json:"option_b"`
	OptionC      string    `json:"option_c"`
	OptionD      string    `json:"option_d"`
	OrderIndex   int       `json:"order_index"`
}

type attemptResponse struct {
	Session   *models.QuizSession `json:"session"`
	Questions []attemptQuestion   `json:"questions"`
}

// handleQuizAttempt serves the live attempt view. A pending session is
// started on first load; a finished one points the client at review.
func (a *App) handleQuizAttempt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, core.NewInvalidRequestError("malformed session id"))
		return
	}
	user := userFrom(r)

	session, questions, err := a.quizzes.GetForAttempt(r.Context(), user, id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if session.Status.Terminal() {
		a.writeError(w, core.NewInvalidStateError(string(session.Status), "attempt"))
		return
	}
	if session.Status.CanStart() {
		session, err = a.quizzes.Start(r.Context(), user, id)
		if err != nil {
			a.writeError(w, err)
			return
		}
	}

	out := make([]attemptQuestion, len(questions))
	for i, q := range questions {
		out[i] = attemptQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			OptionA:      q.OptionA,
			OptionB:      q.OptionB,
			OptionC:      q.OptionC,
			OptionD:      q.OptionD,
			OrderIndex:   q.OrderIndex,
		}
	}

	writeJSON(w, http.StatusOK, attemptResponse{Session: session, Questions: out})
}

func (a *App) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, core.NewInvalidRequestError("malformed session id"))
		return
	}

	var req app.SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	session, err := a.quizzes.Submit(r.Context(), userFrom(r), id, req)
	if err != nil {
		a.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// reviewedQuestion augments the review entry with the explanation rendered
// as HTML for direct display.
type reviewedQuestion struct {
	app.ReviewQuestion
	ExplanationHTML string `json:"explanation_html"`
}

type reviewResponse struct {
	Session   *models.QuizSession `json:"session"`
	Questions []reviewedQuestion  `json:"questions"`
}

func (a *App) handleQuizReview(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, core.NewInvalidRequestError("malformed session id"))
		return
	}

	session, review, err := a.quizzes.Review(r.Context(), userFrom(r), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	out := make([]reviewedQuestion, len(review))
	for i, q := range review {
		out[i] = reviewedQuestion{
			ReviewQuestion:  q,
			ExplanationHTML: renderMarkdown(q.Explanation),
		}
	}

	writeJSON(w, http.StatusOK, reviewResponse{Session: session, Questions: out})
}

func (a *App) handleQuizHistory(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	history, err := a.quizzes.History(r.Context(), userFrom(r), page)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if history.Sessions == nil {
		history.Sessions = []*models.QuizSession{}
	}

	writeJSON(w, http.StatusOK, history)
}
