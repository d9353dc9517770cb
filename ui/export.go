package ui

import (
	"fmt"
	"net/http"
	"time"

	"quizforge/models"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Title", "Difficulty", "Status", "Score", "Total Questions",
	"Percentage", "Time Taken (s)", "Created", "Completed",
}

// handleQuizHistoryExport writes the full session history as an xlsx
// workbook.
func (a *App) handleQuizHistoryExport(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.quizzes.ListAllSessions(r.Context(), userFrom(r))
	if err != nil {
		a.writeError(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Quiz History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		a.writeError(w, err)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, s := range sessions {
		values := []interface{}{
			s.Title,
			string(s.Difficulty),
			string(s.Status),
			s.Score,
			s.TotalQuestions,
			exportPercentage(s),
			exportIntPtr(s.TimeTakenSeconds),
			s.CreatedAt.Format(time.RFC3339),
			exportTimePtr(s.CompletedAt),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("quiz-history-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		a.log.Error("history export failed: %v", err)
	}
}

func exportPercentage(s *models.QuizSession) interface{} {
	if s.Percentage == nil {
		return ""
	}
	return *s.Percentage
}

func exportIntPtr(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func exportTimePtr(t *time.Time) interface{} {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
