package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ethiosuite/internal/exam"
	"ethiosuite/internal/monitoring"
)

// ExamAPI exposes the exam flow over HTTP. The manager owns all stage
// transitions; handlers translate requests and report stage violations
// as conflicts.
type ExamAPI struct {
	Router  *gin.Engine
	Manager *exam.Manager
}

// NewExamAPI builds the router for the exam app.
func NewExamAPI(manager *exam.Manager) *ExamAPI {
	a := &ExamAPI{
		Router:  gin.Default(),
		Manager: manager,
	}
	a.registerRoutes()
	return a
}

func (a *ExamAPI) registerRoutes() {
	a.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	v1 := a.Router.Group("/api/v1")
	{
		v1.GET("/departments", a.listDepartments)
		v1.GET("/departments/categories", a.listCategories)
		v1.GET("/exams", a.listExams)
		v1.GET("/state", a.state)

		v1.POST("/exam/select", a.selectDepartment)
		v1.POST("/exam/start", a.startExam)
		v1.POST("/exam/resume", a.resumeExam)
		v1.DELETE("/exam/saved", a.discardSaved)

		v1.POST("/exam/answer", a.answer)
		v1.POST("/exam/flag", a.toggleFlag)
		v1.POST("/exam/navigate", a.navigate)
		v1.POST("/exam/submit", a.submit)
		v1.POST("/exam/save-exit", a.saveAndExit)
		v1.POST("/exam/discard-exit", a.discardAndExit)

		v1.GET("/results", a.result)
		v1.GET("/results/tip", a.studyTip)

		v1.POST("/home", a.goHome)
		v1.POST("/history/open", a.openHistory)
		v1.GET("/history", a.history)
		v1.DELETE("/history", a.clearHistory)
	}
}

// flowError maps manager errors onto HTTP statuses: stage violations
// are conflicts, missing snapshots are not-found, the rest bad input.
func flowError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, exam.ErrWrongStage):
		status = http.StatusConflict
	case errors.Is(err, exam.ErrNoSavedExam):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (a *ExamAPI) listDepartments(c *gin.Context) {
	c.JSON(http.StatusOK, exam.FilterDepartments(c.Query("category")))
}

func (a *ExamAPI) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, exam.Categories)
}

func (a *ExamAPI) listExams(c *gin.Context) {
	c.JSON(http.StatusOK, exam.AvailableExams)
}

// state reports the current view plus whether a saved attempt can be
// resumed; clients render the whole flow from this one response.
func (a *ExamAPI) state(c *gin.Context) {
	resp := gin.H{"view": a.Manager.CurrentView()}
	if saved := a.Manager.Resumable(); saved != nil {
		resp["resumable"] = gin.H{
			"department": saved.Config.Department,
			"year":       saved.Config.Year,
			"session":    saved.Config.Session,
			"timeLeft":   saved.TimeLeft,
			"questions":  len(saved.Questions),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (a *ExamAPI) selectDepartment(c *gin.Context) {
	var req struct {
		Department string `json:"department" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Manager.SelectDepartment(req.Department); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.Manager.CurrentView())
}

func (a *ExamAPI) startExam(c *gin.Context) {
	var req struct {
		Year    string `json:"year" binding:"required"`
		Session string `json:"session" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Manager.StartExam(c.Request.Context(), req.Year, req.Session); err != nil {
		flowError(c, err)
		return
	}
	monitoring.ExamsStarted.Inc()
	c.JSON(http.StatusOK, a.Manager.CurrentView())
}

func (a *ExamAPI) resumeExam(c *gin.Context) {
	if err := a.Manager.Resume(); err != nil {
		flowError(c, err)
		return
	}
	monitoring.ExamsStarted.Inc()
	c.JSON(http.StatusOK, a.Manager.CurrentView())
}

func (a *ExamAPI) discardSaved(c *gin.Context) {
	if err := a.Manager.DiscardSaved(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}

func (a *ExamAPI) answer(c *gin.Context) {
	var req struct {
		QuestionID  int `json:"questionId"`
		OptionIndex int `json:"optionIndex"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Manager.Answer(req.QuestionID, req.OptionIndex); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

func (a *ExamAPI) toggleFlag(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Manager.ToggleFlag(req.Index); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}

func (a *ExamAPI) navigate(c *gin.Context) {
	var req struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.Manager.Navigate(req.Index); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.Manager.CurrentView())
}

func (a *ExamAPI) submit(c *gin.Context) {
	session, err := a.Manager.Submit()
	if err != nil {
		flowError(c, err)
		return
	}
	monitoring.ExamsSubmitted.Inc()
	c.JSON(http.StatusOK, session)
}

func (a *ExamAPI) result(c *gin.Context) {
	session, ok := a.Manager.Result()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no submitted result"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a *ExamAPI) studyTip(c *gin.Context) {
	tip, err := a.Manager.StudyTip(c.Request.Context())
	if err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tip": tip})
}

func (a *ExamAPI) saveAndExit(c *gin.Context) {
	if err := a.Manager.SaveAndExit(); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (a *ExamAPI) discardAndExit(c *gin.Context) {
	if err := a.Manager.DiscardAndExit(); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}

func (a *ExamAPI) goHome(c *gin.Context) {
	a.Manager.GoHome()
	c.JSON(http.StatusOK, a.Manager.CurrentView())
}

func (a *ExamAPI) openHistory(c *gin.Context) {
	if err := a.Manager.ViewHistory(); err != nil {
		flowError(c, err)
		return
	}
	c.JSON(http.StatusOK, a.Manager.CurrentView())
}

func (a *ExamAPI) history(c *gin.Context) {
	items, err := a.Manager.History()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []exam.HistoryItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (a *ExamAPI) clearHistory(c *gin.Context) {
	if err := a.Manager.ClearHistory(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
