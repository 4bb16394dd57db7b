package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"writing_coach/internal/coach"
	"writing_coach/internal/highlight"
	"writing_coach/internal/issue"
	"writing_coach/internal/rubric"
	"writing_coach/internal/session"
	"writing_coach/internal/style"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type TextRequest struct {
	Text  string `json:"text"`
	Flush bool   `json:"flush"`
}

type ApplyRequest struct {
	IssueID     string `json:"issue_id" binding:"required"`
	Replacement string `json:"replacement"`
}

type ApplyResponse struct {
	Text    string `json:"text"`
	Cursor  int    `json:"cursor"`
	Version int64  `json:"version"`
}

type AnalyzeResponse struct {
	Version     int64            `json:"version"`
	Issues      []issue.Issue    `json:"issues"`
	Highlights  []highlight.Span `json:"highlights"`
	Score       rubric.Score     `json:"score"`
	Stats       style.Stats      `json:"stats"`
	Unavailable []issue.Source   `json:"unavailable"`
}

// SessionResponse shows the committed analysis projected onto the current
// text. Committed trails Version while a run is pending.
type SessionResponse struct {
	session.Info
	Text        string           `json:"text"`
	Issues      []issue.Issue    `json:"issues"`
	Highlights  []highlight.Span `json:"highlights"`
	Score       rubric.Score     `json:"score"`
	Scored      bool             `json:"scored"`
	Unavailable []issue.Source   `json:"unavailable"`
	Tips        []coach.Tip      `json:"tips"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.sessions.Len()})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req TextRequest
	if !s.bindText(c, &req) {
		return
	}
	snap := issue.NewSnapshot(req.Text, 1)
	res := s.runner.Run(c.Request.Context(), snap)
	view := highlight.Project(snap, res.Issues, snap)
	c.JSON(http.StatusOK, AnalyzeResponse{
		Version:     res.Version,
		Issues:      res.Issues,
		Highlights:  view.Spans(),
		Score:       res.Score,
		Stats:       res.Stats,
		Unavailable: res.Unavailable,
	})
}

func (s *Server) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.sessions.List()})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req TextRequest
	if c.Request.ContentLength != 0 && !s.bindText(c, &req) {
		return
	}
	sess := s.sessions.Create()
	if req.Text != "" {
		sess.Update(req.Text)
		if req.Flush {
			sess.Flush()
		}
	}
	c.JSON(http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpdateText(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req TextRequest
	if !s.bindText(c, &req) {
		return
	}
	snap := sess.Update(req.Text)
	if req.Flush {
		sess.Flush()
	}
	c.JSON(http.StatusAccepted, gin.H{"version": snap.Version()})
}

func (s *Server) handleFlush(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	sess.Flush()
	c.JSON(http.StatusAccepted, gin.H{"version": sess.Snapshot().Version()})
}

func (s *Server) handleApply(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return
	}
	text, cursor, err := sess.ApplySuggestion(req.IssueID, req.Replacement)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ApplyResponse{Text: text, Cursor: cursor, Version: sess.Snapshot().Version()})
}

func (s *Server) bindText(c *gin.Context, req *TextRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_REQUEST"})
		return false
	}
	if len(req.Text) > s.maxText {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "text too large", Code: "TEXT_TOO_LARGE"})
		return false
	}
	return true
}

func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	sess, err := s.sessions.Get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, session.ErrNotFound):
		status, code = http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, session.ErrUnknownIssue):
		status, code = http.StatusNotFound, "UNKNOWN_ISSUE"
	case errors.Is(err, session.ErrStale):
		status, code = http.StatusConflict, "STALE_ISSUE"
	case errors.Is(err, highlight.ErrOutOfRange):
		status, code = http.StatusUnprocessableEntity, "OUT_OF_RANGE"
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "stage", "server", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

func sessionResponse(sess *session.Session) SessionResponse {
	view := sess.Highlights()
	score, scored := sess.Score()
	resp := SessionResponse{
		Info:        sess.Info(),
		Text:        view.Current().Text(),
		Issues:      view.Issues(),
		Highlights:  view.Spans(),
		Score:       score,
		Scored:      scored,
		Unavailable: []issue.Source{},
		Tips:        sess.Tips(),
	}
	if res, ok := sess.Result(); ok {
		resp.Unavailable = res.Unavailable
	}
	if resp.Tips == nil {
		resp.Tips = []coach.Tip{}
	}
	return resp
}
