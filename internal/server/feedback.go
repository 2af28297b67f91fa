package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	feedbackdomain "github.com/smallbiznis/sathi/internal/feedback/domain"
)

func (s *Server) SubmitUserFeedback(c *gin.Context) {
	var req feedbackdomain.UserFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.RequestID = c.Param("id")

	resp, err := s.feedbackSvc.SubmitUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) SubmitDispatcherFeedback(c *gin.Context) {
	var req feedbackdomain.DispatcherFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.RequestID = c.Param("id")

	resp, err := s.feedbackSvc.SubmitDispatcher(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRequestFeedback(c *gin.Context) {
	resp, err := s.feedbackSvc.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
