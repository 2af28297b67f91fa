package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	crisisdomain "github.com/smallbiznis/sathi/internal/crisis/domain"
)

func (s *Server) SubmitRequest(c *gin.Context) {
	var req crisisdomain.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.crisisSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetRequestByID(c *gin.Context) {
	resp, err := s.crisisSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RequestQueue(c *gin.Context) {
	var query crisisdomain.QueueRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.crisisSvc.Queue(c.Request.Context(), crisisdomain.QueueRequest{
		Status: strings.TrimSpace(query.Status),
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateRequestStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateRequestStatus(c *gin.Context) {
	var req updateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.crisisSvc.UpdateStatus(c.Request.Context(), crisisdomain.UpdateStatusRequest{
		ID:     c.Param("id"),
		Status: req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
