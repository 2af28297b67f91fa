package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	dispatchdomain "github.com/smallbiznis/sathi/internal/dispatch/domain"
)

type dispatchRequest struct {
	Quantity *int    `json:"quantity"`
	Note     *string `json:"note"`
}

func (s *Server) Dispatch(c *gin.Context) {
	var req dispatchRequest
	// The body is optional; quantity falls back to the request's own.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dispatchSvc.Dispatch(c.Request.Context(), dispatchdomain.DispatchRequest{
		RequestID:  c.Param("id"),
		ResourceID: c.Param("resource_id"),
		Quantity:   req.Quantity,
		Note:       req.Note,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRequestDispatches(c *gin.Context) {
	resp, err := s.dispatchSvc.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListResourceDispatches(c *gin.Context) {
	resp, err := s.dispatchSvc.ListByResource(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
