package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	matchingdomain "github.com/smallbiznis/sathi/internal/matching/domain"
)

func (s *Server) MatchRequest(c *gin.Context) {
	topN, err := parseOptionalInt(c.Query("top_n"))
	if err != nil {
		AbortWithError(c, matchingdomain.ErrInvalidTopN)
		return
	}

	resp, err := s.matchingSvc.MatchRequest(c.Request.Context(), matchingdomain.MatchRequest{
		RequestID: c.Param("id"),
		TopN:      topN,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RankMatches(c *gin.Context) {
	var req matchingdomain.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.matchingSvc.Rank(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
