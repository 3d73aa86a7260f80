package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SelectionRequest updates one selection input. Every change invalidates the
// stored quote, so the page sends one field at a time.
type SelectionRequest struct {
	Field string `json:"field" binding:"required,oneof=fromChain toChain fromToken toToken amount"`
	Value string `json:"value"`
}

// QuoteRequest asks for a quote for the current selection
type QuoteRequest struct {
	Dry *bool `json:"dry" binding:"required"`
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) chains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": s.controller.Catalog().Chains()})
}

func (s *Server) tokens(c *gin.Context) {
	chain := c.Query("chain")
	if chain == "" {
		c.JSON(http.StatusOK, gin.H{"tokens": s.controller.Catalog().Tokens()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": s.controller.Catalog().TokensFor(chain)})
}

func (s *Server) state(c *gin.Context) {
	resp := gin.H{
		"selection": s.controller.Selection(),
		"status":    s.controller.Status(),
		"state":     s.controller.State().String(),
	}
	if quote, ok := s.controller.Quote(); ok {
		resp["quote"] = quote
	}
	if account, ok := s.session.Account(); ok {
		resp["account"] = account
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) connect(c *gin.Context) {
	if err := s.session.Connect(c.Request.Context()); err != nil {
		s.logger.Debug("Connect failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	resp := gin.H{"success": true}
	if account, ok := s.session.Account(); ok {
		resp["account"] = account
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) disconnect(c *gin.Context) {
	if err := s.session.Disconnect(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) selection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	switch req.Field {
	case "fromChain":
		s.controller.SetFromChain(req.Value)
	case "toChain":
		s.controller.SetToChain(req.Value)
	case "fromToken":
		s.controller.SetFromToken(req.Value)
	case "toToken":
		s.controller.SetToToken(req.Value)
	case "amount":
		s.controller.SetAmount(req.Value)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "selection": s.controller.Selection()})
}

func (s *Server) quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body: " + err.Error()})
		return
	}

	quote, err := s.controller.RequestQuote(c.Request.Context(), *req.Dry)
	if err != nil {
		// The controller already surfaced the failure as a status
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error(), "status": s.controller.Status()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "quote": quote, "status": s.controller.Status()})
}

func (s *Server) executeSwap(c *gin.Context) {
	if err := s.controller.ExecuteSwap(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error(), "status": s.controller.Status()})
		return
	}

	resp := gin.H{"success": true, "status": s.controller.Status()}
	if quote, ok := s.controller.Quote(); ok {
		resp["quote"] = quote
	}
	c.JSON(http.StatusOK, resp)
}
