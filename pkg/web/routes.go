package web

// routes sets up the routes for the HTTP server.
func (s *Server) routes() {
	s.router.GET("/", s.index)

	s.router.GET("/api/chains", s.chains)
	s.router.GET("/api/tokens", s.tokens)
	s.router.GET("/api/state", s.state)

	s.router.POST("/api/session/connect", s.connect)
	s.router.POST("/api/session/disconnect", s.disconnect)

	s.router.POST("/api/selection", s.selection)
	s.router.POST("/api/quote", s.quote)
	s.router.POST("/api/swap", s.executeSwap)
}
