package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/api/dto"
	"github.com/avolkova/fix-exchange/internal/domain"
	"github.com/avolkova/fix-exchange/internal/engine"
	"github.com/avolkova/fix-exchange/internal/middleware"
)

// Server is the REST/websocket face of the engine, for tooling and market
// data consumers; order flow proper arrives through the FIX gateway.
type Server struct {
	eng      *engine.Engine
	log      *zap.Logger
	limit    time.Duration
	upgrader websocket.Upgrader
}

func NewServer(eng *engine.Engine, limit time.Duration, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		eng:   eng,
		log:   log,
		limit: limit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	rl := middleware.NewRateLimiter(s.limit)
	mutating := r.Group("/", rl.Middleware())
	mutating.POST("/orders", s.submitOrder)
	mutating.POST("/orders/cancel", s.cancelOrder)

	r.GET("/orders/open", s.openOrders)
	r.GET("/orders/:id/executions", s.orderExecutions)
	r.GET("/executions", s.executions)
	r.GET("/symbols", s.symbols)
	r.GET("/book", s.book)
	r.GET("/ws/executions", s.executionFeed)

	return r
}

func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := domain.NewOrder(
		s.eng.Sequence(),
		req.Symbol,
		req.Quantity,
		req.Price.InexactFloat64(),
		domain.Side(req.Side),
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	origQty := order.Quantity
	fills := s.eng.SubmitOrder(c.Request.Context(), order)

	var filled uint64
	for _, ex := range fills {
		if ex.Buy.ID == order.ID || ex.Sell.ID == order.ID {
			filled += ex.Quantity()
		}
	}
	c.JSON(http.StatusOK, dto.SubmitOrderResponse{
		OrderID:    order.ID,
		Executions: dto.FromExecutions(fills),
		Remaining:  origQty - filled,
	})
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	_, ok := s.eng.CancelOrder(c.Request.Context(), req.OrderID)
	c.JSON(http.StatusOK, dto.CancelOrderResponse{
		OrderID:   req.OrderID,
		Cancelled: ok,
	})
}

func (s *Server) openOrders(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol required"})
		return
	}
	orders := s.eng.OpenOrders(symbol)
	res := make([]dto.Order, len(orders))
	for i, o := range orders {
		res[i] = dto.FromOrder(o)
	}
	c.JSON(http.StatusOK, dto.OpenOrdersResponse{Symbol: symbol, Orders: res})
}

func (s *Server) orderExecutions(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad order id"})
		return
	}
	c.JSON(http.StatusOK, dto.ExecutionsResponse{
		Executions: dto.FromExecutions(s.eng.ExecutionsFor(id)),
	})
}

func (s *Server) executions(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ExecutionsResponse{
		Executions: dto.FromExecutions(s.eng.Executions()),
	})
}

func (s *Server) symbols(c *gin.Context) {
	c.JSON(http.StatusOK, dto.SymbolsResponse{Symbols: s.eng.ActiveSymbols()})
}

func (s *Server) book(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol required"})
		return
	}
	c.JSON(http.StatusOK, s.eng.Book(c.Request.Context(), symbol))
}

// executionFeed streams executions over a websocket until the client goes
// away. Slow clients miss events rather than backing up the engine.
func (s *Server) executionFeed(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	feed, cancel := s.eng.Subscribe()
	defer cancel()

	// Drain reads so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ex := range feed {
		if err := conn.WriteJSON(dto.FromExecution(ex)); err != nil {
			return
		}
	}
}
