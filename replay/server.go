package replay

import (
	"math/rand"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/snakezero/game"
)

// Row widths of the three slabs.
const (
	boardRow  = game.ArenaSize * game.ArenaSize * game.NumPlanes
	valueRow  = 1
	policyRow = game.NumDirections
)

// Server is the replay buffer: a fixed-size ring of positions. Writes
// past capacity overwrite the oldest rows.
type Server struct {
	size int

	mu       sync.Mutex
	boards   []float32
	values   []float32
	policies []float32
	next     int
	filled   int
	seen     map[string]struct{}
	rand     *rand.Rand
}

// NewServer makes a buffer holding size positions.
func NewServer(size int, seed int64) *Server {
	return &Server{
		size:     size,
		boards:   make([]float32, size*boardRow),
		values:   make([]float32, size*valueRow),
		policies: make([]float32, size*policyRow),
		seen:     make(map[string]struct{}),
		rand:     rand.New(rand.NewSource(seed)),
	}
}

// Router returns the HTTP surface.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/v1/store", s.handleStore)
	r.GET("/v1/sample", s.handleSample)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

// Len returns the number of buffered positions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filled
}

func (s *Server) handleStore(c *gin.Context) {
	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows := req.Boards.Rows()
	if len(req.Boards.Data) != rows*boardRow ||
		len(req.ValueLabels.Data) != rows*valueRow ||
		len(req.PolicyLabels.Data) != rows*policyRow {
		c.JSON(http.StatusBadRequest, gin.H{"error": "row width mismatch"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.ID != "" {
		if _, dup := s.seen[req.ID]; dup {
			c.JSON(http.StatusOK, StoreResponse{Duplicate: true})
			return
		}
		s.seen[req.ID] = struct{}{}
	}
	for i := 0; i < rows; i++ {
		copy(s.boards[s.next*boardRow:], req.Boards.Data[i*boardRow:(i+1)*boardRow])
		copy(s.values[s.next*valueRow:], req.ValueLabels.Data[i*valueRow:(i+1)*valueRow])
		copy(s.policies[s.next*policyRow:], req.PolicyLabels.Data[i*policyRow:(i+1)*policyRow])
		s.next = (s.next + 1) % s.size
		if s.filled < s.size {
			s.filled++
		}
	}
	c.JSON(http.StatusOK, StoreResponse{Stored: rows})
}

func (s *Server) handleSample(c *gin.Context) {
	batch := 256
	if q := c.Query("batch"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad batch size"})
			return
		}
		batch = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filled == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "buffer is empty"})
		return
	}
	out := SampleResponse{
		Boards:       TensorPayload{Shape: []int{batch, game.ArenaSize, game.ArenaSize, game.NumPlanes}, Data: make([]float32, batch*boardRow)},
		ValueLabels:  TensorPayload{Shape: []int{batch, valueRow}, Data: make([]float32, batch*valueRow)},
		PolicyLabels: TensorPayload{Shape: []int{batch, policyRow}, Data: make([]float32, batch*policyRow)},
	}
	for i := 0; i < batch; i++ {
		row := s.rand.Intn(s.filled)
		copy(out.Boards.Data[i*boardRow:], s.boards[row*boardRow:(row+1)*boardRow])
		copy(out.ValueLabels.Data[i*valueRow:], s.values[row*valueRow:(row+1)*valueRow])
		copy(out.PolicyLabels.Data[i*policyRow:], s.policies[row*policyRow:(row+1)*policyRow])
	}
	c.JSON(http.StatusOK, out)
}
