// Package apitest provides an in-process stand-in for the remote TracePer API,
// used by tests of everything that talks to it.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"traceper/internal/models"
)

// Message returned for rejected credentials.
const InvalidCredentials = "These credentials do not match our records."

const tokenTTL = time.Hour

type user struct {
	name string
	hash []byte
}

type claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

// Server is a fake remote API backed by memory. Tokens are real HS256 JWTs so
// clients see opaque, realistic credentials.
type Server struct {
	*httptest.Server

	key []byte

	mu          sync.Mutex
	users       map[string]user // by email
	revoked     map[string]bool
	records     map[string][]models.Record
	failLogout  bool
	logoutCalls int
	lastAuth    string
}

// NewServer starts the fake API. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		key:     []byte("apitest-signing-key"),
		users:   make(map[string]user),
		revoked: make(map[string]bool),
		records: make(map[string][]models.Record),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", s.login)
	r.POST("/register", s.register)

	api := r.Group("/", s.requireToken)
	api.POST("/logout", s.logout)
	api.GET("/dashboard/stats", s.stats)
	api.GET("/:resource", s.list)
	api.DELETE("/:resource/:id", s.delete)
	return r
}

// AddUser registers an account with a bcrypt-hashed password.
func (s *Server) AddUser(name, email, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.users[strings.ToLower(email)] = user{name: name, hash: hash}
	s.mu.Unlock()
}

// Seed appends records to a resource collection.
func (s *Server) Seed(resource string, recs ...models.Record) {
	s.mu.Lock()
	s.records[resource] = append(s.records[resource], recs...)
	s.mu.Unlock()
}

// Records returns a copy of a resource collection.
func (s *Server) Records(resource string) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Record(nil), s.records[resource]...)
}

// FailLogout makes POST /logout answer 500 from now on.
func (s *Server) FailLogout(fail bool) {
	s.mu.Lock()
	s.failLogout = fail
	s.mu.Unlock()
}

// LogoutCalls reports how many logout requests arrived.
func (s *Server) LogoutCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutCalls
}

// LastAuthorization returns the Authorization header of the last protected call.
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

func (s *Server) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The email and password fields are required."})
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(in.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(in.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": InvalidCredentials})
		return
	}

	token, err := s.issue(in.Email, u.name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": gin.H{"name": u.name, "email": in.Email}})
}

func (s *Server) register(c *gin.Context) {
	var in struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "All fields are required."})
		return
	}
	s.mu.Lock()
	_, exists := s.users[strings.ToLower(in.Email)]
	s.mu.Unlock()
	if exists {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The email has already been taken."})
		return
	}
	s.AddUser(in.Name, in.Email, in.Password)
	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (s *Server) logout(c *gin.Context) {
	s.mu.Lock()
	s.logoutCalls++
	fail := s.failLogout
	if !fail {
		s.revoked[c.GetString("token")] = true
	}
	s.mu.Unlock()

	if fail {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "logout unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) stats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, models.Stats{
		Projects:     len(s.records[models.ResourceProjects]),
		Barangays:    len(s.records[models.ResourceBarangays]),
		Contractors:  len(s.records[models.ResourceContractors]),
		Officials:    len(s.records[models.ResourceOfficials]),
		Transactions: len(s.records[models.ResourceTransactions]),
	})
}

func (s *Server) list(c *gin.Context) {
	resource := c.Param("resource")
	if !models.IsResource(resource) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	recs := s.Records(resource)
	if recs == nil {
		recs = []models.Record{}
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) delete(c *gin.Context) {
	resource, id := c.Param("resource"), c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.records[resource]
	for i, r := range recs {
		if r.ID() == id {
			s.records[resource] = append(recs[:i:i], recs[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "record not found"})
}

func (s *Server) requireToken(c *gin.Context) {
	header := c.GetHeader("Authorization")

	s.mu.Lock()
	s.lastAuth = header
	s.mu.Unlock()

	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	if _, err := s.parse(raw); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	s.mu.Lock()
	revoked := s.revoked[raw]
	s.mu.Unlock()
	if revoked {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	c.Set("token", raw)
	c.Next()
}

func (s *Server) issue(email, name string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: name,
	})
	return token.SignedString(s.key)
}

func (s *Server) parse(raw string) (*claims, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (interface{}, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return &cl, nil
}
