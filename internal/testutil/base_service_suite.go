package testutil

import (
	"context"
	"time"

	"github.com/complysense/complysense/internal/cache"
	"github.com/complysense/complysense/internal/config"
	"github.com/complysense/complysense/internal/domain/report"
	"github.com/complysense/complysense/internal/domain/upload"
	"github.com/complysense/complysense/internal/logger"
	"github.com/complysense/complysense/internal/readiness"
	"github.com/complysense/complysense/internal/repository/memory"
	"github.com/complysense/complysense/internal/types"
	"github.com/complysense/complysense/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	UploadRepo upload.Repository
	ReportRepo report.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	stores    Stores
	cache     cache.Cache
	pubsub    *InMemoryPubSub
	documents *InMemoryDocumentStore
	engine    *readiness.Engine
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.engine = readiness.NewEngine(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		UploadRepo: memory.NewUploadStore(),
		ReportRepo: memory.NewReportStore(),
	}
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.pubsub = NewInMemoryPubSub()
	s.documents = NewInMemoryDocumentStore()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.UploadRepo.(*memory.UploadStore).Clear()
	s.stores.ReportRepo.(*memory.ReportStore).Clear()
	s.cache.Flush(s.ctx)
	s.pubsub.ClearMessages()
	s.documents.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetPubSub returns the recording pubsub
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

// GetDocuments returns the in-memory archive standing in for S3
func (s *BaseServiceTestSuite) GetDocuments() *InMemoryDocumentStore {
	return s.documents
}

func (s *BaseServiceTestSuite) GetEngine() *readiness.Engine {
	return s.engine
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
