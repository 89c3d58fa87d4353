package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/apexneuralecosystems/tracking-leads/internal/config"
	"github.com/apexneuralecosystems/tracking-leads/internal/models"
	"github.com/apexneuralecosystems/tracking-leads/internal/repository"
	"github.com/apexneuralecosystems/tracking-leads/internal/tracking"
)

// HandlersTestSuite exercises the HTTP surface end to end against an
// in-memory database.
type HandlersTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repo   repository.LeadRepository
	router *gin.Engine
	cfg    *config.Config
}

// SetupTest rebuilds the database, repository and router for each test
func (suite *HandlersTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	require.NoError(suite.T(), err)

	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(&models.Lead{}, &models.TrackingEvent{}))

	suite.db = db
	suite.repo = repository.NewLeadRepository(db)
	suite.cfg = &config.Config{
		AppName:         "tracking-leads-test",
		RedirectBaseURL: "https://example.com",
	}

	h := NewHandlers(suite.cfg, suite.repo, tracking.NewService(suite.repo))

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	h.RegisterRoutes(suite.router)
}

func (suite *HandlersTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlersTestSuite) TestOpenPixelAlwaysReturnsPNG() {
	first := suite.request(http.MethodGet, "/o/x1.png", nil)
	suite.Equal(http.StatusOK, first.Code)
	suite.Equal("image/png", first.Header().Get("Content-Type"))
	suite.Equal(tracking.PixelPNG, first.Body.Bytes())

	second := suite.request(http.MethodGet, "/o/x1.png", nil)
	suite.Equal(http.StatusOK, second.Code)
	suite.Equal(first.Body.Bytes(), second.Body.Bytes())

	// Only the first open is stored
	count, err := suite.repo.CountEvents(suite.T().Context(), "x1", models.EventTypeOpen)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
}

func (suite *HandlersTestSuite) TestOpenPixelStampsOpenedAtOnce() {
	ctx := suite.T().Context()
	lead := &models.Lead{TrackingID: "x2", Email: "x2@example.com"}
	suite.Require().NoError(suite.repo.InsertLead(ctx, lead))

	suite.request(http.MethodGet, "/o/x2.png", nil)

	stored, err := suite.repo.FindLeadByTrackingID(ctx, "x2")
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.OpenedAt)
	firstOpen := *stored.OpenedAt

	suite.request(http.MethodGet, "/o/x2.png", nil)

	stored, err = suite.repo.FindLeadByTrackingID(ctx, "x2")
	suite.Require().NoError(err)
	suite.True(stored.OpenedAt.Equal(firstOpen))
}

func (suite *HandlersTestSuite) TestClickRedirectsAndRecords() {
	w := suite.request(http.MethodGet, "/t/t1", nil)
	suite.Equal(http.StatusFound, w.Code)
	suite.Equal("https://example.com", w.Header().Get("Location"))

	lead, err := suite.repo.FindLeadByTrackingID(suite.T().Context(), "t1")
	suite.Require().NoError(err)
	suite.NotNil(lead.FirstClickAt)
	suite.Nil(lead.CampaignName)
}

func (suite *HandlersTestSuite) TestCampaignClickOverwritesAttribution() {
	// POST /leads {"lead_id":"t1","campaign_name":"A"} then GET /go/B/t1
	w := suite.request(http.MethodPost, "/leads", gin.H{"lead_id": "t1", "campaign_name": "A"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))

	w = suite.request(http.MethodGet, "/go/B/t1", nil)
	suite.Equal(http.StatusFound, w.Code)

	w = suite.request(http.MethodGet, "/leads/"+created.ID, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var fetched models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.Require().NotNil(fetched.CampaignName)
	suite.Equal("B", *fetched.CampaignName)
	suite.NotNil(fetched.FirstClickAt)
}

func (suite *HandlersTestSuite) TestClickAliasesRecordCampaign() {
	for _, prefix := range []string{"/c", "/r", "/go"} {
		w := suite.request(http.MethodGet, prefix+"/Camp/alias-id", nil)
		suite.Equal(http.StatusFound, w.Code, "prefix %s", prefix)
	}

	count, err := suite.repo.CountEvents(suite.T().Context(), "alias-id", models.EventTypeClick)
	suite.Require().NoError(err)
	suite.Equal(int64(3), count)
}

func (suite *HandlersTestSuite) TestCreateEventRejectsBogusType() {
	w := suite.request(http.MethodPost, "/events", gin.H{"tracking_id": "t1", "event_type": "bogus"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestCreateEventRecordsOpen() {
	w := suite.request(http.MethodPost, "/events", gin.H{"tracking_id": "t9", "event_type": "open"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var event models.TrackingEvent
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &event))
	suite.Equal("t9", event.TrackingID)
	suite.Equal(models.EventTypeOpen, event.EventType)
	suite.NotEmpty(event.ID)
}

func (suite *HandlersTestSuite) TestCreateEventMissingTrackingID() {
	w := suite.request(http.MethodPost, "/events", gin.H{"event_type": "open"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestCreateLeadRequiresExactlyOneIdentifier() {
	w := suite.request(http.MethodPost, "/leads", gin.H{})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/leads", gin.H{"lead_id": "t1", "email": "a@b.com"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestCreateLeadByEmailGeneratesTrackingID() {
	w := suite.request(http.MethodPost, "/leads", gin.H{"email": "a@b.com"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var lead models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &lead))
	suite.Equal("a@b.com", lead.Email)
	suite.Len(lead.TrackingID, 32)
}

func (suite *HandlersTestSuite) TestCreateLeadDuplicateEmailConflicts() {
	w := suite.request(http.MethodPost, "/leads", gin.H{"email": "a@b.com"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/leads", gin.H{"email": "a@b.com"})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestCreateLeadDuplicateTrackingIDConflicts() {
	w := suite.request(http.MethodPost, "/leads", gin.H{"lead_id": "t1"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/leads", gin.H{"lead_id": "t1"})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *HandlersTestSuite) TestListLeadsFiltersAndValidation() {
	suite.request(http.MethodPost, "/leads", gin.H{"email": "a@b.com"})
	suite.request(http.MethodPost, "/leads", gin.H{"email": "c@d.com"})

	w := suite.request(http.MethodGet, "/leads", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var leads []models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &leads))
	suite.Len(leads, 2)

	w = suite.request(http.MethodGet, "/leads?email=a@b.com", nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &leads))
	suite.Len(leads, 1)

	w = suite.request(http.MethodGet, "/leads?from_date=2026-02-01&to_date=2026-01-01", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/leads?from_date=notadate", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetLeadNotFoundAndBadID() {
	w := suite.request(http.MethodGet, "/leads/8f4f41f2-9c7c-4f6e-9f1a-0a4f4d3a2b1c", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/leads/not-a-uuid", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteLead() {
	w := suite.request(http.MethodPost, "/leads", gin.H{"lead_id": "t1"})
	suite.Require().Equal(http.StatusCreated, w.Code)

	var lead models.Lead
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &lead))

	w = suite.request(http.MethodDelete, "/leads/"+lead.ID, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.request(http.MethodDelete, "/leads/"+lead.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
