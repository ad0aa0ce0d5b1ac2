package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	"github.com/noah-isme/qc-report-api/internal/service"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
)

type gateStub struct{}

func (gateStub) Resolve(ctx context.Context, token string) models.Caller {
	switch token {
	case "inspector":
		return models.Caller{Identity: &models.Identity{ID: "user-1", Email: "qc@example.com"}}
	case "admin":
		return models.Caller{Identity: &models.Identity{ID: "admin-1", Email: "boss@example.com"}, IsAdmin: true}
	}
	return models.Caller{}
}

type recordServiceStub struct {
	created   *dto.SaveRecordRequest
	updated   *dto.UpdateRecordRequest
	deletedID int64
	limit     int
	err       error
}

func (s *recordServiceStub) Create(ctx context.Context, caller models.Caller, req dto.SaveRecordRequest) (*models.InspectionRecord, error) {
	s.created = &req
	if s.err != nil {
		return nil, s.err
	}
	return &models.InspectionRecord{ID: 1, UserID: caller.ID(), Partscode: string(req.Partscode), Supplier: string(req.Supplier)}, nil
}

func (s *recordServiceStub) List(ctx context.Context, caller models.Caller, limit int) ([]models.InspectionRecord, error) {
	s.limit = limit
	return []models.InspectionRecord{{ID: 1}, {ID: 2}}, s.err
}

func (s *recordServiceStub) Update(ctx context.Context, caller models.Caller, req dto.UpdateRecordRequest) (*models.InspectionRecord, error) {
	s.updated = &req
	return &models.InspectionRecord{ID: int64(req.ID)}, s.err
}

func (s *recordServiceStub) Delete(ctx context.Context, caller models.Caller, id int64) error {
	s.deletedID = id
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "Record ID is required")
	}
	return s.err
}

type exporterStub struct{}

func (exporterStub) Records(ctx context.Context, caller models.Caller, query dto.ExportRecordsQuery) (*service.ExportFile, error) {
	return &service.ExportFile{FileName: "qc-records.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("id\n1\n"), Rows: 1}, nil
}

type provisioningStub struct {
	deletedID string
	notified  bool
}

func (p *provisioningStub) CreateUser(ctx context.Context, caller models.Caller, req dto.CreateUserRequest) (*service.AccountCreated, error) {
	return &service.AccountCreated{User: models.Identity{ID: "new-user", Email: req.Email}, Notified: p.notified}, nil
}

func (p *provisioningStub) ListUsers(ctx context.Context, caller models.Caller) ([]models.Identity, error) {
	return []models.Identity{{ID: "u-1", Email: "a@b.co"}}, nil
}

func (p *provisioningStub) UpdateUser(ctx context.Context, caller models.Caller, req dto.UpdateUserRequest) (*models.Identity, error) {
	return &models.Identity{ID: req.UserID}, nil
}

func (p *provisioningStub) DeleteUser(ctx context.Context, caller models.Caller, userID string) error {
	p.deletedID = userID
	return nil
}

func (p *provisioningStub) SendCredentials(ctx context.Context, caller models.Caller, req dto.SendCredentialsRequest) error {
	return nil
}

type statisticsStub struct {
	search string
}

func (s *statisticsStub) Suppliers(ctx context.Context, caller models.Caller, search string) ([]models.SupplierStatistic, error) {
	s.search = search
	if !caller.IsAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only admins can view statistics")
	}
	return []models.SupplierStatistic{{Supplier: "Acme", TotalRecords: 3}}, nil
}

type productStub struct{}

func (productStub) Lookup(ctx context.Context, query dto.ProductLookupQuery) (*dto.ProductLookupResponse, error) {
	rows := []models.ShipmentProduct{{Supplier: "Test Supplier", Partscode: query.Barcode}}
	return &dto.ProductLookupResponse{Recordsets: [][]models.ShipmentProduct{rows}, Recordset: rows}, nil
}

func (productStub) InspectionRecords(ctx context.Context, query dto.InspectionRecordsQuery) ([]map[string]interface{}, error) {
	return []map[string]interface{}{{"partscode": query.Partscode}}, nil
}

func (productStub) Probe(ctx context.Context) dto.SQLServerProbeResponse {
	return dto.SQLServerProbeResponse{Success: false, Message: "Failed to connect to SQL Server. Please check your connection settings."}
}

type workbookStub struct{}

func (workbookStub) Load(ctx context.Context) ([]models.Workbook, error) {
	return []models.Workbook{{FileName: "a.xlsx", Sheets: []models.Sheet{}}}, nil
}

type fixture struct {
	router       *gin.Engine
	records      *recordServiceStub
	provisioning *provisioningStub
	statistics   *statisticsStub
}

func newFixture(mw ...gin.HandlerFunc) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		records:      &recordServiceStub{},
		provisioning: &provisioningStub{notified: true},
		statistics:   &statisticsStub{},
	}
	f.router = gin.New()
	f.router.Use(mw...)
	RegisterRoutes(f.router, "/api", gateStub{}, Handlers{
		Admin:      NewAdminHandler(f.provisioning),
		Records:    NewRecordHandler(f.records, exporterStub{}),
		Statistics: NewStatisticsHandler(f.statistics),
		Products:   NewProductHandler(productStub{}),
		Workbook:   NewWorkbookHandler(workbookStub{}),
		Metrics:    NewMetricsHandler(service.NewMetricsService(), nil),
	}, nil)
	return f
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Count *int                   `json:"count"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestAdminCheckAlwaysOK(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/admin-check", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var check dto.AdminCheckResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &check))
	assert.False(t, check.Authenticated)
	assert.False(t, check.IsAdmin)

	rec = f.do(http.MethodGet, "/api/admin-check", "admin", nil)
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &check))
	assert.True(t, check.IsAdmin)
	assert.Equal(t, "boss@example.com", check.Email)
}

func TestAdminRoutesGuarded(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/users", "inspector", nil).Code)

	rec := f.do(http.MethodGet, "/api/users", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *decode(t, rec).Count)
}

func TestCreateUserResponse(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/create-user", "admin", dto.CreateUserRequest{Email: "li.wei@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CreateUserResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.EmailNotified)
	assert.Equal(t, "li.wei", resp.User.Name)
	assert.Equal(t, service.MessageUserCreated, resp.Message)
}

func TestDeleteUserReadsQueryThenBody(t *testing.T) {
	f := newFixture()

	require.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/delete-user?userId=u-9", "admin", nil).Code)
	assert.Equal(t, "u-9", f.provisioning.deletedID)

	require.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/delete-user", "admin", dto.DeleteUserRequest{UserID: "u-7"}).Code)
	assert.Equal(t, "u-7", f.provisioning.deletedID)
}

func TestSaveRecord(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodPost, "/api/records/save", "", map[string]string{"partscode": "P"}).Code)

	rec := f.do(http.MethodPost, "/api/records/save", "inspector", map[string]interface{}{
		"partscode":      "P-100",
		"supplier":       "Acme",
		"sampleSize":     50,
		"defectiveCount": "2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, service.MessageRecordSaved, env.Meta["message"])
	assert.Contains(t, env.Meta, "timestamp")
	require.NotNil(t, f.records.created)
	assert.Equal(t, dto.FormString("50"), f.records.created.SampleSize)
	assert.Equal(t, dto.FormString("2"), f.records.created.DefectiveCount)
}

func TestSaveRecordMalformedBody(t *testing.T) {
	f := newFixture()
	req := httptest.NewRequest(http.MethodPost, "/api/records/save", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer inspector")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRecordsScopeMessage(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/records?limit=5", "inspector", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, 2, *env.Count)
	assert.Equal(t, "Fetched 2 records for your account", env.Meta["message"])
	assert.Equal(t, 5, f.records.limit)

	env = decode(t, f.do(http.MethodGet, "/api/records", "admin", nil))
	assert.Equal(t, "Fetched 2 records (all users)", env.Meta["message"])
}

func TestListRecordsIgnoresMalformedLimit(t *testing.T) {
	for _, raw := range []string{"abc", "5abc", "2.5", "-3", "0", ""} {
		f := newFixture()
		f.records.limit = -1

		rec := f.do(http.MethodGet, "/api/records?limit="+raw, "inspector", nil)
		require.Equal(t, http.StatusOK, rec.Code, "limit=%q", raw)
		assert.Equal(t, 0, f.records.limit, "limit=%q", raw)
	}
}

func TestDeleteMalformedBodyIsRecorded(t *testing.T) {
	var recorded []*gin.Error
	capture := func(c *gin.Context) {
		c.Next()
		recorded = append(recorded, c.Errors.ByType(gin.ErrorTypeBind)...)
	}
	f := newFixture(capture)

	send := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, path, bytes.NewReader([]byte("{\"id\": ")))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	rec := send("/api/records", "inspector")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Record ID is required", decode(t, rec).Error.Message)
	require.Len(t, recorded, 1)

	rec = send("/api/records?id=31", "inspector")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(31), f.records.deletedID)
	assert.Len(t, recorded, 2)

	rec = send("/api/delete-user?userId=u-3", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-3", f.provisioning.deletedID)
	assert.Len(t, recorded, 3)
}

func TestUpdateRecordAcceptsStringID(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPatch, "/api/records/update", "inspector", map[string]interface{}{"id": "42", "partscode": "P", "supplier": "S"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.records.updated)
	assert.Equal(t, dto.RecordID(42), f.records.updated.ID)
	assert.Equal(t, service.MessageRecordUpdated, decode(t, rec).Meta["message"])
}

func TestDeleteRecordID(t *testing.T) {
	f := newFixture()

	require.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/records?id=12", "inspector", nil).Code)
	assert.Equal(t, int64(12), f.records.deletedID)

	require.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/api/records", "inspector", map[string]interface{}{"id": 13}).Code)
	assert.Equal(t, int64(13), f.records.deletedID)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/records", "inspector", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/records?id=abc", "inspector", nil).Code)
}

func TestExportRecords(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/records/export?format=csv", "inspector", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "qc-records.csv")
	assert.Equal(t, "id\n1\n", rec.Body.String())
}

func TestStatisticsSuppliers(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/statistics/suppliers?search=ac", "admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "Fetched statistics for 1 supplier(s)", env.Meta["message"])
	assert.Equal(t, "ac", f.statistics.search)

	rec = f.do(http.MethodGet, "/api/statistics/suppliers", "inspector", nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Only admins can view statistics", decode(t, rec).Error.Message)
}

func TestWarehouseEndpoints(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/sql-server/product?barcode=X", "", nil).Code)

	rec := f.do(http.MethodGet, "/api/sql-server/product?barcode=X&mock=true", "inspector", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lookup dto.ProductLookupResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &lookup))
	require.Len(t, lookup.Recordset, 1)
	assert.Equal(t, "X", lookup.Recordset[0].Partscode)

	rec = f.do(http.MethodGet, "/api/sql-server/inspection-records?partscode=P-1", "inspector", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Fetched 1 inspection records", decode(t, rec).Meta["message"])

	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/api/sql-server/test", "inspector", nil).Code)
}

func TestWorkbookAndProbes(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/excel", "inspector", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *decode(t, rec).Count)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/metrics", "", nil).Code)
}

func TestReadyReportsStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(nil, func(ctx context.Context) error { return appErrors.ErrInternal })
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
