package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qc-report-api/internal/dto"
	"github.com/noah-isme/qc-report-api/internal/models"
	appErrors "github.com/noah-isme/qc-report-api/pkg/errors"
)

type mockRecordRepo struct {
	created    *models.InspectionRecord
	updated    *models.InspectionRecord
	listFilter models.RecordFilter
	deleteID   int64
	deleteBy   string
	records    []models.InspectionRecord
	affected   int64
	err        error
	updateErr  error
	calls      int
}

func (m *mockRecordRepo) Create(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	m.created = rec
	stored := *rec
	stored.ID = 101
	return &stored, nil
}

func (m *mockRecordRepo) List(ctx context.Context, filter models.RecordFilter) ([]models.InspectionRecord, error) {
	m.calls++
	m.listFilter = filter
	return m.records, m.err
}

func (m *mockRecordRepo) Update(ctx context.Context, rec *models.InspectionRecord) (*models.InspectionRecord, error) {
	m.calls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updated = rec
	return rec, nil
}

func (m *mockRecordRepo) Delete(ctx context.Context, id int64, ownerID string) (int64, error) {
	m.calls++
	m.deleteID = id
	m.deleteBy = ownerID
	return m.affected, m.err
}

func inspectorCaller() models.Caller {
	return models.Caller{Identity: &models.Identity{ID: "user-1", Email: "qc@example.com"}}
}

func adminCaller() models.Caller {
	return models.Caller{Identity: &models.Identity{ID: "admin-1", Email: "boss@example.com"}, IsAdmin: true}
}

func validSave() dto.SaveRecordRequest {
	return dto.SaveRecordRequest{
		Partscode:        "PC-1",
		Supplier:         "Acme",
		DeliveryDate:     "2024-03-01",
		DeliveryQuantity: "100",
		DefectiveCount:   "0",
		Judgement:        models.JudgementPass,
		Selections:       dto.Selections{A: true, D: true},
	}
}

func TestRecordServiceCreateForcesOwnerAndParsesCounts(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := NewRecordService(repo, nil, nil, nil)

	stored, err := svc.Create(context.Background(), inspectorCaller(), validSave())
	require.NoError(t, err)
	assert.Equal(t, int64(101), stored.ID)

	created := repo.created
	require.NotNil(t, created)
	assert.Equal(t, "user-1", created.UserID)
	assert.Equal(t, models.NewCount(100), created.DeliveryQuantity)
	assert.Equal(t, models.NewCount(0), created.DefectiveCount)
	assert.False(t, created.ReturnQuantity.Valid)
	assert.Nil(t, created.PONumber)
	assert.Nil(t, created.Remarks)
	assert.Equal(t, "2024-03-01", created.DeliveryDate.String())
	assert.False(t, created.InspectionDate.Valid)
	assert.True(t, created.SelectionA)
	assert.False(t, created.SelectionB)
	assert.True(t, created.SelectionD)
}

func TestRecordServiceCreateRequiresPartscodeAndSupplier(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := NewRecordService(repo, nil, nil, nil)

	req := validSave()
	req.Supplier = ""
	_, err := svc.Create(context.Background(), inspectorCaller(), req)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErr.Status)
	assert.Equal(t, "partscode and supplier are required fields", appErr.Message)
	assert.Zero(t, repo.calls)
}

func TestRecordServiceCreateRejectsBadCounts(t *testing.T) {
	svc := NewRecordService(&mockRecordRepo{}, nil, nil, nil)

	for _, raw := range []dto.FormString{"-1", "abc", "1.5"} {
		req := validSave()
		req.SampleSize = raw
		_, err := svc.Create(context.Background(), inspectorCaller(), req)
		require.Error(t, err, raw)
		assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	}
}

func TestRecordServiceCreateRejectsUnknownJudgement(t *testing.T) {
	svc := NewRecordService(&mockRecordRepo{}, nil, nil, nil)

	req := validSave()
	req.Judgement = "maybe"
	_, err := svc.Create(context.Background(), inspectorCaller(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
}

func TestRecordServiceCreateUnauthenticated(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := NewRecordService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.Caller{}, validSave())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Status, appErrors.FromError(err).Status)
	assert.Zero(t, repo.calls)
}

func TestRecordServiceCreateSurfacesStoreMessage(t *testing.T) {
	svc := NewRecordService(&mockRecordRepo{err: errors.New("relation qc_records does not exist")}, nil, nil, nil)

	_, err := svc.Create(context.Background(), inspectorCaller(), validSave())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 500, appErr.Status)
	assert.Equal(t, "relation qc_records does not exist", appErr.Details)
}

func TestRecordServiceListScopes(t *testing.T) {
	repo := &mockRecordRepo{records: []models.InspectionRecord{{ID: 1}}}
	svc := NewRecordService(repo, nil, nil, nil)

	_, err := svc.List(context.Background(), inspectorCaller(), 0)
	require.NoError(t, err)
	assert.Equal(t, "user-1", repo.listFilter.OwnerID)

	_, err = svc.List(context.Background(), adminCaller(), 10)
	require.NoError(t, err)
	assert.Empty(t, repo.listFilter.OwnerID)
	assert.Equal(t, 10, repo.listFilter.Limit)

	assert.Equal(t, "Fetched 3 records (all users)", ListScopeMessage(adminCaller(), 3))
	assert.Equal(t, "Fetched 1 records for your account", ListScopeMessage(inspectorCaller(), 1))
}

func TestRecordServiceDeleteAddsOwnerForNonAdmin(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := NewRecordService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), inspectorCaller(), 5))
	assert.Equal(t, int64(5), repo.deleteID)
	assert.Equal(t, "user-1", repo.deleteBy)

	require.NoError(t, svc.Delete(context.Background(), adminCaller(), 6))
	assert.Empty(t, repo.deleteBy)
}

func TestRecordServiceDeleteRequiresID(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := NewRecordService(repo, nil, nil, nil)

	err := svc.Delete(context.Background(), inspectorCaller(), 0)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Status, appErrors.FromError(err).Status)
	assert.Zero(t, repo.calls)
}

func TestRecordServiceUpdateKeepsIDAndReportsMissing(t *testing.T) {
	repo := &mockRecordRepo{}
	svc := NewRecordService(repo, nil, nil, nil)

	stored, err := svc.Update(context.Background(), inspectorCaller(), dto.UpdateRecordRequest{ID: 12, SaveRecordRequest: validSave()})
	require.NoError(t, err)
	assert.Equal(t, int64(12), stored.ID)
	assert.Empty(t, repo.updated.UserID)

	repo.updateErr = sql.ErrNoRows
	_, err = svc.Update(context.Background(), inspectorCaller(), dto.UpdateRecordRequest{ID: 13, SaveRecordRequest: validSave()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Status, appErrors.FromError(err).Status)
}
