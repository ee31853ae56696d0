package crm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadflow-cli/internal/config"
	"github.com/sells-group/leadflow-cli/internal/model"
)

type fakeSF struct {
	mu       sync.Mutex
	inserts  []map[string]any
	updates  []map[string]any
	queryErr error
	insErr   error
}

func (f *fakeSF) Query(_ context.Context, _ string, out any) error {
	return f.queryErr
}

func (f *fakeSF) InsertOne(_ context.Context, _ string, record map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insErr != nil {
		return "", f.insErr
	}
	f.inserts = append(f.inserts, record)
	return "00Q123", nil
}

func (f *fakeSF) UpdateOne(_ context.Context, _ string, _ string, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, fields)
	return nil
}

type fakeNotion struct {
	mu         sync.Mutex
	created    []*notionapi.PageCreateRequest
	createErrs []error
}

func (f *fakeNotion) QueryDatabase(_ context.Context, _ string, _ *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (f *fakeNotion) CreatePage(_ context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.created = append(f.created, req)
	return &notionapi.Page{ID: "page-1"}, nil
}

func (f *fakeNotion) UpdatePage(_ context.Context, pageID string, _ *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func qualifiedSession() *model.Session {
	spend := 1500.0
	return &model.Session{
		ID: "sess-1",
		Profile: model.LeadProfile{
			Name:          "Maria Garcia",
			Email:         "maria@garcia-dental.com",
			Phone:         "555-0101",
			BusinessType:  "dental clinic",
			Domain:        "garcia-dental.com",
			MainChallenge: "not enough new patients",
			LeadScore:     85,
			Temperature:   model.TemperatureOnFire,
		},
		Qualification: model.QualificationData{
			MonthlyAdSpend: &spend,
			BiggestProblem: "not enough new patients",
		},
		AICost: 0.0123,
	}
}

func TestSyncLead_BothSystems(t *testing.T) {
	sf := &fakeSF{}
	nc := &fakeNotion{}
	s := NewSync(sf, nc, config.NotionConfig{LeadsDB: "db-1"})

	err := s.SyncLead(context.Background(), qualifiedSession())
	require.NoError(t, err)

	require.Len(t, sf.inserts, 1)
	rec := sf.inserts[0]
	assert.Equal(t, "maria@garcia-dental.com", rec["Email"])
	assert.Equal(t, "Garcia", rec["LastName"])
	assert.Equal(t, "Maria", rec["FirstName"])
	assert.Equal(t, "dental clinic", rec["Company"])
	assert.Equal(t, "Hot", rec["Rating"])
	assert.Equal(t, "Website Chat", rec["LeadSource"])

	require.Len(t, nc.created, 1)
}

func TestSyncLead_NoEmailSkips(t *testing.T) {
	sf := &fakeSF{}
	nc := &fakeNotion{}
	s := NewSync(sf, nc, config.NotionConfig{LeadsDB: "db-1"})

	sess := qualifiedSession()
	sess.Profile.Email = ""

	err := s.SyncLead(context.Background(), sess)
	require.NoError(t, err)
	assert.Empty(t, sf.inserts)
	assert.Empty(t, nc.created)
}

func TestSyncLead_SalesforceFailureReported(t *testing.T) {
	sf := &fakeSF{insErr: errors.New("api down")}
	nc := &fakeNotion{}
	s := NewSync(sf, nc, config.NotionConfig{LeadsDB: "db-1"})

	err := s.SyncLead(context.Background(), qualifiedSession())
	require.Error(t, err)
	// Notion still ran; the systems are independent.
	assert.Len(t, nc.created, 1)
}

func TestSyncLead_NotionRetriedOnPartialFailure(t *testing.T) {
	sf := &fakeSF{}
	nc := &fakeNotion{createErrs: []error{errors.New("rate limited")}}
	s := NewSync(sf, nc, config.NotionConfig{LeadsDB: "db-1"})

	err := s.SyncLead(context.Background(), qualifiedSession())
	require.NoError(t, err)
	assert.Len(t, sf.inserts, 1)
	assert.Len(t, nc.created, 1) // second attempt landed
}

func TestSyncLead_NilClientsSkipped(t *testing.T) {
	s := NewSync(nil, nil, config.NotionConfig{})
	err := s.SyncLead(context.Background(), qualifiedSession())
	require.NoError(t, err)
}

func TestBuildSFLead_SingleNameBecomesLastName(t *testing.T) {
	sess := qualifiedSession()
	sess.Profile.Name = "Maria"
	fields := buildSFLead(sess)
	assert.Equal(t, "Maria", fields["LastName"])
	_, hasFirst := fields["FirstName"]
	assert.False(t, hasFirst)
}

func TestBuildNotionRow(t *testing.T) {
	row := buildNotionRow(qualifiedSession())
	assert.Equal(t, "Maria Garcia", row.Name)
	assert.Equal(t, 85, row.Score)
	assert.Equal(t, "on-fire", row.Temperature)
	assert.True(t, row.Qualified)
	assert.Equal(t, 1500.0, row.MonthlyAdSpend)
	assert.Equal(t, 0.0123, row.AICost)
}

func TestSFRating(t *testing.T) {
	assert.Equal(t, "Hot", sfRating(model.TemperatureOnFire))
	assert.Equal(t, "Hot", sfRating(model.TemperatureHot))
	assert.Equal(t, "Warm", sfRating(model.TemperatureWarm))
	assert.Equal(t, "Cold", sfRating(model.TemperatureCold))
}
