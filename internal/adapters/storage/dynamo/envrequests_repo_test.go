package dynamo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"env-access-broker/internal/domain/envrequests"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI simula una tabla con Scan paginado de a pageSize items.
type fakeAPI struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	order    []string
	pageSize int
	scans    int
	err      error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{items: map[string]map[string]types.AttributeValue{}, pageSize: 2}
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id := in.Item["id"].(*types.AttributeValueMemberS).Value
	if _, exists := f.items[id]; exists && in.ConditionExpression != nil {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
	}
	f.items[id] = in.Item
	f.order = append(f.order, id)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	id := in.Key["id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.scans++

	start := 0
	if in.ExclusiveStartKey != nil {
		n, _ := strconv.Atoi(in.ExclusiveStartKey["offset"].(*types.AttributeValueMemberN).Value)
		start = n
	}
	end := min(start+f.pageSize, len(f.order))

	out := &dynamodb.ScanOutput{}
	for _, id := range f.order[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(f.order) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"offset": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

var t0 = time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)

func sample(id string, createdAt time.Time) envrequests.EnvRequest {
	return envrequests.EnvRequest{
		ID:           id,
		EnvName:      "Sandbox " + id,
		EnvPurpose:   "exploration",
		UseCase:      "churn",
		DataDomain:   "customers",
		InstanceType: "ml.t3.medium",
		IDEOption:    "jupyter",
		RequestedBy:  "alice",
		Status:       envrequests.StatusSubmitted,
		CreatedAt:    createdAt,
	}
}

func TestEnvRequestsRepo_RoundTrip(t *testing.T) {
	api := newFakeAPI()
	repo := NewEnvRequestsRepo(api, "env_requests")
	ctx := context.Background()

	want := sample("r1", t0.Add(123*time.Millisecond))
	want.FrameworkOption = "pytorch"
	require.NoError(t, repo.Create(ctx, want))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetByID() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnvRequestsRepo_OptionalFrameworkOmitted(t *testing.T) {
	api := newFakeAPI()
	repo := NewEnvRequestsRepo(api, "env_requests")

	require.NoError(t, repo.Create(context.Background(), sample("r1", t0)))
	_, present := api.items["r1"]["framework_option"]
	assert.False(t, present)
}

func TestEnvRequestsRepo_CreateDuplicate(t *testing.T) {
	repo := NewEnvRequestsRepo(newFakeAPI(), "env_requests")
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sample("r1", t0)))
	err := repo.Create(ctx, sample("r1", t0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestEnvRequestsRepo_GetByID_NotFound(t *testing.T) {
	repo := NewEnvRequestsRepo(newFakeAPI(), "env_requests")

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, envrequests.ErrNotFound)

	_, err = repo.GetByID(context.Background(), "")
	assert.ErrorIs(t, err, envrequests.ErrNotFound)
}

func TestEnvRequestsRepo_List_PaginatesAndSorts(t *testing.T) {
	api := newFakeAPI()
	repo := NewEnvRequestsRepo(api, "env_requests")
	ctx := context.Background()

	// insertados fuera de orden
	for i, offset := range []int{3, 1, 4, 0, 2} {
		require.NoError(t, repo.Create(ctx, sample("r"+strconv.Itoa(i), t0.Add(time.Duration(offset)*time.Minute))))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, 3, api.scans)

	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.Before(list[i].CreatedAt), "list not sorted at %d", i)
	}
	assert.Equal(t, "r3", list[0].ID)
}

func TestEnvRequestsRepo_ErrorsAreWrapped(t *testing.T) {
	api := newFakeAPI()
	boom := errors.New("throttled")
	api.err = boom
	repo := NewEnvRequestsRepo(api, "env_requests")
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, sample("r1", t0)), boom)
	_, err := repo.GetByID(ctx, "r1")
	assert.ErrorIs(t, err, boom)
	_, err = repo.List(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestFromItem_Defaults(t *testing.T) {
	got, err := fromItem(map[string]types.AttributeValue{
		"id":       &types.AttributeValueMemberS{Value: "legacy"},
		"env_name": &types.AttributeValueMemberS{Value: "old"},
	})
	require.NoError(t, err)
	assert.Equal(t, envrequests.DefaultRequestedBy, got.RequestedBy)
	assert.Equal(t, envrequests.StatusSubmitted, got.Status)

	_, err = fromItem(map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: "x"},
		"created_at": &types.AttributeValueMemberS{Value: "yesterday"},
	})
	assert.Error(t, err)
}

func TestNewClient_LocalEndpoint(t *testing.T) {
	c := NewClient(ClientConfig{Region: "us-east-1", EndpointURL: "http://localhost:8000"})
	require.NotNil(t, c)

	opts := c.Options()
	assert.Equal(t, "us-east-1", opts.Region)
	assert.Equal(t, "http://localhost:8000", aws.ToString(opts.BaseEndpoint))

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", creds.AccessKeyID)
}
