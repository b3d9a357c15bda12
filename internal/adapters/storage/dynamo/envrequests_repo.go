// Package dynamo guarda env requests en una tabla DynamoDB con clave de
// partición "id" (string).
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"env-access-broker/internal/domain/envrequests"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API es el subconjunto del cliente que usamos; en tests se reemplaza por un fake.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

type ClientConfig struct {
	Region          string
	EndpointURL     string // dynamodb-local, localstack
	AccessKeyID     string
	SecretAccessKey string
}

// NewClient arma el cliente con credenciales estáticas. Contra un endpoint local
// sin credenciales usa unas dummy (dynamodb-local acepta cualquiera).
func NewClient(cfg ClientConfig) *dynamodb.Client {
	keyID, secret := cfg.AccessKeyID, cfg.SecretAccessKey
	if keyID == "" && secret == "" && cfg.EndpointURL != "" {
		keyID, secret = "local", "local"
	}

	opts := dynamodb.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(keyID, secret, ""),
	}
	if cfg.EndpointURL != "" {
		opts.BaseEndpoint = aws.String(cfg.EndpointURL)
	}
	return dynamodb.New(opts)
}

type EnvRequestsRepo struct {
	api   API
	table string
}

func NewEnvRequestsRepo(api API, table string) *EnvRequestsRepo {
	return &EnvRequestsRepo{api: api, table: table}
}

const (
	attrID              = "id"
	attrEnvName         = "env_name"
	attrEnvPurpose      = "env_purpose"
	attrUseCase         = "use_case"
	attrDataDomain      = "data_domain"
	attrInstanceType    = "instance_type"
	attrIDEOption       = "ide_option"
	attrFrameworkOption = "framework_option"
	attrRequestedBy     = "requested_by"
	attrStatus          = "status"
	attrCreatedAt       = "created_at"
)

func (r *EnvRequestsRepo) Create(ctx context.Context, req envrequests.EnvRequest) error {
	_, err := r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                toItem(req),
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": attrID,
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("env request %s already exists", req.ID)
		}
		return fmt.Errorf("dynamodb put env request: %w", err)
	}
	return nil
}

func (r *EnvRequestsRepo) GetByID(ctx context.Context, id string) (envrequests.EnvRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return envrequests.EnvRequest{}, envrequests.ErrNotFound
	}

	out, err := r.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			attrID: &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return envrequests.EnvRequest{}, fmt.Errorf("dynamodb get env request: %w", err)
	}
	if len(out.Item) == 0 {
		return envrequests.EnvRequest{}, envrequests.ErrNotFound
	}
	return fromItem(out.Item)
}

// List hace un Scan completo (paginado). Las tablas de solicitudes son chicas;
// el orden por created_at se resuelve acá porque Scan no ordena.
func (r *EnvRequestsRepo) List(ctx context.Context) ([]envrequests.EnvRequest, error) {
	out := make([]envrequests.EnvRequest, 0)

	var startKey map[string]types.AttributeValue
	for {
		page, err := r.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb scan env requests: %w", err)
		}
		for _, item := range page.Items {
			req, err := fromItem(item)
			if err != nil {
				return nil, err
			}
			out = append(out, req)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		startKey = page.LastEvaluatedKey
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func toItem(req envrequests.EnvRequest) map[string]types.AttributeValue {
	s := func(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

	item := map[string]types.AttributeValue{
		attrID:           s(req.ID),
		attrEnvName:      s(req.EnvName),
		attrEnvPurpose:   s(req.EnvPurpose),
		attrUseCase:      s(req.UseCase),
		attrDataDomain:   s(req.DataDomain),
		attrInstanceType: s(req.InstanceType),
		attrIDEOption:    s(req.IDEOption),
		attrRequestedBy:  s(req.RequestedBy),
		attrStatus:       s(string(req.Status)),
		attrCreatedAt:    s(req.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}
	// DynamoDB no acepta strings vacíos en atributos de índice; los opcionales se omiten.
	if req.FrameworkOption != "" {
		item[attrFrameworkOption] = s(req.FrameworkOption)
	}
	return item
}

func fromItem(item map[string]types.AttributeValue) (envrequests.EnvRequest, error) {
	str := func(name string) string {
		if v, ok := item[name].(*types.AttributeValueMemberS); ok {
			return v.Value
		}
		return ""
	}

	req := envrequests.EnvRequest{
		ID:              str(attrID),
		EnvName:         str(attrEnvName),
		EnvPurpose:      str(attrEnvPurpose),
		UseCase:         str(attrUseCase),
		DataDomain:      str(attrDataDomain),
		InstanceType:    str(attrInstanceType),
		IDEOption:       str(attrIDEOption),
		FrameworkOption: str(attrFrameworkOption),
		RequestedBy:     str(attrRequestedBy),
		Status:          envrequests.Status(str(attrStatus)),
	}
	if req.ID == "" {
		return envrequests.EnvRequest{}, errors.New("dynamodb env request item without id")
	}
	if req.RequestedBy == "" {
		req.RequestedBy = envrequests.DefaultRequestedBy
	}
	if req.Status == "" {
		req.Status = envrequests.StatusSubmitted
	}

	if raw := str(attrCreatedAt); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return envrequests.EnvRequest{}, fmt.Errorf("env request %s: bad created_at %q: %w", req.ID, raw, err)
		}
		req.CreatedAt = t
	}
	return req, nil
}
