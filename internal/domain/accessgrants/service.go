package accessgrants

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"env-access-broker/internal/platform/logger"
	"env-access-broker/internal/platform/metrics"
	"env-access-broker/internal/ports/downstream"
	"env-access-broker/internal/ports/resources"
)

var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidToken             = errors.New("invalid token")
	ErrResourceNotFound         = errors.New("resource request not found")
	ErrUnsupportedResourceType  = errors.New("unsupported resource type")
	ErrDownstreamUnavailable    = errors.New("downstream unavailable")
	errDownstreamAddressMissing = errors.New("downstream base url not configured")
)

const (
	DefaultTTLMinutes = 60
	DefaultMaxTTL     = 24 * 60

	// Path público donde el caller presenta el token.
	AccessPathPrefix = "/access/"
)

type Options struct {
	// Modo de acceso soportado (comparado contra el access mode del request).
	AccessMode string

	DefaultTTLMinutes int
	MaxTTLMinutes     int

	// Base de la URL que recibe el caller (este servicio).
	PublicBaseURL string

	// Dirección real del notebook + path relativo. Solo se usa al redimir.
	DownstreamBaseURL string
	NotebookRelPath   string

	Logger  logger.Logger
	Metrics *metrics.Metrics
}

type Service struct {
	registry  Registry
	resources resources.Resolver
	health    downstream.Checker

	opts    Options
	log     logger.Logger
	metrics *metrics.Metrics

	now      func() time.Time
	newToken func() (string, error)
}

func NewService(registry Registry, resolver resources.Resolver, health downstream.Checker, opts Options) *Service {
	if opts.DefaultTTLMinutes <= 0 {
		opts.DefaultTTLMinutes = DefaultTTLMinutes
	}
	if opts.MaxTTLMinutes <= 0 {
		opts.MaxTTLMinutes = DefaultMaxTTL
	}
	opts.AccessMode = strings.TrimSpace(opts.AccessMode)
	opts.PublicBaseURL = strings.TrimRight(strings.TrimSpace(opts.PublicBaseURL), "/")

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Service{
		registry:  registry,
		resources: resolver,
		health:    health,
		opts:      opts,
		log:       log.With(map[string]any{"component": "access_broker"}),
		metrics:   opts.Metrics,
		now:       time.Now,
		newToken:  NewToken,
	}
}

// Config devuelve la política vigente (sin direcciones del downstream).
func (s *Service) Config() Options {
	return Options{
		AccessMode:        s.opts.AccessMode,
		DefaultTTLMinutes: s.opts.DefaultTTLMinutes,
		MaxTTLMinutes:     s.opts.MaxTTLMinutes,
	}
}

type IssueInput struct {
	ResourceRequestID string

	// 0 => default de la política. Negativo o por encima del máximo => ErrInvalidInput.
	TTLMinutes int

	// Identidad del caller; si viene vacía se usa el requester del request, o "anonymous".
	IssuedBy string
}

type Issued struct {
	Grant     Grant
	AccessURL string
	TTL       time.Duration
}

// Issue valida que el acceso tenga sentido y recién ahí emite un grant nuevo.
// No reintenta: downstream caído o request inexistente son terminales para esta llamada.
func (s *Service) Issue(ctx context.Context, in IssueInput) (Issued, error) {
	requestID := strings.TrimSpace(in.ResourceRequestID)
	if requestID == "" {
		return Issued{}, ErrInvalidInput
	}
	ttlMinutes := in.TTLMinutes
	if ttlMinutes == 0 {
		ttlMinutes = s.opts.DefaultTTLMinutes
	}
	if ttlMinutes < 0 || ttlMinutes > s.opts.MaxTTLMinutes {
		return Issued{}, fmt.Errorf("%w: ttl must be between 1 and %d minutes", ErrInvalidInput, s.opts.MaxTTLMinutes)
	}

	log := s.log.With(map[string]any{"request_id": requestID})

	// 1) Downstream vivo. Sin esto el grant quedaría colgado.
	health := s.health.Check(ctx)
	s.metrics.ProbeResult(string(health.Status))
	if !health.Healthy() {
		log.Warn("downstream unavailable, grant not issued", map[string]any{
			"status": string(health.Status),
			"detail": health.Detail,
		})
		s.metrics.IssueRejected("downstream_unavailable")
		return Issued{}, fmt.Errorf("%w: %s", ErrDownstreamUnavailable, health.Status)
	}

	// 2) Request existente.
	res, err := s.resources.Resolve(ctx, requestID)
	if err != nil {
		if errors.Is(err, resources.ErrNotFound) {
			s.metrics.IssueRejected("resource_not_found")
			return Issued{}, ErrResourceNotFound
		}
		return Issued{}, fmt.Errorf("resolve resource request: %w", err)
	}

	// 3) Modo de acceso soportado.
	if !strings.EqualFold(strings.TrimSpace(res.AccessMode), s.opts.AccessMode) {
		s.metrics.IssueRejected("unsupported_resource_type")
		return Issued{}, fmt.Errorf("%w: %q", ErrUnsupportedResourceType, res.AccessMode)
	}

	// Si el caller ya abandonó, no dejamos un grant huérfano.
	if err := ctx.Err(); err != nil {
		return Issued{}, err
	}

	// 4) Mint.
	token, err := s.newToken()
	if err != nil {
		return Issued{}, err
	}

	issuedBy := strings.TrimSpace(in.IssuedBy)
	if issuedBy == "" {
		issuedBy = strings.TrimSpace(res.RequesterIdentity)
	}
	if issuedBy == "" {
		issuedBy = DefaultIssuedBy
	}

	now := s.now()
	ttl := time.Duration(ttlMinutes) * time.Minute
	g := Grant{
		Token:             token,
		ResourceRequestID: requestID,
		ResourceLabel:     res.Label,
		IssuedBy:          issuedBy,
		IssuedAt:          now,
		ExpiresAt:         now.Add(ttl),
	}

	if err := s.registry.Insert(g); err != nil {
		if errors.Is(err, ErrConflict) {
			// Colisión = fuente de entropía rota. No reintentamos con otro token.
			log.Error("token collision on insert", map[string]any{"token": TokenPreview(token)})
		}
		return Issued{}, err
	}

	s.metrics.GrantIssued()
	log.Info("grant issued", map[string]any{
		"token":       TokenPreview(token),
		"issued_by":   issuedBy,
		"ttl_minutes": ttlMinutes,
		"expires_at":  g.ExpiresAt.UTC().Format(time.RFC3339),
	})

	return Issued{
		Grant:     g,
		AccessURL: s.accessURL(token),
		TTL:       ttl,
	}, nil
}

type Redirect struct {
	Target string
	Grant  Grant
}

// Access redime el token en el momento de uso y arma el redirect al downstream.
// Los grants no son de un solo uso: cada redención suma UseCount hasta expirar o revocarse.
func (s *Service) Access(ctx context.Context, token string) (Redirect, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		s.metrics.Redemption(metrics.OutcomeInvalidToken)
		return Redirect{}, ErrInvalidToken
	}

	now := s.now()
	g, err := s.registry.Redeem(token, now)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			// Mismo error para "nunca existió" y "revocado".
			s.metrics.Redemption(metrics.OutcomeInvalidToken)
			s.log.Info("redemption rejected", map[string]any{"reason": "invalid_token", "token": TokenPreview(token)})
			return Redirect{}, ErrInvalidToken
		case errors.Is(err, ErrTokenExpired):
			s.metrics.Redemption(metrics.OutcomeExpired)
			s.metrics.GrantsRemoved("expired", 1)
			s.log.Info("redemption rejected", map[string]any{"reason": "token_expired", "token": TokenPreview(token)})
			return Redirect{}, ErrTokenExpired
		default:
			return Redirect{}, err
		}
	}

	target, err := s.downstreamURL(g.Token)
	if err != nil {
		return Redirect{}, err
	}

	s.metrics.Redemption(metrics.OutcomeRedeemed)
	s.log.Info("grant redeemed", map[string]any{
		"token":      TokenPreview(g.Token),
		"request_id": g.ResourceRequestID,
		"use_count":  g.UseCount,
	})

	return Redirect{Target: target, Grant: g}, nil
}

// Revoke elimina el grant. ErrNotFound si no existe (o ya expiró y fue barrido).
func (s *Service) Revoke(ctx context.Context, token string) (Summary, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Summary{}, ErrNotFound
	}
	g, err := s.registry.Revoke(token)
	if err != nil {
		return Summary{}, err
	}
	s.metrics.GrantsRemoved("revoked", 1)
	s.log.Info("grant revoked", map[string]any{
		"token":      TokenPreview(g.Token),
		"request_id": g.ResourceRequestID,
		"use_count":  g.UseCount,
	})
	return Summarize(g, s.now()), nil
}

type Listing struct {
	ActiveCount int
	SweptCount  int
	Grants      []Summary
}

// List devuelve los grants vigentes; de paso barre los expirados.
func (s *Service) List(ctx context.Context) Listing {
	now := s.now()
	active, removed := s.registry.List(now)

	out := make([]Summary, 0, len(active))
	for _, g := range active {
		out = append(out, Summarize(g, now))
	}

	s.metrics.GrantsRemoved("expired", removed)
	s.metrics.ActiveGrants(len(active))
	return Listing{
		ActiveCount: len(active),
		SweptCount:  removed,
		Grants:      out,
	}
}

type SweepResult struct {
	RemovedCount   int
	RemainingCount int
}

func (s *Service) SweepExpired(ctx context.Context) SweepResult {
	removed, remaining := s.registry.SweepExpired(s.now())

	s.metrics.GrantsRemoved("expired", removed)
	s.metrics.ActiveGrants(len(remaining))
	if removed > 0 {
		s.log.Info("expired grants swept", map[string]any{"removed": removed, "remaining": len(remaining)})
	}
	return SweepResult{RemovedCount: removed, RemainingCount: len(remaining)}
}

// ProbeHealth expone el health check del downstream tal cual.
func (s *Service) ProbeHealth(ctx context.Context) downstream.Result {
	res := s.health.Check(ctx)
	s.metrics.ProbeResult(string(res.Status))
	return res
}

func (s *Service) accessURL(token string) string {
	return s.opts.PublicBaseURL + AccessPathPrefix + url.PathEscape(token)
}

// downstreamURL arma {base}/lab/tree/{relPath}?token={token}.
// El token viaja para que el downstream pueda hacer su propio chequeo.
func (s *Service) downstreamURL(token string) (string, error) {
	base := strings.TrimSpace(s.opts.DownstreamBaseURL)
	if base == "" {
		return "", errDownstreamAddressMissing
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse downstream url: %w", err)
	}

	elems := []string{"lab", "tree"}
	for _, seg := range strings.Split(strings.Trim(s.opts.NotebookRelPath, "/"), "/") {
		if seg != "" {
			elems = append(elems, seg)
		}
	}
	u = u.JoinPath(elems...)

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
